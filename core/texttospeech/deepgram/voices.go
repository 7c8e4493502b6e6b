package deepgram

type deepgramVoice string

const defaultVoice = deepgramVoice("aura-asteria-en")

var availableVoices = []deepgramVoice{
	"aura-asteria-en",
	"aura-luna-en",
	"aura-stella-en",
	"aura-athena-en",
	"aura-hera-en",
	"aura-orion-en",
	"aura-arcas-en",
	"aura-perseus-en",
	"aura-angus-en",
	"aura-orpheus-en",
	"aura-helios-en",
	"aura-zeus-en",
	"aura-2-thalia-en",
	"aura-2-andromeda-en",
	"aura-2-helena-en",
	"aura-2-apollo-en",
	"aura-2-arcas-en",
	"aura-2-aries-en",
	"aura-2-asteria-en",
	"aura-2-luna-en",
	"aura-2-odysseus-en",
	"aura-2-orion-en",
}

func GetAvailableVoices() []deepgramVoice {
	return availableVoices
}

// Voice converts a voice name, as found in configuration, into a voice. It
// does not check that the voice exists.
func Voice(name string) deepgramVoice {
	return deepgramVoice(name)
}
