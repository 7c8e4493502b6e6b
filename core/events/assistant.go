package events

const (
	KindAssistantResponseFinal      Kind = "assistant_response.final"
	KindAssistantPlaybackSent       Kind = "assistant_playback.sent"
	KindAssistantPlaybackMarkPlayed Kind = "assistant_playback.mark_played"
)

// AssistantResponseFinal carries the reply that will be spoken. Fallback is
// set when the reply could not be generated and the fallback reply is used.
type AssistantResponseFinal struct {
	Base
	Text     string
	Fallback bool
}

func NewAssistantResponseFinal(callID, text string, fallback bool) AssistantResponseFinal {
	return AssistantResponseFinal{Base: NewBase(KindAssistantResponseFinal, callID), Text: text, Fallback: fallback}
}

// AssistantPlaybackSent reports that every frame of a reply, followed by
// Mark, was written to the caller.
type AssistantPlaybackSent struct {
	Base
	Frames int
	Mark   string
}

func NewAssistantPlaybackSent(callID string, frames int, mark string) AssistantPlaybackSent {
	return AssistantPlaybackSent{Base: NewBase(KindAssistantPlaybackSent, callID), Frames: frames, Mark: mark}
}

type AssistantPlaybackMarkPlayed struct {
	Base
	Mark string
}

func NewAssistantPlaybackMarkPlayed(callID, mark string) AssistantPlaybackMarkPlayed {
	return AssistantPlaybackMarkPlayed{Base: NewBase(KindAssistantPlaybackMarkPlayed, callID), Mark: mark}
}
