package texttospeech

import (
	"testing"

	"github.com/koscakluka/ema-helpline/core/audio"
)

func TestWithEncodingInfoIgnoresEmptyEncoding(t *testing.T) {
	options := DefaultSynthesisOptions()
	WithEncodingInfo(audio.EncodingInfo{})(&options)

	if options.EncodingInfo != audio.GetTelephonyEncodingInfo() {
		t.Fatalf("expected telephony encoding to be kept, got %+v", options.EncodingInfo)
	}
}

func TestWithEncodingInfoOverridesDefault(t *testing.T) {
	linear := audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingLinear16}

	options := DefaultSynthesisOptions()
	WithEncodingInfo(linear)(&options)

	if options.EncodingInfo != linear {
		t.Fatalf("expected %+v, got %+v", linear, options.EncodingInfo)
	}
}
