package speechtotext

import (
	"time"

	"github.com/koscakluka/ema-helpline/core/audio"
)

type TranscriptionOptions struct {
	InterimTranscriptionCallback func(transcript string)
	TranscriptionCallback        func(transcript string)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()
}

type TranscriptionOption func(*TranscriptionOptions)

// WithTranscriptionCallback sets the callback invoked once per finalized,
// non-empty transcript. The reader does not read further messages until the
// callback returns.
func WithTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptionCallback = callback
	}
}

func WithInterimTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.InterimTranscriptionCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechEndedCallback = callback
	}
}

const (
	DefaultModel             = "nova-3"
	DefaultLanguage          = "en-US"
	DefaultEndpointing       = 1000 * time.Millisecond
	DefaultKeepAliveInterval = 5 * time.Second
)

// StreamOptions configures a recognition stream.
type StreamOptions struct {
	EncodingInfo audio.EncodingInfo
	Model        string
	Language     string

	InterimResults bool
	SmartFormat    bool
	// Endpointing is how long a pause has to be before a transcript is
	// finalized.
	Endpointing time.Duration
	// KeepAliveInterval is how long the stream may go without audio before
	// a keep-alive message is sent. Zero disables keep-alives.
	KeepAliveInterval time.Duration
}

type StreamOption func(*StreamOptions)

func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		EncodingInfo:      audio.GetTelephonyEncodingInfo(),
		Model:             DefaultModel,
		Language:          DefaultLanguage,
		InterimResults:    true,
		SmartFormat:       true,
		Endpointing:       DefaultEndpointing,
		KeepAliveInterval: DefaultKeepAliveInterval,
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) StreamOption {
	return func(o *StreamOptions) {
		if encodingInfo.IsZero() {
			return
		}
		o.EncodingInfo = encodingInfo
	}
}

func WithModel(model string) StreamOption {
	return func(o *StreamOptions) {
		if model != "" {
			o.Model = model
		}
	}
}

func WithLanguage(language string) StreamOption {
	return func(o *StreamOptions) { o.Language = language }
}

func WithInterimResults(enabled bool) StreamOption {
	return func(o *StreamOptions) { o.InterimResults = enabled }
}

func WithEndpointing(endpointing time.Duration) StreamOption {
	return func(o *StreamOptions) {
		if endpointing > 0 {
			o.Endpointing = endpointing
		}
	}
}

func WithKeepAliveInterval(interval time.Duration) StreamOption {
	return func(o *StreamOptions) { o.KeepAliveInterval = interval }
}
