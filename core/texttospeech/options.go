package texttospeech

import (
	"net/http"
	"time"

	"github.com/koscakluka/ema-helpline/core/audio"
)

const DefaultTimeout = 10 * time.Second

type SynthesisOptions struct {
	EncodingInfo audio.EncodingInfo
	// Timeout bounds a single synthesis request.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type SynthesisOption func(*SynthesisOptions)

func DefaultSynthesisOptions() SynthesisOptions {
	return SynthesisOptions{
		EncodingInfo: audio.GetTelephonyEncodingInfo(),
		Timeout:      DefaultTimeout,
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) SynthesisOption {
	return func(o *SynthesisOptions) {
		if encodingInfo.IsZero() {
			logger.Warn("ignoring empty encoding info",
				"format", o.EncodingInfo.Format.Name(),
				"sample_rate", o.EncodingInfo.SampleRate)
			return
		}

		o.EncodingInfo = encodingInfo
	}
}

func WithTimeout(timeout time.Duration) SynthesisOption {
	return func(o *SynthesisOptions) {
		if timeout > 0 {
			o.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the HTTP client used for synthesis requests. The
// client's own timeout is ignored in favour of the synthesis timeout.
func WithHTTPClient(client *http.Client) SynthesisOption {
	return func(o *SynthesisOptions) { o.HTTPClient = client }
}
