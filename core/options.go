package orchestration

import (
	"time"

	"github.com/koscakluka/ema-helpline/core/events"
	"github.com/koscakluka/ema-helpline/core/speechtotext"
	"github.com/koscakluka/ema-helpline/core/texttospeech"
)

const (
	DefaultCloseGracePeriod       = 3 * time.Second
	DefaultUtteranceQueueCapacity = 16
)

type OrchestratorOption func(*Orchestrator)

// SpeechToText opens one recognition stream per call.
type SpeechToText = speechtotext.StreamOpener

func WithSpeechToTextClient(client SpeechToText) OrchestratorOption {
	return func(o *Orchestrator) {
		o.speechToText = client
	}
}

func WithResponder(responder Responder) OrchestratorOption {
	return func(o *Orchestrator) {
		o.responder = responder
	}
}

// TextToSpeech synthesizes a complete reply per request.
type TextToSpeech = texttospeech.Synthesizer

func WithTextToSpeechClient(client TextToSpeech) OrchestratorOption {
	return func(o *Orchestrator) {
		o.textToSpeech = client
	}
}

// WithEventHandler registers a handler for every call's events. It can be
// repeated; handlers are called in registration order.
func WithEventHandler(handler events.Handler) OrchestratorOption {
	return func(o *Orchestrator) {
		if handler != nil {
			o.eventHandlers = append(o.eventHandlers, handler)
		}
	}
}

// WithCloseGracePeriod sets how long a reply that is in flight when the call
// closes may keep running before it is abandoned.
func WithCloseGracePeriod(gracePeriod time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if gracePeriod >= 0 {
			o.closeGracePeriod = gracePeriod
		}
	}
}

// WithUtteranceQueueCapacity sets how many finalized utterances may wait for
// a reply. Once full, transcript reading pauses until a reply starts.
func WithUtteranceQueueCapacity(capacity int) OrchestratorOption {
	return func(o *Orchestrator) {
		if capacity > 0 {
			o.queueCapacity = capacity
		}
	}
}
