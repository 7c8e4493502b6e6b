// Package orchestration bridges phone calls to a conversational assistant.
//
// Each call runs three workers: the frame relay forwards caller audio to
// speech recognition, the transcript reader queues finalized utterances,
// and the reply worker answers them one at a time, streaming synthesized
// speech back to the caller.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/koscakluka/ema-helpline/core/events"
	"github.com/koscakluka/ema-helpline/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrSpeechToTextNotConfigured = errors.New("speech-to-text client not configured")
	ErrResponderNotConfigured    = errors.New("responder not configured")
	ErrTextToSpeechNotConfigured = errors.New("text-to-speech client not configured")
	ErrMissingStreamSID          = errors.New("stream sid not received yet")
)

// Responder produces the reply to a single utterance. It must always return
// text that can be spoken.
type Responder interface {
	Respond(ctx context.Context, utterance string) llms.Reply
}

// Orchestrator holds the clients shared by every call. It is safe for
// concurrent use; each HandleCall runs an independent call.
type Orchestrator struct {
	speechToText SpeechToText
	responder    Responder
	textToSpeech TextToSpeech

	eventHandlers    []events.Handler
	closeGracePeriod time.Duration
	queueCapacity    int

	activeCalls atomic.Int64
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		closeGracePeriod: DefaultCloseGracePeriod,
		queueCapacity:    DefaultUtteranceQueueCapacity,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ActiveCalls returns the number of calls currently being handled.
func (o *Orchestrator) ActiveCalls() int64 {
	return o.activeCalls.Load()
}

func (o *Orchestrator) validate() error {
	var errs []error
	if o.speechToText == nil {
		errs = append(errs, ErrSpeechToTextNotConfigured)
	}
	if o.responder == nil {
		errs = append(errs, ErrResponderNotConfigured)
	}
	if o.textToSpeech == nil {
		errs = append(errs, ErrTextToSpeechNotConfigured)
	}
	return errors.Join(errs...)
}

// HandleCall runs a phone call on conn until it ends and releases conn
// before returning. The returned error joins every worker failure; a call
// ended by the caller hanging up returns nil.
func (o *Orchestrator) HandleCall(ctx context.Context, conn TelephonyConn) error {
	ctx, span := tracer.Start(ctx, "handle call")
	defer span.End()

	if err := o.validate(); err != nil {
		_ = conn.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	recognition, err := o.speechToText.OpenStream(ctx)
	if err != nil {
		_ = conn.Close()
		err = fmt.Errorf("failed to open recognition stream: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	o.activeCalls.Add(1)
	defer o.activeCalls.Add(-1)

	session := newCallSession(conn, recognition)
	span.SetAttributes(attribute.String("call.id", session.ID))
	logger.InfoContext(ctx, "call accepted", "call_id", session.ID)

	err = newCall(o, session).run(ctx)

	span.SetAttributes(
		attribute.String("call.stream_sid", session.StreamSID()),
		attribute.Int("call.turns", len(session.Turns())),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WarnContext(ctx, "call ended with errors", "call_id", session.ID, "error", err)
		return err
	}
	logger.InfoContext(ctx, "call ended", "call_id", session.ID)
	return nil
}
