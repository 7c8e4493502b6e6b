package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/koscakluka/ema-helpline/core/audio"
	"github.com/koscakluka/ema-helpline/core/events"
	"github.com/koscakluka/ema-helpline/core/speechtotext"
	"github.com/koscakluka/ema-helpline/core/telephony"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// readTranscripts queues every finalized utterance for a reply.
func (c *call) readTranscripts(ctx context.Context) error {
	err := speechtotext.ReadTranscripts(ctx, c.session.recognition,
		speechtotext.WithInterimTranscriptionCallback(func(transcript string) {
			c.emitEvent(events.NewUserTranscriptInterimUpdated(c.session.ID, transcript))
		}),
		speechtotext.WithTranscriptionCallback(func(transcript string) {
			c.session.addTurn(events.TurnRoleUser, transcript)
			c.emitEvent(events.NewUserTranscriptFinal(c.session.ID, transcript))
			if !c.enqueue(transcript) {
				c.emitEvent(events.NewTurnCancelled(c.session.ID, transcript))
			}
		}),
		speechtotext.WithSpeechStartedCallback(func() {
			c.emitEvent(events.NewUserSpeechStarted(c.session.ID))
		}),
		speechtotext.WithSpeechEndedCallback(func() {
			c.emitEvent(events.NewUserSpeechEnded(c.session.ID))
		}),
	)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// processUtterances answers queued utterances one at a time, in order.
func (c *call) processUtterances(ctx context.Context) error {
	for {
		select {
		case <-c.closeCh:
			c.dropQueued()
			return nil
		case utterance := <-c.utterances:
			if c.isClosed() {
				c.emitEvent(events.NewTurnCancelled(c.session.ID, utterance))
				c.dropQueued()
				return nil
			}
			c.reply(ctx, utterance)
		}
	}
}

func (c *call) reply(ctx context.Context, utterance string) {
	ctx, span := tracer.Start(ctx, "reply cycle", trace.WithAttributes(
		attribute.String("call.id", c.session.ID),
	))
	defer span.End()

	c.emitEvent(events.NewTurnStarted(c.session.ID, utterance))

	stage, err := c.runReplyCycle(ctx, utterance)
	for _, state := range []CallState{StateGenerating, StateSynthesizing, StateStreamingBack} {
		if c.session.transition(state, StateActive) {
			break
		}
	}

	if err != nil {
		span.SetAttributes(attribute.String("reply.failed_stage", stage.String()))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "reply cycle failed",
			"call_id", c.session.ID,
			"stage", stage.String(),
			"error", err)
		c.emitEvent(events.NewTurnFailed(c.session.ID, stage.String(), err))
		return
	}
	c.emitEvent(events.NewTurnCompleted(c.session.ID))
}

// runReplyCycle returns the stage it failed at along with the error. A panic
// in any stage fails only the current utterance.
func (c *call) runReplyCycle(ctx context.Context, utterance string) (stage CallState, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			stage = c.session.State()
			err = fmt.Errorf("reply cycle panicked: %v", recovered)
		}
	}()

	streamSID := c.session.StreamSID()
	if streamSID == "" {
		return StateAwaitingStart, ErrMissingStreamSID
	}
	if !c.session.transition(StateActive, StateGenerating) {
		return c.session.State(), fmt.Errorf("cannot reply while %s", c.session.State())
	}

	reply := c.responder.Respond(ctx, utterance)
	if reply.Fallback {
		logger.WarnContext(ctx, "using fallback reply", "call_id", c.session.ID, "error", reply.Err)
	}
	c.session.addTurn(events.TurnRoleAssistant, reply.Text)
	c.emitEvent(events.NewAssistantResponseFinal(c.session.ID, reply.Text, reply.Fallback))

	if !c.session.transition(StateGenerating, StateSynthesizing) {
		return StateGenerating, errors.New("call state changed during generation")
	}
	speech, err := c.textToSpeech.Synthesize(ctx, reply.Text)
	if err != nil {
		return StateSynthesizing, fmt.Errorf("failed to synthesize reply: %w", err)
	}

	if !c.session.transition(StateSynthesizing, StateStreamingBack) {
		return StateSynthesizing, errors.New("call state changed during synthesis")
	}
	frames, err := c.streamBack(ctx, streamSID, speech)
	if err != nil {
		return StateStreamingBack, fmt.Errorf("failed to stream reply: %w", err)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("reply.frames", frames))
	c.emitEvent(events.NewAssistantPlaybackSent(c.session.ID, frames, telephony.EndOfSpeechMark))

	return StateActive, nil
}

// streamBack writes speech as telephony-sized frames followed by the end of
// speech mark.
func (c *call) streamBack(ctx context.Context, streamSID string, speech []byte) (int, error) {
	frames := audio.Chunk(speech, audio.TelephonyFrameSize)
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := c.session.send(telephony.NewMediaMessage(streamSID, frame)); err != nil {
			return i, err
		}
	}

	if err := c.session.send(telephony.NewMarkMessage(streamSID, telephony.EndOfSpeechMark)); err != nil {
		return len(frames), err
	}
	return len(frames), nil
}
