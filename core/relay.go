package orchestration

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-helpline/core/events"
	"github.com/koscakluka/ema-helpline/core/telephony"
)

// relayFrames reads the telephony stream until the caller hangs up or the
// connection fails, forwarding caller audio to speech recognition. On the
// way out it tells recognition that no more audio will follow.
func (c *call) relayFrames(ctx context.Context) error {
	defer func() {
		if err := c.session.recognition.CloseStream(); err != nil && !c.isClosed() {
			logger.DebugContext(ctx, "failed to close recognition input",
				"call_id", c.session.ID,
				"error", err)
		}
	}()

	for {
		_, msg, err := c.session.telephony.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("failed to read telephony message: %w", err)
		}

		frame, err := telephony.Decode(msg)
		if err != nil {
			logger.WarnContext(ctx, "skipping malformed telephony message",
				"call_id", c.session.ID,
				"error", err)
			continue
		}

		switch frame := frame.(type) {
		case telephony.ConnectedFrame:
			logger.DebugContext(ctx, "telephony stream connected",
				"call_id", c.session.ID,
				"protocol", frame.Protocol)

		case telephony.StartFrame:
			if !c.session.start(frame.StreamSID, frame.CallSID) {
				logger.WarnContext(ctx, "ignoring repeated start message",
					"call_id", c.session.ID,
					"stream_sid", frame.StreamSID)
				continue
			}
			logger.InfoContext(ctx, "telephony stream started",
				"call_id", c.session.ID,
				"stream_sid", frame.StreamSID,
				"call_sid", frame.CallSID)
			c.emitEvent(events.NewCallStarted(c.session.ID, frame.StreamSID, frame.CallSID))

		case telephony.MediaFrame:
			if err := c.session.recognition.SendAudio(frame.Audio); err != nil {
				return fmt.Errorf("failed to forward caller audio: %w", err)
			}

		case telephony.StopFrame:
			logger.InfoContext(ctx, "telephony stream stopped", "call_id", c.session.ID)
			return nil

		case telephony.MarkFrame:
			c.emitEvent(events.NewAssistantPlaybackMarkPlayed(c.session.ID, frame.Name))

		case telephony.UnrecognizedFrame:
			logger.DebugContext(ctx, "skipping unrecognized telephony message",
				"call_id", c.session.ID,
				"event", frame.Event)
		}
	}
}
