package speechtotext

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// MessageReader is the read half of a recognition stream.
type MessageReader interface {
	ReadMessage() ([]byte, error)
}

// ReadTranscripts reads recognition messages from source until the stream
// ends and dispatches them to the configured callbacks.
//
// Interim transcripts only reach the interim callback. Every final,
// non-empty transcript reaches the transcription callback exactly once.
// Messages that cannot be parsed, transcripts without alternatives and
// empty transcripts are skipped.
//
// It returns nil when the service signals the end of the stream, either
// with a metadata message or by closing it normally. ReadTranscripts does
// not interrupt a blocked read when ctx is cancelled; close the underlying
// stream for that.
func ReadTranscripts(ctx context.Context, source MessageReader, opts ...TranscriptionOption) error {
	options := TranscriptionOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	for {
		msg, err := source.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read recognition message: %w", err)
		}

		event, err := ParseEvent(msg)
		if err != nil {
			logger.DebugContext(ctx, "skipping recognition message", "error", err)
			continue
		}

		switch event := event.(type) {
		case TranscriptEvent:
			if event.Text == "" {
				continue
			}
			if !event.IsFinal {
				if options.InterimTranscriptionCallback != nil {
					options.InterimTranscriptionCallback(event.Text)
				}
				continue
			}
			if options.TranscriptionCallback != nil {
				options.TranscriptionCallback(event.Text)
			}

		case MetadataEvent:
			logger.DebugContext(ctx, "recognition stream finished",
				"request_id", event.RequestID,
				"duration", event.Duration)
			return nil

		case SpeechStartedEvent:
			if options.SpeechStartedCallback != nil {
				options.SpeechStartedCallback()
			}

		case UtteranceEndEvent:
			if options.SpeechEndedCallback != nil {
				options.SpeechEndedCallback()
			}

		case ErrorEvent:
			logger.WarnContext(ctx, "recognition service reported an error",
				"description", event.Description,
				"message", event.Message)

		case UnrecognizedEvent:
			logger.DebugContext(ctx, "skipping unrecognized recognition message", "type", event.Type)
		}
	}
}
