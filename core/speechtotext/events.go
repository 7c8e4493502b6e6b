package speechtotext

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
)

const typeErrorResponse api.TypeResponse = "Error"

var (
	ErrMissingType         = errors.New("recognition message has no type")
	ErrMissingAlternatives = errors.New("transcript has no channel alternatives")
)

// Event is one decoded message from the recognition service.
type Event interface {
	isEvent()
}

// TranscriptEvent is a transcript hypothesis. Text is the trimmed transcript
// of the first alternative. Interim hypotheses (IsFinal false) may still
// change; final ones will not.
type TranscriptEvent struct {
	Text        string
	Confidence  float64
	IsFinal     bool
	SpeechFinal bool
	Start       float64
	Duration    float64
}

// MetadataEvent is sent once the recognition service has flushed all results
// for the stream, right before it closes the connection.
type MetadataEvent struct {
	RequestID string
	Duration  float64
}

type SpeechStartedEvent struct {
	Timestamp float64
}

type UtteranceEndEvent struct {
	LastWordEnd float64
}

// ErrorEvent is an error reported in-band by the recognition service.
type ErrorEvent struct {
	Description string
	Message     string
}

type UnrecognizedEvent struct {
	Type string
	Raw  []byte
}

func (TranscriptEvent) isEvent()    {}
func (MetadataEvent) isEvent()      {}
func (SpeechStartedEvent) isEvent() {}
func (UtteranceEndEvent) isEvent()  {}
func (ErrorEvent) isEvent()         {}
func (UnrecognizedEvent) isEvent()  {}

// ParseEvent decodes a single recognition message. A message without a type
// is treated as a transcript when it carries a channel. Transcript messages
// without a channel or without alternatives are reported as
// ErrMissingAlternatives so they can be skipped.
func ParseEvent(msg []byte) (Event, error) {
	var envelope struct {
		Type    string           `json:"type"`
		Channel *json.RawMessage `json:"channel"`
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recognition message: %w", err)
	}

	switch api.TypeResponse(envelope.Type) {
	case "":
		if envelope.Channel == nil {
			return nil, ErrMissingType
		}
		return parseTranscript(msg)

	case api.TypeMessageResponse:
		if envelope.Channel == nil {
			return nil, ErrMissingAlternatives
		}
		return parseTranscript(msg)

	case api.TypeMetadataResponse:
		var resp api.MetadataResponse
		if err := json.Unmarshal(msg, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		return MetadataEvent{RequestID: resp.RequestID, Duration: resp.Duration}, nil

	case api.TypeSpeechStartedResponse:
		var resp api.SpeechStartedResponse
		if err := json.Unmarshal(msg, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal speech started: %w", err)
		}
		return SpeechStartedEvent{Timestamp: resp.Timestamp}, nil

	case api.TypeUtteranceEndResponse:
		var resp api.UtteranceEndResponse
		if err := json.Unmarshal(msg, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal utterance end: %w", err)
		}
		return UtteranceEndEvent{LastWordEnd: resp.LastWordEnd}, nil

	case typeErrorResponse:
		var resp struct {
			Description string `json:"description"`
			Message     string `json:"message"`
		}
		if err := json.Unmarshal(msg, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal error: %w", err)
		}
		return ErrorEvent{Description: resp.Description, Message: resp.Message}, nil

	default:
		return UnrecognizedEvent{Type: envelope.Type, Raw: msg}, nil
	}
}

func parseTranscript(msg []byte) (Event, error) {
	var resp api.MessageResponse
	if err := json.Unmarshal(msg, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	if len(resp.Channel.Alternatives) == 0 {
		return nil, ErrMissingAlternatives
	}
	alternative := resp.Channel.Alternatives[0]
	return TranscriptEvent{
		Text:        strings.TrimSpace(alternative.Transcript),
		Confidence:  alternative.Confidence,
		IsFinal:     resp.IsFinal,
		SpeechFinal: resp.SpeechFinal,
		Start:       resp.Start,
		Duration:    resp.Duration,
	}, nil
}
