// Package telephony decodes and encodes Twilio Media Streams messages.
//
// Inbound messages are decoded into one of a closed set of Frame variants.
// Events this package does not know about decode into UnrecognizedFrame so
// callers can switch exhaustively without treating new events as errors.
package telephony

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

type Kind string

const (
	KindConnected Kind = "connected"
	KindStart     Kind = "start"
	KindMedia     Kind = "media"
	KindStop      Kind = "stop"
	KindMark      Kind = "mark"
)

var (
	ErrMissingEvent     = errors.New("message has no event")
	ErrMissingStreamSID = errors.New("start message has no stream sid")
	ErrMissingPayload   = errors.New("media message has no payload")
)

// Frame is one decoded inbound message.
type Frame interface {
	Kind() Kind
	isFrame()
}

// ConnectedFrame is the first message of every stream.
type ConnectedFrame struct {
	Protocol string
	Version  string
}

// StartFrame carries the stream metadata, sent once before any media.
type StartFrame struct {
	StreamSID        string
	CallSID          string
	AccountSID       string
	Tracks           []string
	MediaFormat      MediaFormat
	CustomParameters map[string]string
}

type MediaFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

// MediaFrame carries decoded caller audio.
type MediaFrame struct {
	StreamSID string
	Track     string
	Chunk     string
	Timestamp string
	Audio     []byte
}

// StopFrame is sent when the call ends or the stream is stopped.
type StopFrame struct {
	StreamSID string
	CallSID   string
}

// MarkFrame acknowledges that the audio sent before an outbound mark with
// the same name has been played to the caller.
type MarkFrame struct {
	StreamSID string
	Name      string
}

// UnrecognizedFrame is any message with an event this package does not
// handle.
type UnrecognizedFrame struct {
	Event string
	Raw   []byte
}

func (ConnectedFrame) Kind() Kind      { return KindConnected }
func (StartFrame) Kind() Kind          { return KindStart }
func (MediaFrame) Kind() Kind          { return KindMedia }
func (StopFrame) Kind() Kind           { return KindStop }
func (MarkFrame) Kind() Kind           { return KindMark }
func (f UnrecognizedFrame) Kind() Kind { return Kind(f.Event) }

func (ConnectedFrame) isFrame()    {}
func (StartFrame) isFrame()        {}
func (MediaFrame) isFrame()        {}
func (StopFrame) isFrame()         {}
func (MarkFrame) isFrame()         {}
func (UnrecognizedFrame) isFrame() {}

type inboundMessage struct {
	Event          string `json:"event"`
	SequenceNumber string `json:"sequenceNumber,omitempty"`
	StreamSID      string `json:"streamSid,omitempty"`

	Protocol string `json:"protocol,omitempty"`
	Version  string `json:"version,omitempty"`

	Start *struct {
		StreamSID        string            `json:"streamSid"`
		AccountSID       string            `json:"accountSid"`
		CallSID          string            `json:"callSid"`
		Tracks           []string          `json:"tracks"`
		MediaFormat      MediaFormat       `json:"mediaFormat"`
		CustomParameters map[string]string `json:"customParameters"`
	} `json:"start,omitempty"`

	Media *struct {
		Track     string `json:"track"`
		Chunk     string `json:"chunk"`
		Timestamp string `json:"timestamp"`
		Payload   string `json:"payload"`
	} `json:"media,omitempty"`

	Stop *struct {
		AccountSID string `json:"accountSid"`
		CallSID    string `json:"callSid"`
	} `json:"stop,omitempty"`

	Mark *markPayload `json:"mark,omitempty"`
}

// Decode parses a single inbound text message.
func Decode(msg []byte) (Frame, error) {
	var parsed inboundMessage
	if err := json.Unmarshal(msg, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal telephony message: %w", err)
	}

	switch Kind(parsed.Event) {
	case "":
		return nil, ErrMissingEvent

	case KindConnected:
		return ConnectedFrame{Protocol: parsed.Protocol, Version: parsed.Version}, nil

	case KindStart:
		frame := StartFrame{StreamSID: parsed.StreamSID}
		if parsed.Start != nil {
			if parsed.Start.StreamSID != "" {
				frame.StreamSID = parsed.Start.StreamSID
			}
			frame.CallSID = parsed.Start.CallSID
			frame.AccountSID = parsed.Start.AccountSID
			frame.Tracks = parsed.Start.Tracks
			frame.MediaFormat = parsed.Start.MediaFormat
			frame.CustomParameters = parsed.Start.CustomParameters
		}
		if frame.StreamSID == "" {
			return nil, ErrMissingStreamSID
		}
		return frame, nil

	case KindMedia:
		if parsed.Media == nil || parsed.Media.Payload == "" {
			return nil, ErrMissingPayload
		}
		audio, err := base64.StdEncoding.DecodeString(parsed.Media.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode media payload: %w", err)
		}
		return MediaFrame{
			StreamSID: parsed.StreamSID,
			Track:     parsed.Media.Track,
			Chunk:     parsed.Media.Chunk,
			Timestamp: parsed.Media.Timestamp,
			Audio:     audio,
		}, nil

	case KindStop:
		frame := StopFrame{StreamSID: parsed.StreamSID}
		if parsed.Stop != nil {
			frame.CallSID = parsed.Stop.CallSID
		}
		return frame, nil

	case KindMark:
		frame := MarkFrame{StreamSID: parsed.StreamSID}
		if parsed.Mark != nil {
			frame.Name = parsed.Mark.Name
		}
		return frame, nil

	default:
		return UnrecognizedFrame{Event: parsed.Event, Raw: msg}, nil
	}
}
