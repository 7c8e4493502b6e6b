package telephony

import (
	"encoding/base64"
	"strconv"
)

// The constructors below build the messages the telephony side sends. They
// are used to drive a stream without a real phone call.

type startPayload struct {
	StreamSID   string      `json:"streamSid"`
	CallSID     string      `json:"callSid"`
	Tracks      []string    `json:"tracks"`
	MediaFormat MediaFormat `json:"mediaFormat"`
}

type inboundMediaPayload struct {
	Track     string `json:"track"`
	Chunk     string `json:"chunk"`
	Timestamp string `json:"timestamp"`
	Payload   string `json:"payload"`
}

type ConnectedMessage struct {
	Event    Kind   `json:"event"`
	Protocol string `json:"protocol"`
	Version  string `json:"version"`
}

type StartMessage struct {
	Event     Kind         `json:"event"`
	StreamSID string       `json:"streamSid"`
	Start     startPayload `json:"start"`
}

type InboundMediaMessage struct {
	Event     Kind                `json:"event"`
	StreamSID string              `json:"streamSid"`
	Media     inboundMediaPayload `json:"media"`
}

type StopMessage struct {
	Event     Kind   `json:"event"`
	StreamSID string `json:"streamSid"`
}

func NewConnectedMessage() ConnectedMessage {
	return ConnectedMessage{Event: KindConnected, Protocol: "Call", Version: "1.0.0"}
}

func NewStartMessage(streamSID, callSID string) StartMessage {
	return StartMessage{
		Event:     KindStart,
		StreamSID: streamSID,
		Start: startPayload{
			StreamSID: streamSID,
			CallSID:   callSID,
			Tracks:    []string{"inbound"},
			MediaFormat: MediaFormat{
				Encoding:   "audio/x-mulaw",
				SampleRate: 8000,
				Channels:   1,
			},
		},
	}
}

// NewInboundMediaMessage builds the chunk-th caller media message; timestamp
// is the offset from the start of the stream in milliseconds.
func NewInboundMediaMessage(streamSID string, chunk int, timestamp int64, audio []byte) InboundMediaMessage {
	return InboundMediaMessage{
		Event:     KindMedia,
		StreamSID: streamSID,
		Media: inboundMediaPayload{
			Track:     "inbound",
			Chunk:     strconv.Itoa(chunk),
			Timestamp: strconv.FormatInt(timestamp, 10),
			Payload:   base64.StdEncoding.EncodeToString(audio),
		},
	}
}

func NewStopMessage(streamSID string) StopMessage {
	return StopMessage{Event: KindStop, StreamSID: streamSID}
}
