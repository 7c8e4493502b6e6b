package telephony

import (
	"encoding/base64"
	"encoding/json"
)

// EndOfSpeechMark names the mark sent after the last frame of every reply.
const EndOfSpeechMark = "end-tts"

type mediaPayload struct {
	Payload string `json:"payload"`
}

type markPayload struct {
	Name string `json:"name"`
}

// MediaMessage plays one frame of audio to the caller.
type MediaMessage struct {
	Event     Kind         `json:"event"`
	StreamSID string       `json:"streamSid"`
	Media     mediaPayload `json:"media"`
}

// MarkMessage asks the telephony side to echo the mark back once all audio
// sent before it has been played.
type MarkMessage struct {
	Event     Kind        `json:"event"`
	StreamSID string      `json:"streamSid"`
	Mark      markPayload `json:"mark"`
}

func NewMediaMessage(streamSID string, audio []byte) MediaMessage {
	return MediaMessage{
		Event:     KindMedia,
		StreamSID: streamSID,
		Media:     mediaPayload{Payload: base64.StdEncoding.EncodeToString(audio)},
	}
}

func NewMarkMessage(streamSID, name string) MarkMessage {
	return MarkMessage{Event: KindMark, StreamSID: streamSID, Mark: markPayload{Name: name}}
}

// Encode marshals an outbound message into the text payload of a websocket
// message.
func Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}
