package telephony

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeStart(t *testing.T) {
	msg := []byte(`{"event":"start","sequenceNumber":"1","start":{"accountSid":"AC1","streamSid":"MZ1","callSid":"CA1","tracks":["inbound"],"mediaFormat":{"encoding":"audio/x-mulaw","sampleRate":8000,"channels":1},"customParameters":{"caller":"x"}},"streamSid":"MZ1"}`)

	frame, err := Decode(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	start, ok := frame.(StartFrame)
	if !ok {
		t.Fatalf("expected StartFrame, got %T", frame)
	}
	if start.StreamSID != "MZ1" || start.CallSID != "CA1" || start.AccountSID != "AC1" {
		t.Fatalf("unexpected start frame: %+v", start)
	}
	if start.MediaFormat.SampleRate != 8000 {
		t.Fatalf("expected sample rate 8000, got %d", start.MediaFormat.SampleRate)
	}
	if start.CustomParameters["caller"] != "x" {
		t.Fatalf("expected custom parameters to be decoded, got %v", start.CustomParameters)
	}
}

func TestDecodeStartFallsBackToTopLevelStreamSID(t *testing.T) {
	frame, err := Decode([]byte(`{"event":"start","streamSid":"MZ2","start":{}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := frame.(StartFrame).StreamSID; got != "MZ2" {
		t.Fatalf("expected stream sid MZ2, got %q", got)
	}
}

func TestDecodeStartWithoutStreamSID(t *testing.T) {
	if _, err := Decode([]byte(`{"event":"start","start":{}}`)); !errors.Is(err, ErrMissingStreamSID) {
		t.Fatalf("expected ErrMissingStreamSID, got %v", err)
	}
}

func TestMediaPayloadRoundTrip(t *testing.T) {
	audio := make([]byte, 160)
	for i := range audio {
		audio[i] = byte(255 - i)
	}

	msg, err := Encode(NewInboundMediaMessage("MZ1", 3, 60, audio))
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}

	frame, err := Decode(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	media, ok := frame.(MediaFrame)
	if !ok {
		t.Fatalf("expected MediaFrame, got %T", frame)
	}
	if !bytes.Equal(media.Audio, audio) {
		t.Fatalf("decoded audio differs from the original")
	}
	if media.Chunk != "3" || media.Timestamp != "60" || media.StreamSID != "MZ1" {
		t.Fatalf("unexpected media metadata: %+v", media)
	}
}

func TestDecodeMalformed(t *testing.T) {
	testCases := []struct {
		name    string
		msg     string
		wantErr error
	}{
		{name: "missing event", msg: `{"streamSid":"MZ1"}`, wantErr: ErrMissingEvent},
		{name: "media without payload", msg: `{"event":"media","media":{}}`, wantErr: ErrMissingPayload},
		{name: "media without media object", msg: `{"event":"media"}`, wantErr: ErrMissingPayload},
		{name: "invalid base64", msg: `{"event":"media","media":{"payload":"***"}}`},
		{name: "not json", msg: `event=media`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := Decode([]byte(testCase.msg))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if testCase.wantErr != nil && !errors.Is(err, testCase.wantErr) {
				t.Fatalf("expected %v, got %v", testCase.wantErr, err)
			}
		})
	}
}

func TestDecodeOtherKinds(t *testing.T) {
	testCases := []struct {
		name string
		msg  string
		want Frame
	}{
		{name: "connected", msg: `{"event":"connected","protocol":"Call","version":"1.0.0"}`, want: ConnectedFrame{Protocol: "Call", Version: "1.0.0"}},
		{name: "stop", msg: `{"event":"stop","streamSid":"MZ1","stop":{"callSid":"CA1"}}`, want: StopFrame{StreamSID: "MZ1", CallSID: "CA1"}},
		{name: "mark", msg: `{"event":"mark","streamSid":"MZ1","mark":{"name":"end-tts"}}`, want: MarkFrame{StreamSID: "MZ1", Name: "end-tts"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			frame, err := Decode([]byte(testCase.msg))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if frame != testCase.want {
				t.Fatalf("expected %+v, got %+v", testCase.want, frame)
			}
		})
	}
}

func TestDecodeUnrecognized(t *testing.T) {
	frame, err := Decode([]byte(`{"event":"dtmf","dtmf":{"digit":"1"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	unrecognized, ok := frame.(UnrecognizedFrame)
	if !ok {
		t.Fatalf("expected UnrecognizedFrame, got %T", frame)
	}
	if unrecognized.Event != "dtmf" || unrecognized.Kind() != Kind("dtmf") {
		t.Fatalf("unexpected unrecognized frame: %+v", unrecognized)
	}
}

func TestOutboundMessages(t *testing.T) {
	media, err := Encode(NewMediaMessage("MZ1", []byte{0xff, 0x7f}))
	if err != nil {
		t.Fatalf("failed to encode media: %v", err)
	}
	var parsedMedia map[string]any
	if err := json.Unmarshal(media, &parsedMedia); err != nil {
		t.Fatalf("failed to parse media: %v", err)
	}
	if parsedMedia["event"] != "media" || parsedMedia["streamSid"] != "MZ1" {
		t.Fatalf("unexpected media message: %s", media)
	}
	if payload := parsedMedia["media"].(map[string]any)["payload"]; payload != "/38=" {
		t.Fatalf("unexpected payload %v", payload)
	}

	mark, err := Encode(NewMarkMessage("MZ1", EndOfSpeechMark))
	if err != nil {
		t.Fatalf("failed to encode mark: %v", err)
	}
	if string(mark) != `{"event":"mark","streamSid":"MZ1","mark":{"name":"end-tts"}}` {
		t.Fatalf("unexpected mark message: %s", mark)
	}
}
