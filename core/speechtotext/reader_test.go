package speechtotext

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
)

type messageReaderStub struct {
	messages []string
	err      error
}

func (s *messageReaderStub) ReadMessage() ([]byte, error) {
	if len(s.messages) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	msg := s.messages[0]
	s.messages = s.messages[1:]
	return []byte(msg), nil
}

func transcriptMessage(text string, isFinal bool) string {
	final := "false"
	if isFinal {
		final = "true"
	}
	return `{"type":"Results","channel_index":[0,1],"duration":1.2,"start":0,"is_final":` + final +
		`,"speech_final":` + final + `,"channel":{"alternatives":[{"transcript":"` + text + `","confidence":0.98}]}}`
}

func TestReadTranscriptsSeparatesInterimFromFinal(t *testing.T) {
	source := &messageReaderStub{messages: []string{
		transcriptMessage("I need", false),
		transcriptMessage("I need help", true),
		`{"type":"Metadata","request_id":"req-1","duration":3.5}`,
		transcriptMessage("never read", true),
	}}

	var interim, final []string
	err := ReadTranscripts(context.Background(), source,
		WithInterimTranscriptionCallback(func(transcript string) { interim = append(interim, transcript) }),
		WithTranscriptionCallback(func(transcript string) { final = append(final, transcript) }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(interim, []string{"I need"}) {
		t.Fatalf("expected one interim transcript, got %v", interim)
	}
	if !slices.Equal(final, []string{"I need help"}) {
		t.Fatalf("expected one final transcript, got %v", final)
	}
	if len(source.messages) != 1 {
		t.Fatalf("expected reader to stop at metadata, %d messages left", len(source.messages))
	}
}

func TestReadTranscriptsAcceptsUntypedTranscripts(t *testing.T) {
	source := &messageReaderStub{messages: []string{
		`{"channel":{"alternatives":[{"transcript":"I need"}]},"is_final":false}`,
		`{"channel":{"alternatives":[{"transcript":"I need help"}]},"is_final":true}`,
	}}

	var interim, final []string
	err := ReadTranscripts(context.Background(), source,
		WithInterimTranscriptionCallback(func(transcript string) { interim = append(interim, transcript) }),
		WithTranscriptionCallback(func(transcript string) { final = append(final, transcript) }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(interim, []string{"I need"}) {
		t.Fatalf("expected one interim transcript, got %v", interim)
	}
	if !slices.Equal(final, []string{"I need help"}) {
		t.Fatalf("expected one final transcript, got %v", final)
	}
}

func TestReadTranscriptsSkipsUnusableMessages(t *testing.T) {
	source := &messageReaderStub{messages: []string{
		`{"type":"Results","is_final":true}`,
		`{"type":"Results","is_final":true,"channel":{"alternatives":[]}}`,
		transcriptMessage("   ", true),
		`not json`,
		`{"channel":{}}`,
		`{"type":"Finalize"}`,
		`{"type":"Error","description":"bad audio","message":"oops"}`,
		transcriptMessage("  call an ambulance  ", true),
	}}

	var final []string
	err := ReadTranscripts(context.Background(), source,
		WithTranscriptionCallback(func(transcript string) { final = append(final, transcript) }),
	)
	if err != nil {
		t.Fatalf("expected normal end of stream, got %v", err)
	}
	if !slices.Equal(final, []string{"call an ambulance"}) {
		t.Fatalf("expected only the usable transcript, got %v", final)
	}
}

func TestReadTranscriptsSpeechCallbacks(t *testing.T) {
	source := &messageReaderStub{messages: []string{
		`{"type":"SpeechStarted","channel":[0],"timestamp":0.5}`,
		`{"type":"UtteranceEnd","channel":[0,1],"last_word_end":2.1}`,
	}}

	started, ended := 0, 0
	err := ReadTranscripts(context.Background(), source,
		WithSpeechStartedCallback(func() { started++ }),
		WithSpeechEndedCallback(func() { ended++ }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started != 1 || ended != 1 {
		t.Fatalf("expected one start and one end, got %d and %d", started, ended)
	}
}

func TestReadTranscriptsReturnsTransportErrors(t *testing.T) {
	transportErr := errors.New("connection reset")
	source := &messageReaderStub{err: transportErr}

	err := ReadTranscripts(context.Background(), source)
	if !errors.Is(err, transportErr) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestReadTranscriptsReportsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &messageReaderStub{err: errors.New("use of closed network connection")}
	if err := ReadTranscripts(ctx, source); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseEvent(t *testing.T) {
	testCases := []struct {
		name    string
		msg     string
		want    Event
		wantErr error
	}{
		{name: "interim transcript", msg: transcriptMessage(" hello ", false), want: TranscriptEvent{Text: "hello", Confidence: 0.98, Duration: 1.2}},
		{name: "metadata", msg: `{"type":"Metadata","request_id":"r","duration":2}`, want: MetadataEvent{RequestID: "r", Duration: 2}},
		{name: "speech started", msg: `{"type":"SpeechStarted","channel":[0],"timestamp":1.5}`, want: SpeechStartedEvent{Timestamp: 1.5}},
		{name: "utterance end", msg: `{"type":"UtteranceEnd","channel":[0],"last_word_end":3}`, want: UtteranceEndEvent{LastWordEnd: 3}},
		{name: "channel absent", msg: `{"type":"Results","is_final":true}`, wantErr: ErrMissingAlternatives},
		{name: "untyped transcript", msg: `{"channel":{"alternatives":[{"transcript":"I need help"}]},"is_final":true}`, want: TranscriptEvent{Text: "I need help", IsFinal: true}},
		{name: "untyped channel without alternatives", msg: `{"channel":{"alternatives":[]},"is_final":true}`, wantErr: ErrMissingAlternatives},
		{name: "type and channel absent", msg: `{"is_final":true}`, wantErr: ErrMissingType},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			event, err := ParseEvent([]byte(testCase.msg))
			if testCase.wantErr != nil {
				if !errors.Is(err, testCase.wantErr) {
					t.Fatalf("expected %v, got %v", testCase.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if event != testCase.want {
				t.Fatalf("expected %+v, got %+v", testCase.want, event)
			}
		})
	}
}
