package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koscakluka/ema-helpline/core/texttospeech"
)

func TestSynthesizeEmptyTextMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client, err := NewTextToSpeechClient("secret", "", WithSpeakURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	speech, err := client.Synthesize(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(speech) != 0 {
		t.Fatalf("expected empty audio, got %d bytes", len(speech))
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no request, got %d", calls.Load())
	}
}

func TestSynthesizeRequest(t *testing.T) {
	audio := bytes.Repeat([]byte{0xff}, 480)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Token secret" {
			t.Errorf("expected token authorization, got %q", got)
		}
		query := r.URL.Query()
		if query.Get("model") != "aura-asteria-en" || query.Get("encoding") != "mulaw" ||
			query.Get("sample_rate") != "8000" || query.Get("container") != "none" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		var body speakRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body.Text != "Stay calm." {
			t.Errorf("expected trimmed text, got %q", body.Text)
		}
		w.Header().Set("Content-Type", "audio/mulaw")
		_, _ = w.Write(audio)
	}))
	defer server.Close()

	client, err := NewTextToSpeechClient("secret", defaultVoice, WithSpeakURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	speech, err := client.Synthesize(context.Background(), " Stay calm. ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(speech, audio) {
		t.Fatalf("expected %d bytes of audio, got %d", len(audio), len(speech))
	}
}

func TestSynthesizeNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"err_msg":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewTextToSpeechClient("secret", defaultVoice, WithSpeakURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.Synthesize(context.Background(), "hello")
	var synthesisErr *texttospeech.SynthesisError
	if !errors.As(err, &synthesisErr) {
		t.Fatalf("expected SynthesisError, got %v", err)
	}
	if synthesisErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", synthesisErr.StatusCode)
	}
	if synthesisErr.Body != `{"err_msg":"quota exceeded"}` {
		t.Fatalf("unexpected body %q", synthesisErr.Body)
	}
}

func TestSynthesizeTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewTextToSpeechClient("secret", defaultVoice,
		WithSpeakURL(server.URL),
		WithSynthesisOptions(texttospeech.WithTimeout(50*time.Millisecond)))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	start := time.Now()
	if _, err := client.Synthesize(context.Background(), "hello"); err == nil {
		t.Fatalf("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected request to be bounded, took %s", elapsed)
	}
}

func TestNewTextToSpeechClientRejectsUnknownVoice(t *testing.T) {
	if _, err := NewTextToSpeechClient("secret", Voice("robot")); !errors.Is(err, ErrInvalidVoice) {
		t.Fatalf("expected ErrInvalidVoice, got %v", err)
	}
	if _, err := NewTextToSpeechClient("", defaultVoice); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
