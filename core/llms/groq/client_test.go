package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koscakluka/ema-helpline/core/llms"
)

func newCompletionServer(t *testing.T, content string, inspect func(body map[string]any)) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer authorization, got %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if inspect != nil {
			inspect(body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGenerate(t *testing.T) {
	server := newCompletionServer(t, "Call an ambulance now.", func(body map[string]any) {
		if body["model"] != DefaultModel {
			t.Errorf("expected default model, got %v", body["model"])
		}
		if body["max_completion_tokens"] != float64(150) {
			t.Errorf("expected 150 max tokens, got %v", body["max_completion_tokens"])
		}
		if body["temperature"] != 0.2 {
			t.Errorf("expected temperature 0.2, got %v", body["temperature"])
		}
		messages := body["messages"].([]any)
		if len(messages) != 2 {
			t.Errorf("expected system and user messages, got %d", len(messages))
			return
		}
		if role := messages[0].(map[string]any)["role"]; role != "system" {
			t.Errorf("expected system message first, got %v", role)
		}
		if content := messages[1].(map[string]any)["content"]; content != "my friend fainted" {
			t.Errorf("expected prompt as user content, got %v", content)
		}
	})

	client, err := NewClient("secret", WithURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	reply, err := client.Generate(context.Background(), "my friend fainted",
		llms.WithSystemPrompt(llms.HelplinePersona),
		llms.WithMaxOutputTokens(150),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Call an ambulance now." {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestGenerateNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient("secret", WithURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Fatalf("expected an error for a non-OK status")
	}
}

type location struct {
	Address string `json:"address"`
}

func TestGenerateJSONSendsSchema(t *testing.T) {
	server := newCompletionServer(t, `{"address":"5 Elm Road"}`, func(body map[string]any) {
		format, ok := body["response_format"].(map[string]any)
		if !ok || format["type"] != "json_schema" {
			t.Errorf("expected json_schema response format, got %v", body["response_format"])
			return
		}
		schema := format["json_schema"].(map[string]any)
		if schema["name"] != "location" || schema["strict"] != true {
			t.Errorf("unexpected schema envelope %v", schema)
		}
	})

	client, err := NewClient("secret", WithURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	result, err := llms.GenerateStructured[location](context.Background(), client, "where?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Address != "5 Elm Road" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
