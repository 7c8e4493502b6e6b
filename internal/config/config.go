package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"

	DefaultGreeting = "Welcome to the Emergency Helpline. You are connected to an AI assistant. " +
		"Please describe your emergency after the beep and stay on the line."
)

// Config holds application configuration.
type Config struct {
	HTTPAddress  string
	ServerDomain string

	DeepgramAPIKey   string
	DeepgramSTTModel string
	DeepgramVoice    string
	EndpointingMS    int

	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	GenerationTimeout time.Duration
	SynthesisTimeout  time.Duration
	CloseGracePeriod  time.Duration

	TwilioAuthToken string
	Greeting        string

	ConversationLogPath string
	IncidentExtraction  bool
	TracesToStdout      bool
}

// MissingError names every required variable that is not set.
type MissingError struct {
	Variables []string
}

func (e *MissingError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Variables, ", ")
}

// Load reads a .env file when present, then the environment. Every missing
// or malformed value is reported in the returned error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env file: %v", err)
	}

	var (
		missing []string
		errs    []error
	)
	required := func(name string) string {
		value := os.Getenv(name)
		if value == "" {
			missing = append(missing, name)
		}
		return value
	}

	cfg := Config{
		HTTPAddress:         stringOr("HTTP_ADDRESS", ":8080"),
		ServerDomain:        required("SERVER_DOMAIN"),
		DeepgramAPIKey:      required("DEEPGRAM_API_KEY"),
		DeepgramSTTModel:    stringOr("DEEPGRAM_STT_MODEL", "nova-3"),
		DeepgramVoice:       stringOr("DEEPGRAM_VOICE", "aura-asteria-en"),
		LLMProvider:         strings.ToLower(stringOr("LLM_PROVIDER", ProviderGemini)),
		GeminiModel:         stringOr("GEMINI_MODEL", "gemini-2.0-flash"),
		GroqModel:           stringOr("GROQ_MODEL", "llama-3.1-8b-instant"),
		TwilioAuthToken:     os.Getenv("TWILIO_AUTH_TOKEN"),
		Greeting:            stringOr("GREETING", DefaultGreeting),
		ConversationLogPath: "conversation_logs.txt",
	}
	if path, ok := os.LookupEnv("CONVERSATION_LOG"); ok {
		cfg.ConversationLogPath = path
	}

	switch cfg.LLMProvider {
	case ProviderGemini:
		cfg.GeminiAPIKey = required("GEMINI_API_KEY")
	case ProviderGroq:
		cfg.GroqAPIKey = required("GROQ_API_KEY")
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider))
	}

	var err error
	if cfg.EndpointingMS, err = intOr("ENDPOINTING_MS", 1000); err != nil {
		errs = append(errs, err)
	}
	if cfg.GenerationTimeout, err = durationOr("GENERATION_TIMEOUT", 15*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.SynthesisTimeout, err = durationOr("SYNTHESIS_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.CloseGracePeriod, err = durationOr("CLOSE_GRACE_PERIOD", 3*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.IncidentExtraction, err = boolOr("INCIDENT_EXTRACTION", true); err != nil {
		errs = append(errs, err)
	}
	if cfg.TracesToStdout, err = boolOr("OTEL_TRACES_STDOUT", false); err != nil {
		errs = append(errs, err)
	}

	if len(missing) > 0 {
		errs = append([]error{&MissingError{Variables: missing}}, errs...)
	}
	return cfg, errors.Join(errs...)
}

// Warnings lists settings that are valid on their own but have no effect in
// combination.
func (c Config) Warnings() []string {
	var warnings []string
	if c.IncidentExtraction && c.ConversationLogPath == "" {
		warnings = append(warnings, "INCIDENT_EXTRACTION has no effect while CONVERSATION_LOG is empty; incident reports are written to the conversation log")
	}
	return warnings
}

func stringOr(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func intOr(name string, fallback int) (int, error) {
	value := os.Getenv(name)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback, fmt.Errorf("invalid %s %q: expected a non-negative integer", name, value)
	}
	return parsed, nil
}

func durationOr(name string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(name)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback, fmt.Errorf("invalid %s %q: expected a positive duration", name, value)
	}
	return parsed, nil
}

func boolOr(name string, fallback bool) (bool, error) {
	value := os.Getenv(name)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return parsed, nil
}
