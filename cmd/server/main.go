package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	orchestration "github.com/koscakluka/ema-helpline/core"
	"github.com/koscakluka/ema-helpline/core/incident"
	"github.com/koscakluka/ema-helpline/core/llms"
	"github.com/koscakluka/ema-helpline/core/llms/gemini"
	"github.com/koscakluka/ema-helpline/core/llms/groq"
	"github.com/koscakluka/ema-helpline/core/speechtotext"
	deepgramstt "github.com/koscakluka/ema-helpline/core/speechtotext/deepgram"
	"github.com/koscakluka/ema-helpline/core/texttospeech"
	deepgramtts "github.com/koscakluka/ema-helpline/core/texttospeech/deepgram"
	"github.com/koscakluka/ema-helpline/internal/calllog"
	"github.com/koscakluka/ema-helpline/internal/config"
	"github.com/koscakluka/ema-helpline/internal/httpserver"
	"github.com/koscakluka/ema-helpline/internal/telemetry"
)

// languageModel is what both providers offer.
type languageModel interface {
	llms.Generator
	llms.StructuredGenerator
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	flag.StringVar(&cfg.HTTPAddress, "addr", cfg.HTTPAddress, "address to listen on")
	flag.StringVar(&cfg.ServerDomain, "domain", cfg.ServerDomain, "public host Twilio connects the media stream to")
	flag.Parse()
	for _, warning := range cfg.Warnings() {
		log.Printf("configuration warning: %s", warning)
	}

	shutdownTelemetry, err := telemetry.Setup(telemetry.Options{
		ServiceName: "ema-helpline",
		Traces:      cfg.TracesToStdout,
	})
	if err != nil {
		log.Fatalf("failed to set up telemetry: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTelemetry(ctx); err != nil {
		log.Printf("failed to flush telemetry: %v", err)
	}
}

func run(cfg config.Config) error {
	ctx := context.Background()

	model, err := newLanguageModel(ctx, cfg)
	if err != nil {
		return err
	}
	responder := llms.NewResponder(model, llms.WithGenerationTimeout(cfg.GenerationTimeout))

	transcription, err := deepgramstt.NewTranscriptionClient(cfg.DeepgramAPIKey,
		deepgramstt.WithStreamOptions(
			speechtotext.WithModel(cfg.DeepgramSTTModel),
			speechtotext.WithEndpointing(time.Duration(cfg.EndpointingMS)*time.Millisecond),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create transcription client: %w", err)
	}

	synthesis, err := deepgramtts.NewTextToSpeechClient(cfg.DeepgramAPIKey,
		deepgramtts.Voice(cfg.DeepgramVoice),
		deepgramtts.WithSynthesisOptions(texttospeech.WithTimeout(cfg.SynthesisTimeout)),
	)
	if err != nil {
		return fmt.Errorf("failed to create speech synthesis client: %w", err)
	}

	opts := []orchestration.OrchestratorOption{
		orchestration.WithSpeechToTextClient(transcription),
		orchestration.WithResponder(responder),
		orchestration.WithTextToSpeechClient(synthesis),
		orchestration.WithCloseGracePeriod(cfg.CloseGracePeriod),
	}

	var reporter *incident.Reporter
	if cfg.ConversationLogPath != "" {
		conversations, err := calllog.Open(cfg.ConversationLogPath)
		if err != nil {
			return err
		}
		defer conversations.Close()
		opts = append(opts, orchestration.WithEventHandler(conversations.HandleEvent))

		if cfg.IncidentExtraction {
			reporter = incident.NewReporter(ctx, incident.NewExtractor(model), conversations.WriteReport)
			opts = append(opts, orchestration.WithEventHandler(reporter.HandleEvent))
		}
	}

	orchestrator := orchestration.NewOrchestrator(opts...)
	server := httpserver.New(httpserver.Config{
		PublicHost:      cfg.ServerDomain,
		Greeting:        cfg.Greeting,
		TwilioAuthToken: cfg.TwilioAuthToken,
	}, orchestrator, responder)

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s (stream host %s)", cfg.HTTPAddress, cfg.ServerDomain)
		serverErrors <- server.Start(cfg.HTTPAddress)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case serveErr = <-serverErrors:
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.CloseGracePeriod+10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	if reporter != nil {
		reporter.Wait()
	}
	return serveErr
}

func newLanguageModel(ctx context.Context, cfg config.Config) (languageModel, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, gemini.WithModel(cfg.GeminiModel))
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return client, nil
	case config.ProviderGroq:
		client, err := groq.NewClient(cfg.GroqAPIKey, groq.WithModel(cfg.GroqModel))
		if err != nil {
			return nil, fmt.Errorf("failed to create groq client: %w", err)
		}
		return client, nil
	default:
		return nil, errors.New("unsupported language model provider " + cfg.LLMProvider)
	}
}
