package llms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultGenerationTimeout = 15 * time.Second

// Reply is the text to speak back to the caller.
type Reply struct {
	Text string
	// Fallback is set when Text is the fallback reply; Err then holds the
	// reason.
	Fallback bool
	Err      error
}

// Responder answers caller utterances with short, speakable replies. It
// never fails: any generation problem yields the fallback reply.
type Responder struct {
	generator       Generator
	instructions    string
	maxOutputTokens int
	temperature     float64
	timeout         time.Duration
	fallback        string
}

type ResponderOption func(*Responder)

func WithInstructions(instructions string) ResponderOption {
	return func(r *Responder) { r.instructions = instructions }
}

func WithGenerationTimeout(timeout time.Duration) ResponderOption {
	return func(r *Responder) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

func WithFallbackReply(fallback string) ResponderOption {
	return func(r *Responder) { r.fallback = fallback }
}

func WithReplyLimits(maxOutputTokens int, temperature float64) ResponderOption {
	return func(r *Responder) {
		r.maxOutputTokens = maxOutputTokens
		r.temperature = temperature
	}
}

func NewResponder(generator Generator, opts ...ResponderOption) *Responder {
	responder := &Responder{
		generator:       generator,
		instructions:    HelplinePersona,
		maxOutputTokens: DefaultMaxOutputTokens,
		temperature:     DefaultTemperature,
		timeout:         DefaultGenerationTimeout,
		fallback:        FallbackReply,
	}
	for _, opt := range opts {
		opt(responder)
	}
	return responder
}

// Respond generates the reply to a single utterance. The utterance is the
// only user content sent; no earlier turns are included.
func (r *Responder) Respond(ctx context.Context, utterance string) Reply {
	ctx, span := tracer.Start(ctx, "respond")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	span.SetAttributes(attribute.Int("request.utterance_length", len(utterance)))

	text, err := r.generator.Generate(ctx, utterance,
		WithSystemPrompt(r.instructions),
		WithMaxOutputTokens(r.maxOutputTokens),
		WithTemperature(r.temperature),
	)
	if err == nil {
		text = StripMarkdown(text)
		if text == "" {
			err = ErrEmptyResponse
		}
	}
	if err != nil {
		err = fmt.Errorf("failed to generate reply: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WarnContext(ctx, "falling back to default reply", "error", err)
		return Reply{Text: r.fallback, Fallback: true, Err: err}
	}

	span.SetAttributes(attribute.Int("response.length", len(text)))
	return Reply{Text: strings.TrimSpace(text)}
}
