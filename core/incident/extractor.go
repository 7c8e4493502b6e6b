package incident

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/ema-helpline/core/events"
	"github.com/koscakluka/ema-helpline/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:embed extractorInstr.tmpl
var extractorSystemPrompt string

//go:embed verifierInstr.tmpl
var verifierSystemPrompt string

const (
	DefaultTimeout         = 20 * time.Second
	DefaultMaxOutputTokens = 300
	DefaultTemperature     = 0.2
)

var ErrNoCallerTurns = errors.New("conversation has no caller turns")

type Extractor struct {
	generator llms.StructuredGenerator
	timeout   time.Duration
}

type ExtractorOption func(*Extractor)

func WithTimeout(timeout time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

func NewExtractor(generator llms.StructuredGenerator, opts ...ExtractorOption) *Extractor {
	extractor := &Extractor{generator: generator, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(extractor)
	}
	return extractor
}

// Extract builds the incident report of a finished conversation.
func (e *Extractor) Extract(ctx context.Context, conversation []events.Turn) (*Report, error) {
	ctx, span := tracer.Start(ctx, "extract incident")
	defer span.End()

	transcript, err := transcriptOf(conversation)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("incident.turns", len(conversation)))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Here is the transcript of the call:\n\n%s", transcript)
	report, err := llms.GenerateStructured[Report](ctx, e.generator, prompt, e.generateOptions(extractorSystemPrompt)...)
	if err != nil {
		err = fmt.Errorf("failed to extract incident report: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	report.normalize()

	span.SetAttributes(attribute.String("incident.emergency_type", report.EmergencyType))
	logger.DebugContext(ctx, "incident report extracted", "emergency_type", report.EmergencyType)
	return report, nil
}

// Verify asks for a second opinion on report against the same conversation.
func (e *Extractor) Verify(ctx context.Context, report Report, conversation []events.Turn) (*Verification, error) {
	ctx, span := tracer.Start(ctx, "verify incident")
	defer span.End()

	transcript, err := transcriptOf(conversation)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	encoded, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal incident report: %w", err)
	}
	prompt := fmt.Sprintf("Here is the report extracted by the first operator:\n%s\n\nHere is the transcript of the call:\n\n%s", encoded, transcript)

	verification, err := llms.GenerateStructured[Verification](ctx, e.generator, prompt, e.generateOptions(verifierSystemPrompt)...)
	if err != nil {
		err = fmt.Errorf("failed to verify incident report: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if verification.Complete || verification.FollowUpQuestion == "" {
		verification.FollowUpQuestion = NotAvailable
	}

	span.SetAttributes(attribute.Bool("incident.complete", verification.Complete))
	return verification, nil
}

func (e *Extractor) generateOptions(instructions string) []llms.GenerateOption {
	return []llms.GenerateOption{
		llms.WithSystemPrompt(instructions),
		llms.WithMaxOutputTokens(DefaultMaxOutputTokens),
		llms.WithTemperature(DefaultTemperature),
	}
}

func transcriptOf(conversation []events.Turn) (string, error) {
	var turns []Turn
	if err := copier.Copy(&turns, &conversation); err != nil {
		return "", fmt.Errorf("failed to copy conversation: %w", err)
	}

	for _, turn := range turns {
		if turn.Role == string(events.TurnRoleUser) {
			return formatTranscript(turns), nil
		}
	}
	return "", ErrNoCallerTurns
}
