package incident

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/koscakluka/ema-helpline/core/events"
	"github.com/koscakluka/ema-helpline/core/llms"
)

type structuredGeneratorStub struct {
	responses [][]byte
	err       error

	prompts []string
	schemas []llms.OutputSchema
	options []llms.GenerateOptions
}

func (s *structuredGeneratorStub) GenerateJSON(_ context.Context, prompt string, schema llms.OutputSchema, opts ...llms.GenerateOption) ([]byte, error) {
	s.prompts = append(s.prompts, prompt)
	s.schemas = append(s.schemas, schema)
	s.options = append(s.options, llms.ApplyGenerateOptions(opts...))
	if s.err != nil {
		return nil, s.err
	}
	response := s.responses[0]
	s.responses = s.responses[1:]
	return response, nil
}

func conversation() []events.Turn {
	now := time.Now()
	return []events.Turn{
		{Role: events.TurnRoleUser, Text: "My name is Ana, my kitchen is on fire at 5 Elm Street", At: now},
		{Role: events.TurnRoleAssistant, Text: "Leave the house now and call from outside.", At: now},
	}
}

func TestExtractNormalizesReport(t *testing.T) {
	generator := &structuredGeneratorStub{responses: [][]byte{[]byte("```json\n" + `{
		"caller_name": "Ana",
		"emergency_type": "Critical",
		"location": "5 Elm Street",
		"number_of_people_involved": 1,
		"age_group": "teen",
		"immediate_dangers": "fire",
		"medical_conditions": "",
		"description": "Kitchen fire."
	}` + "\n```")}}

	report, err := NewExtractor(generator).Extract(context.Background(), conversation())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if report.CallerName != "Ana" || report.Location != "5 Elm Street" {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.EmergencyType != EmergencyTypeCritical {
		t.Fatalf("expected critical emergency, got %q", report.EmergencyType)
	}
	if report.AgeGroup != NotAvailable {
		t.Fatalf("expected unknown age group to become N/A, got %q", report.AgeGroup)
	}
	if report.MedicalConditions != NotAvailable {
		t.Fatalf("expected missing medical conditions to become N/A, got %q", report.MedicalConditions)
	}

	if !strings.Contains(generator.prompts[0], "Caller: My name is Ana") || !strings.Contains(generator.prompts[0], "Operator: Leave the house") {
		t.Fatalf("expected transcript in prompt, got %q", generator.prompts[0])
	}
	if generator.schemas[0].Name != "Report" || generator.schemas[0].Schema.Properties.Len() != 8 {
		t.Fatalf("unexpected schema %+v", generator.schemas[0])
	}
	if generator.options[0].Instructions != extractorSystemPrompt || generator.options[0].MaxOutputTokens != DefaultMaxOutputTokens {
		t.Fatalf("unexpected generate options %+v", generator.options[0])
	}
}

func TestExtractRequiresCallerTurns(t *testing.T) {
	generator := &structuredGeneratorStub{}
	_, err := NewExtractor(generator).Extract(context.Background(), []events.Turn{
		{Role: events.TurnRoleAssistant, Text: "Hello?"},
	})
	if !errors.Is(err, ErrNoCallerTurns) {
		t.Fatalf("expected ErrNoCallerTurns, got %v", err)
	}
	if len(generator.prompts) != 0 {
		t.Fatalf("expected no generation call, got %d", len(generator.prompts))
	}
}

func TestExtractWrapsGenerationErrors(t *testing.T) {
	generationErr := errors.New("quota exceeded")
	_, err := NewExtractor(&structuredGeneratorStub{err: generationErr}).Extract(context.Background(), conversation())
	if !errors.Is(err, generationErr) {
		t.Fatalf("expected generation error, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name             string
		response         string
		expectedComplete bool
		expectedQuestion string
	}{
		{
			name:             "complete report",
			response:         `{"complete": true, "follow_up_question": "Anything else?"}`,
			expectedComplete: true,
			expectedQuestion: NotAvailable,
		},
		{
			name:             "missing location",
			response:         `{"complete": false, "follow_up_question": "Where are you right now?"}`,
			expectedQuestion: "Where are you right now?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := &structuredGeneratorStub{responses: [][]byte{[]byte(tt.response)}}
			verification, err := NewExtractor(generator).Verify(context.Background(), Report{CallerName: "Ana"}, conversation())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if verification.Complete != tt.expectedComplete || verification.FollowUpQuestion != tt.expectedQuestion {
				t.Fatalf("unexpected verification %+v", verification)
			}
			if !strings.Contains(generator.prompts[0], `"caller_name":"Ana"`) {
				t.Fatalf("expected report in prompt, got %q", generator.prompts[0])
			}
		})
	}
}

func TestReportString(t *testing.T) {
	report := Report{CallerName: "Ana", NumberOfPeopleInvolved: 2}
	report.normalize()

	rendered := report.String()
	for _, expected := range []string{"Caller name: Ana", "People involved: 2", "Location: N/A", "Emergency type: N/A"} {
		if !strings.Contains(rendered, expected) {
			t.Fatalf("expected %q in %q", expected, rendered)
		}
	}
}
