package incident

import (
	"context"
	"errors"
	"testing"

	"github.com/koscakluka/ema-helpline/core/events"
	"github.com/koscakluka/ema-helpline/core/llms"
)

type sinkRecorder struct {
	streamSIDs    []string
	reports       []Report
	verifications []*Verification
}

func (r *sinkRecorder) record(streamSID string, report Report, verification *Verification) {
	r.streamSIDs = append(r.streamSIDs, streamSID)
	r.reports = append(r.reports, report)
	r.verifications = append(r.verifications, verification)
}

func TestReporterExtractsReportWhenCallEnds(t *testing.T) {
	generator := &structuredGeneratorStub{responses: [][]byte{
		[]byte(`{"caller_name":"Ana","emergency_type":"critical","location":"5 Elm Street","number_of_people_involved":1,"age_group":"adult","immediate_dangers":"fire","medical_conditions":"N/A","description":"Kitchen fire."}`),
		[]byte(`{"complete":true,"follow_up_question":"N/A"}`),
	}}
	sink := &sinkRecorder{}
	reporter := NewReporter(context.Background(), NewExtractor(generator), sink.record)

	reporter.HandleEvent(events.NewTurnCompleted("c1"))
	reporter.HandleEvent(events.NewCallEnded("c1", "S1", conversation(), nil))
	reporter.Wait()

	if len(sink.reports) != 1 || sink.streamSIDs[0] != "S1" || sink.reports[0].CallerName != "Ana" {
		t.Fatalf("unexpected reports %+v", sink.reports)
	}
	if sink.verifications[0] == nil || !sink.verifications[0].Complete {
		t.Fatalf("expected a complete verification, got %+v", sink.verifications[0])
	}
}

func TestReporterSkipsCallsWithoutCallerTurns(t *testing.T) {
	generator := &structuredGeneratorStub{}
	sink := &sinkRecorder{}
	reporter := NewReporter(context.Background(), NewExtractor(generator), sink.record)

	reporter.HandleEvent(events.NewCallEnded("c1", "S1", nil, nil))
	reporter.Wait()

	if len(generator.prompts) != 0 || len(sink.reports) != 0 {
		t.Fatalf("expected nothing to be extracted")
	}
}

func TestReporterKeepsReportWhenVerificationFails(t *testing.T) {
	generator := &failingAfterStub{
		structuredGeneratorStub: structuredGeneratorStub{responses: [][]byte{
			[]byte(`{"caller_name":"Ana"}`),
		}},
		failAfter: 1,
	}
	sink := &sinkRecorder{}
	reporter := NewReporter(context.Background(), NewExtractor(generator), sink.record)

	reporter.HandleEvent(events.NewCallEnded("c1", "S1", conversation(), nil))
	reporter.Wait()

	if len(sink.reports) != 1 || sink.verifications[0] != nil {
		t.Fatalf("expected the report without verification, got %+v %+v", sink.reports, sink.verifications)
	}
}

type failingAfterStub struct {
	structuredGeneratorStub
	failAfter int
}

func (s *failingAfterStub) GenerateJSON(ctx context.Context, prompt string, schema llms.OutputSchema, opts ...llms.GenerateOption) ([]byte, error) {
	if len(s.prompts) >= s.failAfter {
		return nil, errors.New("rate limited")
	}
	return s.structuredGeneratorStub.GenerateJSON(ctx, prompt, schema, opts...)
}
