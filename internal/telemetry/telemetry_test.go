package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

func TestSetupExportsLogsAndSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(Options{ServiceName: "helpline-test", Writer: &buf, Traces: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	otelslog.NewLogger("telemetry-test").Info("call accepted", "call_id", "c1")
	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "handle call")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("failed to shut down: %v", err)
	}

	output := buf.String()
	for _, expected := range []string{"call accepted", "handle call", "helpline-test"} {
		if !strings.Contains(output, expected) {
			t.Fatalf("expected %q in exported telemetry, got %s", expected, output)
		}
	}
}
