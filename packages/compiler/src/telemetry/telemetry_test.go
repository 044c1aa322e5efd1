package telemetry_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"sixtyfps-go/packages/compiler/src/telemetry"
)

func TestSetup(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := telemetry.Setup(&buf)
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}

	_, span := telemetry.Tracer("test").Start(context.Background(), "passes.repeater_component")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}

	if !strings.Contains(buf.String(), `"Name": "passes.repeater_component"`) {
		t.Errorf("Expected the span to be exported, got:\n%s", buf.String())
	}
}
