package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/gowarcraft/casc/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

func TestStartSpan(t *testing.T) {
	ctx := context.Background()
	_, span := telemetry.StartSpan(ctx, "TestSpan")
	span.SetAttributes(attribute.String("test", "value"))
	span.End()
}

func TestStartFetchSpan(t *testing.T) {
	ctx := context.Background()
	_, span := telemetry.StartFetchSpan(ctx, "data", map[string]string{
		"host": "level3.blizzard.com",
		"hash": "abcdef0123456789",
	})
	span.End()
}

func TestTraceExecutionTime(t *testing.T) {
	ctx := context.Background()
	err := telemetry.TraceExecutionTime(ctx, "SlowOperation", func() error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestTraceFunctionExecution(t *testing.T) {
	ctx := context.Background()
	_, _, done := telemetry.TraceFunctionExecution(ctx, "ImportantFunction")
	time.Sleep(10 * time.Millisecond)
	done()
}

func TestTraceArchiveLookup(t *testing.T) {
	ctx := context.Background()
	_, span := telemetry.TraceArchiveLookup(ctx, "0123456789abcdef", true)
	span.End()
}
