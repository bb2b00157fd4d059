package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceExecutionTime measures the execution time of fn and records it in a new span.
func TraceExecutionTime(ctx context.Context, name string, fn func() error) error {
	_, span := StartSpan(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.Int64("execution_time_ms", elapsed.Milliseconds()),
	)

	if err != nil {
		RecordError(span, err, "operation failed")
	}

	return err
}

// TraceFunctionExecution starts a span for name and returns a done func that
// records elapsed time and ends the span.
func TraceFunctionExecution(ctx context.Context, name string) (context.Context, trace.Span, func()) {
	ctx, span := StartSpan(ctx, name)
	start := time.Now()

	return ctx, span, func() {
		elapsed := time.Since(start)
		span.SetAttributes(attribute.Int64("execution_time_ms", elapsed.Milliseconds()))
		span.End()
	}
}

// TraceArchiveLookup traces a content-key or archive-offset lookup against a
// loaded archive index.
func TraceArchiveLookup(ctx context.Context, archiveHash string, hit bool) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, "ArchiveIndex.Lookup")
	span.SetAttributes(
		attribute.String("archive.hash", archiveHash),
		attribute.Bool("archive.hit", hit),
	)
	return ctx, span
}
