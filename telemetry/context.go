package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "casc"

// StartSpan starts a new span and returns the context carrying it.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, name, opts...)
}

// StartFetchSpan starts a span for a CDN fetch (config, data, index, or
// archive range), tagging it with the endpoint kind and any extra details.
func StartFetchSpan(ctx context.Context, endpoint string, details map[string]string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)

	attrs := []attribute.KeyValue{
		attribute.String("operation.type", "cdn_fetch"),
		attribute.String("fetch.endpoint", endpoint),
	}
	for k, v := range details {
		attrs = append(attrs, attribute.String(k, v))
	}

	return tracer.Start(ctx, fmt.Sprintf("fetch.%s", endpoint), trace.WithAttributes(attrs...))
}

// MeasureExecutionTime measures the execution time of a function and adds it to a span.
func MeasureExecutionTime(span trace.Span, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("execution.step", name),
		attribute.Int64("execution.time_ms", elapsed.Milliseconds()),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

// RecordError records an error on the span and sets its status to error.
func RecordError(span trace.Span, err error, message string) {
	if err != nil {
		span.RecordError(err, trace.WithAttributes(
			attribute.String("error.message", message),
		))
		span.SetStatus(codes.Error, message)
	}
}
