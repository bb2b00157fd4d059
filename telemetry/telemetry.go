// Package telemetry wires OpenTelemetry tracing for the resolver: one
// tracer, exported to stdout unless disabled, with small helpers for
// timing CDN fetches and BLTE/parse stages.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/klog/v2"
)

// Init sets up OpenTelemetry tracing for serviceName, exporting spans to
// stdout. Set DISABLE_TELEMETRY=true to skip setup entirely. Returns a
// shutdown function to call before exit.
func Init(ctx context.Context, serviceName string) (func(), error) {
	if os.Getenv("DISABLE_TELEMETRY") == "true" {
		klog.Info("telemetry disabled via DISABLE_TELEMETRY")
		return func() {}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func() {
		if err := tp.Shutdown(ctx); err != nil {
			klog.Errorf("telemetry shutdown: %v", err)
		}
	}, nil
}

// Tracer returns the named tracer.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
