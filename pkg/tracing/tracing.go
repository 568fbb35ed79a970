// Package tracing wraps OpenTelemetry for tabula. Operations open a span
// through Start and close it through End; until Init installs a provider the
// global no-op provider makes both free.
package tracing

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// InstrumentationName names the tracer used by Start
const InstrumentationName = "github.com/ajitpratap0/tabula"

// Config contains tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	// SamplingRate is the fraction of traces recorded
	SamplingRate float64
	// Output receives the exported spans as JSON, one per line
	Output io.Writer
	// BatchTimeout bounds how long finished spans wait before export
	BatchTimeout time.Duration
}

// ShutdownFunc flushes pending spans and stops the provider
type ShutdownFunc func(context.Context) error

// Init installs a global tracer provider exporting to cfg.Output
func Init(cfg Config) (ShutdownFunc, error) {
	if cfg.Output == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "tracing output is required")
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Output))
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	timeout := cfg.BatchTimeout
	if timeout <= 0 {
		timeout = time.Second
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRate)),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(timeout)),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown tracer: %w", err)
		}
		return nil
	}, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0:
		return sdktrace.NeverSample()
	case rate >= 1:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Start opens a span named after the operation
func Start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(InstrumentationName).Start(ctx, operation, trace.WithAttributes(attrs...))
}

// End records err on the span, tagging it with the tabula error type, and
// ends it
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", string(errors.TypeOf(err))))
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
