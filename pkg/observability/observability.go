// Package observability provides OpenTelemetry tracing for export runs.
// The pipeline wraps each run and each batch in a span; the default
// exporter writes pretty-printed spans to stdout, suitable for
// development and for piping into a collector sidecar.
package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	tracer   trace.Tracer = noop.NewTracerProvider().Tracer("marcflow")
	meter    metric.Meter
	provider *sdktrace.TracerProvider
	initOnce sync.Once
)

// Config controls tracing initialization.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// SamplingRate in [0, 1]; 0 disables sampling, 1 records every span.
	SamplingRate float64
}

// DefaultConfig returns the development defaults: full sampling, stdout
// exporter.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "marcflow",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		SamplingRate:   1.0,
	}
}

// Init sets up the global tracer provider. Safe to call more than once;
// only the first call takes effect.
func Init(cfg Config) error {
	var err error

	initOnce.Do(func() {
		var res *resource.Resource
		res, err = resource.New(context.Background(),
			resource.WithAttributes(
				semconv.ServiceNameKey.String(cfg.ServiceName),
				semconv.ServiceVersionKey.String(cfg.ServiceVersion),
				semconv.DeploymentEnvironmentKey.String(cfg.Environment),
			),
		)
		if err != nil {
			err = fmt.Errorf("failed to create resource: %w", err)
			return
		}

		var exporter sdktrace.SpanExporter
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			err = fmt.Errorf("failed to create stdout exporter: %w", err)
			return
		}

		var sampler sdktrace.Sampler
		switch {
		case cfg.SamplingRate <= 0:
			sampler = sdktrace.NeverSample()
		case cfg.SamplingRate >= 1.0:
			sampler = sdktrace.AlwaysSample()
		default:
			sampler = sdktrace.TraceIDRatioBased(cfg.SamplingRate)
		}

		provider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler),
			sdktrace.WithBatcher(exporter),
		)
		otel.SetTracerProvider(provider)

		tracer = provider.Tracer(cfg.ServiceName)
		meter = otel.Meter(cfg.ServiceName)
	})

	return err
}

// Tracer returns the global tracer. Before Init it is a no-op tracer,
// so instrumented code needs no initialization guard.
func Tracer() trace.Tracer {
	return tracer
}

// Meter returns the global meter.
func Meter() metric.Meter {
	if meter == nil {
		meter = otel.Meter("marcflow")
	}
	return meter
}

// Shutdown flushes and stops the tracer provider.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

// Span wraps an OpenTelemetry span with the small surface the pipeline
// uses.
type Span struct {
	span trace.Span
}

// StartSpan starts a span under the global tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &Span{span: span}
}

// SetAttributes adds attributes to the span.
func (s *Span) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// RecordError records err and marks the span's status; nil is ignored.
func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End completes the span.
func (s *Span) End() {
	s.span.End()
}

// Timed runs fn inside a span and records its duration and error.
func Timed(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	span.SetAttributes(attribute.Int64("duration_ms", time.Since(start).Milliseconds()))
	span.RecordError(err)
	return err
}
