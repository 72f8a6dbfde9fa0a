// Package telemetry bootstraps the OpenTelemetry tracer and meter providers
// the scheduler's Observer records against. The stdout exporters are the
// only exporters offered here; with no exporter selected, telemetry is
// left to the process-global providers.
package telemetry

import (
	stdcontext "context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config selects how tracing and metrics are exported.
type Config struct {
	ServiceName string
	// Exporter is "stdout", or "none" (the default, also used when empty),
	// which builds no exporter and returns the process-global providers.
	Exporter string
}

// Providers bundles the tracer and meter providers along with a Shutdown
// func that flushes and closes both.
type Providers struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Shutdown       func(stdcontext.Context) error
}

// New builds tracer/meter providers per cfg. An empty or "none" Exporter
// returns the process-global providers (otel.GetTracerProvider and
// otel.GetMeterProvider, which are no-ops unless a host has registered its
// own), so callers can always wire a Tracer/Meter into the scheduler's
// Observer without a nil check.
func New(cfg Config) (*Providers, error) {
	if cfg.Exporter == "" || cfg.Exporter == "none" {
		return &Providers{
			TracerProvider: otel.GetTracerProvider(),
			MeterProvider:  otel.GetMeterProvider(),
			Shutdown:       func(stdcontext.Context) error { return nil },
		}, nil
	}
	if cfg.Exporter != "stdout" {
		return nil, fmt.Errorf("telemetry: unsupported exporter %q", cfg.Exporter)
	}

	res, err := resource.New(stdcontext.Background(),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("telemetry: build trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return nil, fmt.Errorf("telemetry: build metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	return &Providers{
		TracerProvider: tp,
		MeterProvider:  mp,
		Shutdown: func(ctx stdcontext.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				return fmt.Errorf("telemetry: shutdown tracer provider: %w", err)
			}
			if err := mp.Shutdown(ctx); err != nil {
				return fmt.Errorf("telemetry: shutdown meter provider: %w", err)
			}
			return nil
		},
	}, nil
}
