// Package otel installs the OpenTelemetry tracer provider that records spans
// around upstream timetable requests.
package otel

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/db-timetables-mcp/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Settings selects where spans go and how many are kept.
type Settings struct {
	Endpoint    string  `env:"DB_TIMETABLE_OTEL_ENDPOINT"`
	Enabled     string  `env:"DB_TIMETABLE_OTEL_ENABLED"`
	SampleRatio float64 `env:"DB_TIMETABLE_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Active reports whether tracing should be installed: an endpoint is set and
// tracing was not switched off.
func (s Settings) Active() bool {
	if strings.EqualFold(strings.TrimSpace(s.Enabled), "false") {
		return false
	}
	return strings.TrimSpace(s.Endpoint) != ""
}

// sampler keeps a parent's decision and samples new traces by ratio.
func (s Settings) sampler() sdktrace.Sampler {
	switch {
	case s.SampleRatio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case s.SampleRatio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.SampleRatio))
	}
}

// Setup reads Settings from the environment and installs tracing for
// serviceName. Tracing is opt-in: without an endpoint, or with
// DB_TIMETABLE_OTEL_ENABLED=false, the returned shutdown is a no-op and the
// global provider stays untouched.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	var settings Settings
	if err := config.ParseEnv(&settings); err != nil {
		return noop, err
	}
	return Install(ctx, serviceName, settings)
}

// Install registers a batching OTLP/HTTP tracer provider for settings.
func Install(ctx context.Context, serviceName string, settings Settings) (func(context.Context) error, error) {
	if !settings.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(strings.TrimSpace(settings.Endpoint)),
	)
	if err != nil {
		return noop, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return noop, fmt.Errorf("build otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(settings.sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func noop(context.Context) error { return nil }
