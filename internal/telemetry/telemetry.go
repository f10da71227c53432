// Package telemetry wires OpenTelemetry tracing for the client's requests.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"rpgpanel/internal/config"
)

// Settings come from the environment. Tracing stays off unless an
// endpoint is set and it is not explicitly disabled.
type Settings struct {
	Endpoint string `env:"RPGPANEL_OTEL_ENDPOINT"`
	Enabled  bool   `env:"RPGPANEL_OTEL_ENABLED" envDefault:"true"`
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := config.ParseEnv(&s); err != nil {
		return Settings{}, fmt.Errorf("loading telemetry settings: %w", err)
	}
	return s, nil
}

// Setup installs a global tracer provider exporting over OTLP/HTTP. The
// returned shutdown flushes pending spans and must be deferred; it is a
// no-op when tracing is off.
func Setup(ctx context.Context, serviceName, version string) (shutdown func(context.Context) error, err error) {
	settings, err := LoadSettings()
	if err != nil {
		return noop, err
	}
	return SetupWith(ctx, settings, serviceName, version)
}

func SetupWith(ctx context.Context, settings Settings, serviceName, version string) (func(context.Context) error, error) {
	if !settings.Enabled || settings.Endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(settings.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("building resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

func noop(context.Context) error { return nil }
