package telemetry

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/syntonize/corekit/internal/configuration"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const defaultServiceName = "corekit"

// ShutdownFunc flushes buffered spans. Call it before process exit.
type ShutdownFunc func(context.Context) error

// Setup installs a global tracer provider exporting to the configured OTLP
// endpoint. Without an endpoint, tracing stays local and the returned
// shutdown is a no-op.
func Setup(ctx context.Context, config *configuration.Telemetry) (ShutdownFunc, error) {
	if config == nil || config.OTLPEndpoint == "" {
		log.Debug().Msg("No telemetry endpoint configured, tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	serviceName := config.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(config.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	traceResource, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(traceResource),
	)
	otel.SetTracerProvider(provider)

	log.Debug().
		Str("endpoint", config.OTLPEndpoint).
		Str("service", serviceName).
		Msg("Telemetry enabled")

	return provider.Shutdown, nil
}

// Tracer returns the tracer for release pipeline spans
func Tracer() trace.Tracer {
	return otel.Tracer(defaultServiceName)
}
