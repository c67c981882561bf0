package trace

import (
	"context"
	"fmt"
	"github.com/hyperdxio/otel-config-go/otelconfig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"strings"
)

type Shutdown func(context.Context) error

// InitTrace installs the global tracer provider. exporter is one of none,
// stdout or otlp; otlp is configured from the OTEL_* environment variables.
func InitTrace(ctx context.Context, exporter, serviceName, serviceVersion string) (Shutdown, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	switch strings.ToLower(strings.TrimSpace(exporter)) {
	case "", "none":
		return func(context.Context) error { return nil }, nil
	case "otlp":
		otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
			otelconfig.WithServiceName(serviceName),
			otelconfig.WithServiceVersion(serviceVersion),
		)
		if err != nil {
			return nil, fmt.Errorf("configure opentelemetry: %w", err)
		}
		return func(context.Context) error {
			otelShutdown()
			return nil
		}, nil
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}

		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		))
		if err != nil {
			return nil, fmt.Errorf("build trace resource: %w", err)
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)

		return tp.Shutdown, nil
	}

	return nil, fmt.Errorf("unsupported trace exporter: %s", exporter)
}
