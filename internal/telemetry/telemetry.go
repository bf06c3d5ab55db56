package telemetry

import (
    "context"
    "log/slog"
    "os"

    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
    "go.opentelemetry.io/otel/sdk/resource"
    "go.opentelemetry.io/otel/sdk/trace"
    semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Setup installs an OTLP/gRPC tracer provider when OTEL_EXPORTER_OTLP_ENDPOINT
// is set.  The returned func flushes and stops it; without an endpoint it is
// a no-op.
func Setup(serviceName string, logger *slog.Logger) func(context.Context) error {
    endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
    if endpoint == "" {
        return func(context.Context) error { return nil }
    }

    opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
    if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
        opts = append(opts, otlptracegrpc.WithInsecure())
    }

    exporter, err := otlptracegrpc.New(context.Background(), opts...)
    if err != nil {
        logger.Error("otel exporter", "err", err)
        return func(context.Context) error { return nil }
    }

    res, err := resource.New(context.Background(), resource.WithAttributes(semconv.ServiceName(serviceName)))
    if err != nil {
        logger.Warn("otel resource", "err", err)
    }

    provider := trace.NewTracerProvider(
        trace.WithBatcher(exporter),
        trace.WithResource(res),
    )
    otel.SetTracerProvider(provider)
    return provider.Shutdown
}
