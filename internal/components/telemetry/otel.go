package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type OtlpConnConfig struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

func (c OtlpConnConfig) enabled() bool {
	return c.GrpcEndpoint != "" || c.HttpEndpoint != ""
}

type OtlpConfig struct {
	Traces  OtlpConnConfig `json:"traces"`
	Metrics OtlpConnConfig `json:"metrics"`
}

type Config struct {
	Otlp OtlpConfig `json:"otlp"`
}

// Shutdown flushes and stops the providers installed by Setup.
type Shutdown func(ctx context.Context) error

// Setup installs global OTLP trace and metric providers for the endpoints
// present in the config. Without endpoints the global no-op providers stay in
// place and the returned Shutdown does nothing.
func Setup(ctx context.Context, serviceName string, config Config) (Shutdown, error) {
	var shutdowns []Shutdown
	shutdown := func(ctx context.Context) error {
		var errlist []error
		for _, s := range shutdowns {
			errlist = append(errlist, s(ctx))
		}
		return errors.Join(errlist...)
	}

	if !config.Otlp.Traces.enabled() && !config.Otlp.Metrics.enabled() {
		return shutdown, nil
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return shutdown, err
	}

	if config.Otlp.Traces.enabled() {
		exporter, err := otlpTraceExporter(ctx, config.Otlp.Traces)
		if err != nil {
			return shutdown, err
		}
		provider := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(r),
		)
		otel.SetTracerProvider(provider)
		shutdowns = append(shutdowns, provider.Shutdown)
	}

	if config.Otlp.Metrics.enabled() {
		exporter, err := otlpMetricExporter(ctx, config.Otlp.Metrics)
		if err != nil {
			return shutdown, err
		}
		provider := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(time.Second*5))),
			sdkmetric.WithResource(r),
		)
		otel.SetMeterProvider(provider)
		shutdowns = append(shutdowns, provider.Shutdown)
	}

	return shutdown, nil
}

func otlpTraceExporter(ctx context.Context, c OtlpConnConfig) (sdktrace.SpanExporter, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	if c.GrpcEndpoint != "" {
		slog.Info(
			"tracer export initialized",
			"type", "grpc",
			"endpoint", c.GrpcEndpoint,
			"headers", len(c.Headers) > 0,
		)
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(c.GrpcEndpoint),
			otlptracegrpc.WithHeaders(c.Headers),
		)
	}

	slog.Info(
		"tracer export initialized",
		"type", "http",
		"endpoint", c.HttpEndpoint,
		"headers", len(c.Headers) > 0,
	)
	return otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(c.HttpEndpoint),
		otlptracehttp.WithHeaders(c.Headers),
	)
}

func otlpMetricExporter(ctx context.Context, c OtlpConnConfig) (sdkmetric.Exporter, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	if c.GrpcEndpoint != "" {
		slog.Info(
			"metric exporter initialized",
			"type", "grpc",
			"endpoint", c.GrpcEndpoint,
			"headers", len(c.Headers) > 0,
		)
		return otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(c.GrpcEndpoint),
			otlpmetricgrpc.WithHeaders(c.Headers),
		)
	}

	slog.Info(
		"metric exporter initialized",
		"type", "http",
		"endpoint", c.HttpEndpoint,
		"headers", len(c.Headers) > 0,
	)
	return otlpmetrichttp.New(
		ctx,
		otlpmetrichttp.WithEndpointURL(c.HttpEndpoint),
		otlpmetrichttp.WithHeaders(c.Headers),
	)
}

// OtelAPI forwards every report to an inner API and additionally records
// broken components, warnings and counts as OpenTelemetry metrics.
type OtelAPI struct {
	inner    API
	broken   metric.Int64Counter
	warnings metric.Int64Counter
	counts   metric.Int64Gauge
}

func NewOtelAPI(inner API) (OtelAPI, error) {
	meter := otel.Meter("dogfinder/telemetry")

	broken, err := meter.Int64Counter("broken_components")
	if err != nil {
		return OtelAPI{}, err
	}
	warnings, err := meter.Int64Counter("warnings")
	if err != nil {
		return OtelAPI{}, err
	}
	counts, err := meter.Int64Gauge("counts")
	if err != nil {
		return OtelAPI{}, err
	}

	return OtelAPI{
		inner:    inner,
		broken:   broken,
		warnings: warnings,
		counts:   counts,
	}, nil
}

func (o OtelAPI) ReportBroken(id string, params ...any) {
	o.broken.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
	o.inner.ReportBroken(id, params...)
}

func (o OtelAPI) ReportWarning(id string, params ...any) {
	o.warnings.Add(context.Background(), 1, metric.WithAttributes(attribute.String("id", id)))
	o.inner.ReportWarning(id, params...)
}

func (o OtelAPI) ReportDebug(msg string, params ...any) {
	o.inner.ReportDebug(msg, params...)
}

func (o OtelAPI) ReportCount(id string, count int64) {
	o.counts.Record(context.Background(), count, metric.WithAttributes(attribute.String("id", id)))
	o.inner.ReportCount(id, count)
}
