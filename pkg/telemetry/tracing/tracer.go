package tracing

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials/insecure"
)

const tracerName = "emberwatch/cinder"

// Config controls span export. Tracing has no section in the configuration
// file; it is driven entirely by the standard OpenTelemetry environment
// variables (see FromEnv).
type Config struct {
	// ServiceName identifies this process in trace backends.
	ServiceName string

	// ServiceVersion is the build version attached to the trace resource.
	ServiceVersion string

	// Endpoint is the OTLP gRPC collector address as host:port.
	// Empty disables tracing.
	Endpoint string

	// Insecure disables transport security for the exporter connection.
	Insecure bool

	// SampleRatio is the fraction of traces to sample in [0, 1].
	// Zero value means sample everything.
	SampleRatio float64
}

// FromEnv builds a Config from the standard OpenTelemetry environment
// variables:
//
//	OTEL_EXPORTER_OTLP_ENDPOINT   collector address (host:port); empty disables
//	OTEL_EXPORTER_OTLP_INSECURE   "true" disables transport security
//	OTEL_TRACES_SAMPLER_ARG       sample ratio in [0, 1]
func FromEnv(serviceName, serviceVersion string) Config {
	cfg := Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		SampleRatio:    1.0,
	}

	cfg.Endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	if val := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.Insecure = parsed
		}
	}

	if val := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.SampleRatio = parsed
		}
	}

	return cfg
}

// Tracer wraps the OpenTelemetry tracer with the lifecycle the commands
// need: construct once, Start spans around pipelines, Shutdown on exit.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool
}

// New creates a Tracer. Without an endpoint it returns a no-op tracer whose
// spans cost almost nothing; with one it installs an OTLP gRPC exporter,
// sets the global provider, and registers the W3C trace context propagator.
//
// The tracer must be shut down when no longer needed:
//
//	defer tracer.Shutdown(context.Background())
func New(cfg Config) (*Tracer, error) {
	if cfg.Endpoint == "" {
		return &Tracer{
			tracer: trace.NewNoopTracerProvider().Tracer(tracerName),
		}, nil
	}

	ratio := cfg.SampleRatio
	if ratio == 0 {
		ratio = 1.0
	}
	if ratio < 0 || ratio > 1 {
		return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", cfg.SampleRatio)
	}

	exporter, err := createOTLPExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return &Tracer{
		tracer:   provider.Tracer(tracerName),
		provider: provider,
		enabled:  true,
	}, nil
}

// Start creates a span linked to the parent span from ctx, if any.
//
//	ctx, span := tracer.Start(ctx, "classify.batch")
//	defer span.End()
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Shutdown flushes pending spans and stops the exporter. It is a no-op for
// disabled tracers.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if !t.enabled || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Enabled reports whether spans are exported.
func (t *Tracer) Enabled() bool {
	return t.enabled
}

// createOTLPExporter creates an OTLP gRPC exporter. The connection is dialed
// lazily, so an unreachable collector surfaces on export, not here.
func createOTLPExporter(cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}

	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}

	exporter, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	return exporter, nil
}
