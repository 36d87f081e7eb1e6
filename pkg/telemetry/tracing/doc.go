// Package tracing provides optional OpenTelemetry tracing for the pipelines.
//
// # Overview
//
// Spans wrap the pipelines (rule loading, batch classification, feed files),
// not individual rule evaluations; a per-record span would cost more than the
// evaluation it measures. Export goes to an OTLP gRPC collector.
//
// # Enabling
//
// Tracing has no configuration file section. It turns on when the standard
// OpenTelemetry environment variables are set:
//
//	OTEL_EXPORTER_OTLP_ENDPOINT=localhost:4317 emberwatch run
//
// Without an endpoint New returns a no-op tracer, so instrumented code paths
// need no guards.
//
// # Usage
//
//	tracer, err := tracing.New(tracing.FromEnv("emberwatch", version))
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "classify.batch")
//	defer span.End()
//	tracing.SetBatchAttributes(span, len(alerts), summary.Actionable)
//
// Sampling is parent-based trace ID ratio sampling; the ratio comes from
// OTEL_TRACES_SAMPLER_ARG and defaults to 1.0.
package tracing
