package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Custom attribute keys use the "cinder." namespace.
const (
	// Rule store attributes
	AttrRulesSource = "cinder.rules.source"
	AttrRuleCount   = "cinder.rules.count"

	// Evaluation attributes
	AttrRecords = "cinder.records"
	AttrMatches = "cinder.matches"

	// Feed attributes
	AttrFile = "cinder.file"
	AttrZone = "cinder.zone"
)

// SetLoadAttributes records rule store details on a load span.
//
// Example:
//
//	SetLoadAttributes(span, st.Source(), st.Len())
func SetLoadAttributes(span trace.Span, source string, ruleCount int) {
	span.SetAttributes(
		attribute.String(AttrRulesSource, source),
		attribute.Int(AttrRuleCount, ruleCount),
	)
}

// SetBatchAttributes records batch evaluation totals on a span.
//
// Example:
//
//	SetBatchAttributes(span, len(alerts), summary.Actionable)
func SetBatchAttributes(span trace.Span, records, matches int) {
	span.SetAttributes(
		attribute.Int(AttrRecords, records),
		attribute.Int(AttrMatches, matches),
	)
}

// SetFileAttribute records the ingested file path on a span.
func SetFileAttribute(span trace.Span, path string) {
	span.SetAttributes(attribute.String(AttrFile, path))
}

// SetError marks the span as failed and records the error. A nil error
// leaves the span untouched.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String("error.message", err.Error()),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SpanFromContext returns the current span from the context.
// If no span exists, a noop span is returned.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// TraceID returns the trace ID from the context as a string.
// Returns empty string if no trace context exists.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the span ID from the context as a string.
// Returns empty string if no span context exists.
func SpanID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}
