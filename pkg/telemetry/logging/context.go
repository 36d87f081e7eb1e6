package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for classification run identifiers.
	RunIDKey contextKey = "run_id"

	// FeedKey is the context key for the feed file being processed.
	FeedKey contextKey = "feed"

	// ZoneKey is the context key for the zone under evaluation.
	ZoneKey contextKey = "zone"
)

// WithRunID adds a run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run identifier from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithFeed adds a feed file path to the context.
func WithFeed(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, FeedKey, path)
}

// GetFeed retrieves the feed file path from the context.
func GetFeed(ctx context.Context) string {
	if path, ok := ctx.Value(FeedKey).(string); ok {
		return path
	}
	return ""
}

// WithZone adds a zone name to the context.
func WithZone(ctx context.Context, zone string) context.Context {
	return context.WithValue(ctx, ZoneKey, zone)
}

// GetZone retrieves the zone name from the context.
func GetZone(ctx context.Context) string {
	if zone, ok := ctx.Value(ZoneKey).(string); ok {
		return zone
	}
	return ""
}

// contextAttrs extracts common fields from context for logging.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if runID := GetRunID(ctx); runID != "" {
		attrs = append(attrs, slog.String("run_id", runID))
	}
	if feed := GetFeed(ctx); feed != "" {
		attrs = append(attrs, slog.String("feed", feed))
	}
	if zone := GetZone(ctx); zone != "" {
		attrs = append(attrs, slog.String("zone", zone))
	}

	return attrs
}
