// Package logging builds the structured loggers used across Cinder.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON (default) and text output formats
//   - Configurable log levels (debug, info, warn, error)
//   - Context-aware enrichment: run id, feed path, and zone stored on a
//     context.Context appear on every record logged with that context
//
// # Usage
//
//	// Create and install the process-wide logger
//	logger, err := logging.Init(logging.Config{
//	    Level:  cfg.Logging.Level,
//	    Format: cfg.Logging.Format,
//	})
//
//	// Log structured data
//	logger.Info("rules loaded",
//	    "source", "rules.json",
//	    "count", 12,
//	)
//
//	// Carry fields on the context
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "feed classified") // includes run_id
//
// Logs go to standard error by default; command output (reports, generated
// CSV) owns standard out.
package logging
