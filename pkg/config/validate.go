package config

import (
	"fmt"
	"strings"
	"time"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "rules.path").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateIngest(&cfg.Ingest)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateGenerate(&cfg.Generate)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateLogging validates logging configuration.
func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Level] {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format %q: must be 'json' or 'text'", cfg.Format),
		})
	}

	return errs
}

// validateRules validates rule store configuration.
func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	// Git source takes over when a URL is set; otherwise a local path is required.
	if cfg.Git.URL == "" {
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "rules.path",
				Message: "rule file path is required when no git url is set",
			})
		}
		return errs
	}

	if cfg.Git.Ref == "" {
		errs = append(errs, FieldError{
			Field:   "rules.git.ref",
			Message: "git ref is required when a git url is set",
		})
	}
	if cfg.Git.Path == "" {
		errs = append(errs, FieldError{
			Field:   "rules.git.path",
			Message: "rule file path inside the repository is required when a git url is set",
		})
	}
	if cfg.Git.Interval < 0 {
		errs = append(errs, FieldError{
			Field:   "rules.git.interval",
			Message: "poll interval must be non-negative",
		})
	} else if cfg.Git.Interval > 0 && cfg.Git.Interval < 10*time.Second {
		errs = append(errs, FieldError{
			Field:   "rules.git.interval",
			Message: "poll interval below reasonable limit (10s)",
		})
	}

	return errs
}

// validateEngine validates evaluation engine configuration.
func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if cfg.DefaultRisk == "" {
		errs = append(errs, FieldError{
			Field:   "engine.default_risk",
			Message: "default risk is required",
		})
	}
	if cfg.DefaultAction == "" {
		errs = append(errs, FieldError{
			Field:   "engine.default_action",
			Message: "default action is required",
		})
	}

	return errs
}

// validateIngest validates alert feed ingestion configuration.
func validateIngest(cfg *IngestConfig) []FieldError {
	var errs []FieldError

	if cfg.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "ingest.dir",
			Message: "ingest directory is required",
		})
	}
	if cfg.CheckpointPath == "" {
		errs = append(errs, FieldError{
			Field:   "ingest.checkpoint_path",
			Message: "checkpoint database path is required",
		})
	}

	return errs
}

// validateHistory validates history configuration.
func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	// If history is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "history.path",
			Message: "history database path is required when history is enabled",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention_days",
			Message: "retention days must be non-negative",
		})
	}

	return errs
}

// validateMetrics validates metrics configuration.
func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	// If metrics are disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	if cfg.Listen == "" {
		errs = append(errs, FieldError{
			Field:   "metrics.listen",
			Message: "listen address is required when metrics are enabled",
		})
	} else if !strings.Contains(cfg.Listen, ":") {
		errs = append(errs, FieldError{
			Field:   "metrics.listen",
			Message: fmt.Sprintf("invalid listen address %q: expected host:port", cfg.Listen),
		})
	}
	if cfg.Namespace == "" {
		errs = append(errs, FieldError{
			Field:   "metrics.namespace",
			Message: "metric namespace is required when metrics are enabled",
		})
	}

	return errs
}

// validateGenerate validates synthetic generator configuration.
func validateGenerate(cfg *GenerateConfig) []FieldError {
	var errs []FieldError

	if cfg.Records < 0 {
		errs = append(errs, FieldError{
			Field:   "generate.records",
			Message: "record count must be non-negative",
		})
	}
	if cfg.Start != "" {
		if _, err := time.Parse(time.RFC3339, cfg.Start); err != nil {
			errs = append(errs, FieldError{
				Field:   "generate.start",
				Message: fmt.Sprintf("invalid start timestamp %q: expected RFC 3339 (e.g., 2026-07-01T00:00:00Z)", cfg.Start),
			})
		}
	}
	if len(cfg.Zones) == 0 {
		errs = append(errs, FieldError{
			Field:   "generate.zones",
			Message: "at least one zone is required",
		})
	}

	return errs
}
