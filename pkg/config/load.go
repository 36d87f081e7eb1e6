package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path.
// Decoding is strict: unknown keys are rejected. Defaults are applied for
// absent fields, the result is validated, and any errors are returned.
// The configuration is not modified by environment variables; use
// LoadWithEnvOverrides for that functionality.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Decode over a fully defaulted config so absent fields keep their
	// defaults while explicit zero values in the file survive.
	cfg := NewConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention EMBERWATCH_SECTION_FIELD (e.g., EMBERWATCH_RULES_PATH).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file over defaults
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in defaults with environment variable
// overrides applied, for commands that run without a config file.
func Default() (*Config, error) {
	cfg := NewConfig()
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format EMBERWATCH_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Logging overrides
	if val := os.Getenv("EMBERWATCH_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("EMBERWATCH_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	// Rules overrides
	if val := os.Getenv("EMBERWATCH_RULES_PATH"); val != "" {
		cfg.Rules.Path = val
	}
	if val := os.Getenv("EMBERWATCH_RULES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.Watch = b
		}
	}
	if val := os.Getenv("EMBERWATCH_RULES_GIT_URL"); val != "" {
		cfg.Rules.Git.URL = val
	}
	if val := os.Getenv("EMBERWATCH_RULES_GIT_REF"); val != "" {
		cfg.Rules.Git.Ref = val
	}
	if val := os.Getenv("EMBERWATCH_RULES_GIT_PATH"); val != "" {
		cfg.Rules.Git.Path = val
	}
	if val := os.Getenv("EMBERWATCH_RULES_GIT_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Rules.Git.Interval = d
		}
	}

	// Engine overrides
	if val := os.Getenv("EMBERWATCH_ENGINE_DEFAULT_RISK"); val != "" {
		cfg.Engine.DefaultRisk = val
	}
	if val := os.Getenv("EMBERWATCH_ENGINE_DEFAULT_ACTION"); val != "" {
		cfg.Engine.DefaultAction = val
	}

	// Ingest overrides
	if val := os.Getenv("EMBERWATCH_INGEST_DIR"); val != "" {
		cfg.Ingest.Dir = val
	}
	if val := os.Getenv("EMBERWATCH_INGEST_CHECKPOINT_PATH"); val != "" {
		cfg.Ingest.CheckpointPath = val
	}

	// History overrides
	if val := os.Getenv("EMBERWATCH_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := os.Getenv("EMBERWATCH_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}
	if val := os.Getenv("EMBERWATCH_HISTORY_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.History.RetentionDays = i
		}
	}
	if val := os.Getenv("EMBERWATCH_HISTORY_PRUNE_SCHEDULE"); val != "" {
		cfg.History.PruneSchedule = val
	}

	// Metrics overrides
	if val := os.Getenv("EMBERWATCH_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("EMBERWATCH_METRICS_LISTEN"); val != "" {
		cfg.Metrics.Listen = val
	}
	if val := os.Getenv("EMBERWATCH_METRICS_NAMESPACE"); val != "" {
		cfg.Metrics.Namespace = val
	}

	// Generate overrides
	if val := os.Getenv("EMBERWATCH_GENERATE_RECORDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Generate.Records = i
		}
	}
	if val := os.Getenv("EMBERWATCH_GENERATE_START"); val != "" {
		cfg.Generate.Start = val
	}
	if val := os.Getenv("EMBERWATCH_GENERATE_SEED"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Generate.Seed = i
		}
	}
	if val := os.Getenv("EMBERWATCH_GENERATE_ZONES"); val != "" {
		zones := strings.Split(val, ",")
		for i := range zones {
			zones[i] = strings.TrimSpace(zones[i])
		}
		cfg.Generate.Zones = zones
	}
}
