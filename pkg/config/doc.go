// Package config provides configuration management for Emberwatch Cinder.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.Load("cinder.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadWithEnvOverrides("cinder.yaml")
//
// YAML decoding is strict: unknown keys fail the load so typos in section
// or field names surface immediately instead of silently applying defaults.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention EMBERWATCH_SECTION_FIELD.
// For example:
//
//   - EMBERWATCH_RULES_PATH overrides rules.path
//   - EMBERWATCH_LOGGING_LEVEL overrides logging.level
//   - EMBERWATCH_HISTORY_RETENTION_DAYS overrides history.retention_days
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// All configuration is validated automatically during loading. Validation
// errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - logging.level: invalid level "chatty": must be 'debug', 'info', 'warn', or 'error'
//	  - rules.git.interval: poll interval must be non-negative
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	logging:
//	  level: "info"
//	  format: "json"
//
//	rules:
//	  path: "./rules.json"
//	  watch: true
//
//	ingest:
//	  dir: "data/incoming"
//
//	history:
//	  enabled: true
//	  retention_days: 90
//
//	metrics:
//	  enabled: true
//	  listen: "127.0.0.1:9464"
package config
