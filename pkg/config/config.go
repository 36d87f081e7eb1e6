package config

import "time"

// Config is the root configuration structure for Emberwatch Cinder.
// It contains all configuration sections for rule loading, the evaluation
// engine, alert feed ingestion, classification history, telemetry, and the
// synthetic generator.
type Config struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Rules contains configuration for the rule store: where rule sets are
	// loaded from (local file or Git repository) and whether the store
	// watches the source for changes.
	Rules RulesConfig `yaml:"rules"`

	// Engine contains evaluation engine configuration, including the
	// default result returned when no rule matches.
	Engine EngineConfig `yaml:"engine"`

	// Ingest contains alert feed ingestion configuration for monitor mode.
	Ingest IngestConfig `yaml:"ingest"`

	// History contains configuration for classification history storage
	// and retention.
	History HistoryConfig `yaml:"history"`

	// Metrics contains Prometheus metrics exposition configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Generate contains defaults for the synthetic alert generator.
	Generate GenerateConfig `yaml:"generate"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format selects the log output format.
	// Options: "json" (machine-readable), "text" (human-readable).
	// Default: "json"
	Format string `yaml:"format"`
}

// RulesConfig contains configuration for the rule store.
type RulesConfig struct {
	// Path is the path to the local rule file (JSON or YAML).
	// Ignored when Git.URL is set.
	// Default: "./rules.json"
	Path string `yaml:"path"`

	// Watch controls whether the store watches the rule source and reloads
	// on change. A failed reload keeps the previous rule set.
	// Default: false
	Watch bool `yaml:"watch"`

	// Git configures loading rules from a Git repository instead of a
	// local file. Leaving URL empty disables the Git source.
	Git RulesGitConfig `yaml:"git"`
}

// RulesGitConfig contains configuration for the Git rule source.
type RulesGitConfig struct {
	// URL is the repository URL (https, ssh, or local path).
	// Empty means the Git source is disabled and Rules.Path is used.
	URL string `yaml:"url"`

	// Ref is the branch or tag to track.
	// Default: "main"
	Ref string `yaml:"ref"`

	// Path is the rule file path inside the repository.
	// Default: "rules.json"
	Path string `yaml:"path"`

	// Interval is how often the repository is polled for new commits.
	// Default: 5m
	Interval time.Duration `yaml:"interval"`
}

// EngineConfig contains evaluation engine configuration.
type EngineConfig struct {
	// DefaultRisk is the risk level reported when no rule matches a record.
	// Default: "NORMAL"
	DefaultRisk string `yaml:"default_risk"`

	// DefaultAction is the action reported when no rule matches a record.
	// Default: "routine monitoring"
	DefaultAction string `yaml:"default_action"`
}

// IngestConfig contains alert feed ingestion configuration.
type IngestConfig struct {
	// Dir is the directory watched for incoming alert feed files
	// (CSV or JSONL) in monitor mode.
	// Default: "data/incoming"
	Dir string `yaml:"dir"`

	// CheckpointPath is the SQLite database tracking which feed files have
	// already been processed, so restarts do not reclassify them.
	// Default: "data/checkpoints.db"
	CheckpointPath string `yaml:"checkpoint_path"`
}

// HistoryConfig contains classification history configuration.
type HistoryConfig struct {
	// Enabled controls whether classifications are recorded to history.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database path for history storage.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// RetentionDays is the age in days after which history entries are
	// pruned. Zero disables age-based pruning.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression controlling when retention
	// pruning runs. Empty disables scheduled pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is served in
	// monitor mode.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Listen is the address the metrics and health HTTP server binds to.
	// Format: "host:port".
	// Default: "127.0.0.1:9464"
	Listen string `yaml:"listen"`

	// Namespace is the Prometheus metric name prefix.
	// Default: "cinder"
	Namespace string `yaml:"namespace"`
}

// GenerateConfig contains defaults for the synthetic alert generator.
type GenerateConfig struct {
	// Records is the number of synthetic alerts to generate.
	// Default: 1000
	Records int `yaml:"records"`

	// Start is the timestamp of the first generated alert, in RFC 3339
	// format. Empty means the current time.
	Start string `yaml:"start"`

	// Seed seeds the random source for reproducible output.
	// Zero means a time-based seed.
	Seed int64 `yaml:"seed"`

	// Zones is the set of zone names assigned to generated alerts.
	// Default: the four monitored zones.
	Zones []string `yaml:"zones"`
}
