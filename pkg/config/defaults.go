package config

import "time"

// Default values for configuration fields.
const (
	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	// Rules defaults
	DefaultRulesPath        = "./rules.json"
	DefaultRulesWatch       = false
	DefaultRulesGitRef      = "main"
	DefaultRulesGitPath     = "rules.json"
	DefaultRulesGitInterval = 5 * time.Minute

	// Engine defaults
	DefaultEngineRisk   = "NORMAL"
	DefaultEngineAction = "routine monitoring"

	// Ingest defaults
	DefaultIngestDir            = "data/incoming"
	DefaultIngestCheckpointPath = "data/checkpoints.db"

	// History defaults
	DefaultHistoryEnabled       = true
	DefaultHistoryPath          = "data/history.db"
	DefaultHistoryRetentionDays = 90
	DefaultHistoryPruneSchedule = "0 3 * * *"

	// Metrics defaults
	DefaultMetricsEnabled   = false
	DefaultMetricsListen    = "127.0.0.1:9464"
	DefaultMetricsNamespace = "cinder"

	// Generate defaults
	DefaultGenerateRecords = 1000
)

// DefaultGenerateZones is the default zone set for the synthetic generator.
var DefaultGenerateZones = []string{
	"Serra da Estrela",
	"Monchique",
	"Peneda-Gerês",
	"Sintra",
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
//
// Load does not use it directly: it decodes YAML over NewConfig instead,
// so an explicit false or zero in the file survives. ApplyDefaults cannot
// tell those from unset.
func ApplyDefaults(cfg *Config) {
	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	// Rules defaults
	if cfg.Rules.Path == "" {
		cfg.Rules.Path = DefaultRulesPath
	}
	if cfg.Rules.Git.Ref == "" {
		cfg.Rules.Git.Ref = DefaultRulesGitRef
	}
	if cfg.Rules.Git.Path == "" {
		cfg.Rules.Git.Path = DefaultRulesGitPath
	}
	if cfg.Rules.Git.Interval == 0 {
		cfg.Rules.Git.Interval = DefaultRulesGitInterval
	}

	// Engine defaults
	if cfg.Engine.DefaultRisk == "" {
		cfg.Engine.DefaultRisk = DefaultEngineRisk
	}
	if cfg.Engine.DefaultAction == "" {
		cfg.Engine.DefaultAction = DefaultEngineAction
	}

	// Ingest defaults
	if cfg.Ingest.Dir == "" {
		cfg.Ingest.Dir = DefaultIngestDir
	}
	if cfg.Ingest.CheckpointPath == "" {
		cfg.Ingest.CheckpointPath = DefaultIngestCheckpointPath
	}

	// History defaults
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = DefaultHistoryRetentionDays
	}
	if cfg.History.PruneSchedule == "" {
		cfg.History.PruneSchedule = DefaultHistoryPruneSchedule
	}

	// Metrics defaults
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = DefaultMetricsListen
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Generate defaults
	if cfg.Generate.Records == 0 {
		cfg.Generate.Records = DefaultGenerateRecords
	}
	if len(cfg.Generate.Zones) == 0 {
		cfg.Generate.Zones = append([]string(nil), DefaultGenerateZones...)
	}
}

// NewConfig returns a Config with every default applied, including boolean
// defaults that are true. It is the starting point for Load and for callers
// assembling a configuration programmatically.
func NewConfig() *Config {
	cfg := &Config{
		History: HistoryConfig{Enabled: DefaultHistoryEnabled},
	}
	ApplyDefaults(cfg)
	return cfg
}
