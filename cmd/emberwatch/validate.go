package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"emberwatch/cinder/pkg/cli"
	"emberwatch/cinder/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the configuration file without starting anything.

Decoding is strict: unknown keys are rejected, so typos in section or
field names surface here instead of silently falling back to defaults.

Examples:
  # Validate the default config file
  emberwatch validate

  # Validate a specific file
  emberwatch validate --config /etc/emberwatch/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	fmt.Printf("✓ %s is valid\n\n", cfgFile)

	if cfg.Rules.Git.URL != "" {
		fmt.Printf("  rules:   git %s@%s:%s (poll %s)\n",
			cfg.Rules.Git.URL, cfg.Rules.Git.Ref, cfg.Rules.Git.Path, cfg.Rules.Git.Interval)
	} else {
		fmt.Printf("  rules:   %s (watch: %t)\n", cfg.Rules.Path, cfg.Rules.Watch)
	}
	fmt.Printf("  default: %s / %s\n", cfg.Engine.DefaultRisk, cfg.Engine.DefaultAction)
	fmt.Printf("  ingest:  %s\n", cfg.Ingest.Dir)
	if cfg.History.Enabled {
		fmt.Printf("  history: %s (retention %dd)\n", cfg.History.Path, cfg.History.RetentionDays)
	} else {
		fmt.Println("  history: disabled")
	}
	if cfg.Metrics.Enabled {
		fmt.Printf("  metrics: %s (namespace %s)\n", cfg.Metrics.Listen, cfg.Metrics.Namespace)
	} else {
		fmt.Println("  metrics: disabled")
	}

	return nil
}
