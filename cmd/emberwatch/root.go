package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emberwatch/cinder/pkg/config"
	"emberwatch/cinder/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "emberwatch",
	Short: "Emberwatch Cinder - rule-based wildfire alert classifier",
	Long: `Emberwatch Cinder classifies wildfire sensor alerts against a
priority-ordered rule set and reports the risk level and recommended
action for each one.

Rules are plain JSON or YAML files, loadable from disk or a Git
repository; the first matching rule wins and anything unmatched falls
back to routine monitoring. Alert feeds arrive as CSV or JSONL, either
in one-shot batches or through a watched feed directory.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Errors are printed to stderr; the
// caller maps them to a process exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log output format (text, json)")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig reads the config file named by --config. The default path
// is optional: when it does not exist, built-in defaults plus
// environment overrides apply. An explicitly flagged path must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default()
	}
	return nil, err
}

// initLogging installs the process logger. Interactive commands keep
// stderr quiet at warn level unless --verbose asks for debug; monitor
// mode passes the configured level and format instead.
func initLogging(level, format string) error {
	if verbose {
		level = "debug"
	}
	if logFormat != "" {
		format = logFormat
	}
	if _, err := logging.Init(logging.Config{Level: level, Format: format}); err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	return nil
}
