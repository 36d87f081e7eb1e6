package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"emberwatch/cinder/pkg/alerts"
	"emberwatch/cinder/pkg/cli"
	"emberwatch/cinder/pkg/engine"
	"emberwatch/cinder/pkg/report"
	"emberwatch/cinder/pkg/rules/store"
)

var classifyFlags struct {
	rules          string
	input          string
	output         string
	onlyActionable bool
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify an alert feed against a rule set",
	Long: `Classify every alert in a feed file against a rule set and write the
resulting report.

A broken rule set aborts the run. Malformed feed rows do not: they are
skipped with a warning and the remaining rows still classify, so one bad
sensor reading never hides the rest of the feed.

Examples:
  # Human-readable report
  emberwatch classify --rules rules.json --input alerts.csv

  # Full classified dataset as CSV
  emberwatch classify --rules rules.json --input alerts.csv --output csv > classified.csv

  # Only the rows that need action
  emberwatch classify --rules rules.json --input alerts.jsonl --output csv --only-actionable

  # Machine-readable summary
  emberwatch classify --rules rules.json --input alerts.csv --output json`,
	RunE: classifyFeed,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&classifyFlags.rules, "rules", "r", "rules.json", "rule file (JSON or YAML)")
	classifyCmd.Flags().StringVarP(&classifyFlags.input, "input", "i", "", "alert feed file (.csv or .jsonl)")
	classifyCmd.Flags().StringVarP(&classifyFlags.output, "output", "o", "text", "output format (text, json, csv)")
	classifyCmd.Flags().BoolVar(&classifyFlags.onlyActionable, "only-actionable", false, "limit csv output to actionable rows")

	classifyCmd.MarkFlagRequired("input")
}

func classifyFeed(cmd *cobra.Command, args []string) error {
	if err := initLogging("warn", "text"); err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	format, err := cli.ParseFormat(classifyFlags.output)
	if err != nil {
		return cli.NewConfigError("output", err.Error())
	}

	ctx := context.Background()

	st, err := store.Load(ctx, store.NewFileSource(classifyFlags.rules))
	if err != nil {
		return cli.NewCommandError("classify", err)
	}

	alertSet, rowErrors, err := readAlertFile(classifyFlags.input)
	if err != nil {
		return cli.NewCommandError("classify", err)
	}
	for i := range rowErrors {
		fmt.Fprintf(os.Stderr, "⚠ skipped %v\n", &rowErrors[i])
	}

	eng, err := engine.New(st, engine.DefaultConfig(), slog.Default())
	if err != nil {
		return cli.NewCommandError("classify", err)
	}

	records := make([]engine.Record, len(alertSet))
	for i := range alertSet {
		records[i] = alertSet[i].Record()
	}
	results := eng.EvaluateAll(records)

	classifications := make([]report.Classification, len(alertSet))
	for i := range alertSet {
		classifications[i] = report.Classification{
			Alert:  alertSet[i],
			Result: results[i],
		}
	}
	rep := report.New(classifications)

	// CSV without --only-actionable dumps the whole classified feed; the
	// report renderers cover everything else.
	if format == cli.FormatCSV && !classifyFlags.onlyActionable {
		if err := alerts.WriteClassifiedCSV(os.Stdout, alertSet, results, nil); err != nil {
			return cli.NewCommandError("classify", err)
		}
		return nil
	}

	if err := cli.NewFormatter(format).FormatTo(os.Stdout, rep); err != nil {
		return cli.NewCommandError("classify", err)
	}
	return nil
}

// readAlertFile reads a feed file, picking the decoder by extension.
func readAlertFile(path string) ([]alerts.Alert, []alerts.RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening feed file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return alerts.ReadCSV(f)
	case ".jsonl":
		return alerts.ReadJSONL(f)
	default:
		return nil, nil, fmt.Errorf("unsupported feed format %q (expected .csv or .jsonl)", filepath.Ext(path))
	}
}
