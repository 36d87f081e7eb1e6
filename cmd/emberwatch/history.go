package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"emberwatch/cinder/pkg/cli"
	"emberwatch/cinder/pkg/history"
	"emberwatch/cinder/pkg/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage classification history",
	Long: `Inspect and manage the classification history recorded by monitor mode.

The history database path comes from the config file (history.path).`,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	Long: `Show entry counts per risk level and the covered time range.

Examples:
  emberwatch history stats`,
	RunE: historyStats,
}

var historyExportFlags struct {
	format string
	since  string
	until  string
	runID  string
	zone   string
	risk   string
	limit  int
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history entries",
	Long: `Export recorded classifications as CSV or JSON.

Entries are written oldest first. Time bounds accept RFC 3339 timestamps
or a relative duration like 72h, counted back from now.

Examples:
  # Everything from the last three days
  emberwatch history export --since 72h

  # Critical classifications for one zone, as JSON
  emberwatch history export --risk CRITICAL --zone Monchique --format json`,
	RunE: historyExport,
}

var historyPruneFlags struct {
	olderThan time.Duration
	dryRun    bool
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old history entries",
	Long: `Remove history entries older than the given age.

Examples:
  # Drop everything older than 90 days
  emberwatch history prune --older-than 2160h

  # See what would be removed
  emberwatch history prune --older-than 2160h --dry-run`,
	RunE: historyPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyExportCmd.Flags().StringVar(&historyExportFlags.format, "format", "csv", "output format (csv, json)")
	historyExportCmd.Flags().StringVar(&historyExportFlags.since, "since", "", "lower time bound (RFC 3339 or duration)")
	historyExportCmd.Flags().StringVar(&historyExportFlags.until, "until", "", "upper time bound (RFC 3339 or duration)")
	historyExportCmd.Flags().StringVar(&historyExportFlags.runID, "run", "", "filter by run id")
	historyExportCmd.Flags().StringVar(&historyExportFlags.zone, "zone", "", "filter by zone")
	historyExportCmd.Flags().StringVar(&historyExportFlags.risk, "risk", "", "filter by risk level")
	historyExportCmd.Flags().IntVar(&historyExportFlags.limit, "limit", -1, "maximum entries (negative means all)")

	historyPruneCmd.Flags().DurationVar(&historyPruneFlags.olderThan, "older-than", 0, "remove entries older than this age (e.g. 2160h)")
	historyPruneCmd.Flags().BoolVar(&historyPruneFlags.dryRun, "dry-run", false, "report what would be removed without deleting")
	historyPruneCmd.MarkFlagRequired("older-than")
}

// openHistory opens the configured history database.
func openHistory(cmd *cobra.Command) (history.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	histConfig := history.DefaultSQLiteConfig()
	histConfig.Path = cfg.History.Path

	st, err := history.NewSQLiteStore(histConfig)
	if err != nil {
		return nil, cli.NewCommandError("history", err)
	}
	return st, nil
}

func historyStats(cmd *cobra.Command, args []string) error {
	if err := initLogging("warn", "text"); err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	st, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(context.Background())
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	fmt.Printf("Entries: %d\n", stats.Total)
	if stats.Total == 0 {
		return nil
	}

	labels := make([]string, 0, len(stats.ByRisk))
	for label := range stats.ByRisk {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, rj := report.Rank(labels[i]), report.Rank(labels[j])
		if ri != rj {
			return ri < rj
		}
		return labels[i] < labels[j]
	})

	width := 0
	for _, label := range labels {
		if len(label) > width {
			width = len(label)
		}
	}
	for _, label := range labels {
		fmt.Printf("  %-*s %d\n", width, label, stats.ByRisk[label])
	}

	fmt.Printf("Oldest:  %s\n", stats.Oldest.Format(time.RFC3339))
	fmt.Printf("Newest:  %s\n", stats.Newest.Format(time.RFC3339))
	return nil
}

func historyExport(cmd *cobra.Command, args []string) error {
	if err := initLogging("warn", "text"); err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	format, err := cli.ParseFormat(historyExportFlags.format)
	if err != nil || format == cli.FormatText {
		return cli.NewConfigError("format", fmt.Sprintf("unknown export format %q (expected csv or json)", historyExportFlags.format))
	}

	filter := &history.Filter{
		RunID:     historyExportFlags.runID,
		Zone:      historyExportFlags.zone,
		Risk:      historyExportFlags.risk,
		Ascending: true,
		Limit:     historyExportFlags.limit,
	}
	if historyExportFlags.since != "" {
		t, err := parseTimeBound(historyExportFlags.since)
		if err != nil {
			return cli.NewConfigError("since", err.Error())
		}
		filter.Since = &t
	}
	if historyExportFlags.until != "" {
		t, err := parseTimeBound(historyExportFlags.until)
		if err != nil {
			return cli.NewConfigError("until", err.Error())
		}
		filter.Until = &t
	}

	st, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Query(context.Background(), filter)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	switch format {
	case cli.FormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return cli.NewCommandError("history", err)
		}
	case cli.FormatCSV:
		formatter := &cli.CSVFormatter{
			Headers: []string{"id", "run_id", "timestamp", "zone", "risk", "action", "rule_id", "matched", "recorded_at"},
		}
		rows := make([][]string, 0, len(entries))
		for i := range entries {
			e := &entries[i]
			rows = append(rows, []string{
				e.ID, e.RunID,
				e.Timestamp.Format(time.RFC3339),
				e.Zone, e.Risk, e.Action, e.RuleID,
				strconv.FormatBool(e.Matched),
				e.RecordedAt.Format(time.RFC3339),
			})
		}
		if err := formatter.FormatTo(os.Stdout, rows); err != nil {
			return cli.NewCommandError("history", err)
		}
	}

	return nil
}

func historyPrune(cmd *cobra.Command, args []string) error {
	if err := initLogging("warn", "text"); err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	if historyPruneFlags.olderThan <= 0 {
		return cli.NewConfigError("older-than", "age must be positive")
	}

	st, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-historyPruneFlags.olderThan)
	filter := &history.Filter{Until: &cutoff, Limit: -1}

	if historyPruneFlags.dryRun {
		count, err := st.Count(ctx, filter)
		if err != nil {
			return cli.NewCommandError("history", err)
		}
		fmt.Printf("Would prune %d entries older than %s\n", count, cutoff.Format(time.RFC3339))
		return nil
	}

	pruned, err := st.Delete(ctx, filter)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	fmt.Printf("✓ Pruned %d entries older than %s\n", pruned, cutoff.Format(time.RFC3339))
	return nil
}

// parseTimeBound accepts an RFC 3339 timestamp or a relative duration
// counted back from now.
func parseTimeBound(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().UTC().Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("invalid time bound %q (expected RFC 3339 or duration)", s)
}
