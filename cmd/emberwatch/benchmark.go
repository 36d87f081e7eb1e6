package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"emberwatch/cinder/pkg/alerts"
	"emberwatch/cinder/pkg/cli"
	"emberwatch/cinder/pkg/engine"
	"emberwatch/cinder/pkg/rules"
	"emberwatch/cinder/pkg/rules/store"
)

var benchmarkFlags struct {
	records int
	rules   string
	seed    int64
}

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure evaluation throughput",
	Long: `Measure rule evaluation throughput over a synthetic alert feed.

Records are generated in memory and evaluated one at a time against the
loaded rule set, reporting total throughput and per-record latency
percentiles.

Examples:
  # Benchmark the built-in starter rules
  emberwatch benchmark

  # Benchmark a production rule set with a bigger feed
  emberwatch benchmark --rules rules.json --records 500000`,
	RunE: runEvalBenchmark,
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	benchmarkCmd.Flags().IntVarP(&benchmarkFlags.records, "records", "n", 100000, "number of synthetic records")
	benchmarkCmd.Flags().StringVarP(&benchmarkFlags.rules, "rules", "r", "", "rule file (default: built-in starter rules)")
	benchmarkCmd.Flags().Int64Var(&benchmarkFlags.seed, "seed", 1, "random seed for the synthetic feed")
}

func runEvalBenchmark(cmd *cobra.Command, args []string) error {
	if err := initLogging("warn", "text"); err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	var src store.Source
	if benchmarkFlags.rules != "" {
		src = store.NewFileSource(benchmarkFlags.rules)
	} else {
		src = store.NewMemorySource("starter rules", rules.Defaults())
	}

	st, err := store.Load(context.Background(), src)
	if err != nil {
		return cli.NewCommandError("benchmark", err)
	}

	eng, err := engine.New(st, engine.DefaultConfig(), slog.Default())
	if err != nil {
		return cli.NewCommandError("benchmark", err)
	}

	genConfig := alerts.DefaultGeneratorConfig()
	genConfig.Records = benchmarkFlags.records
	genConfig.Seed = benchmarkFlags.seed

	gen, err := alerts.NewGenerator(genConfig)
	if err != nil {
		return cli.NewConfigError("records", err.Error())
	}

	alertSet := gen.Generate()
	records := make([]engine.Record, len(alertSet))
	for i := range alertSet {
		records[i] = alertSet[i].Record()
	}

	fmt.Println("Emberwatch Benchmark")
	fmt.Println("====================")
	fmt.Printf("Rules:   %d (%s)\n", st.Len(), st.Source())
	fmt.Printf("Records: %d\n", len(records))
	fmt.Println()
	fmt.Println("Running...")
	fmt.Println()

	progress := cli.NewProgressReporter(nil)
	progress.Start(int64(len(records)))

	latencies := make([]time.Duration, 0, len(records))
	matched := 0
	start := time.Now()
	for i := range records {
		recStart := time.Now()
		res := eng.EvaluateOne(records[i])
		latencies = append(latencies, time.Since(recStart))

		if res.Matched {
			matched++
		}
		if (i+1)%1000 == 0 {
			progress.Update(int64(i + 1))
		}
	}
	progress.Finish()

	displayBenchmark(len(records), matched, time.Since(start), latencies)
	return nil
}

func displayBenchmark(records, matched int, elapsed time.Duration, latencies []time.Duration) {
	fmt.Println()
	fmt.Println("Results:")
	fmt.Println("--------")
	fmt.Printf("Records:    %d total, %d matched (%.1f%%)\n",
		records, matched, float64(matched)/float64(records)*100)
	fmt.Printf("Duration:   %.2fs\n", elapsed.Seconds())
	fmt.Printf("Throughput: %.0f records/s\n", float64(records)/elapsed.Seconds())

	if len(latencies) > 0 {
		min, mean, median, p95, p99, max := calculatePercentiles(latencies)

		fmt.Println()
		fmt.Println("Per-record latency:")
		fmt.Printf("  Min:     %s\n", min)
		fmt.Printf("  Mean:    %s\n", mean)
		fmt.Printf("  Median:  %s\n", median)
		fmt.Printf("  p95:     %s\n", p95)
		fmt.Printf("  p99:     %s\n", p99)
		fmt.Printf("  Max:     %s\n", max)
	}
}

func calculatePercentiles(latencies []time.Duration) (min, mean, median, p95, p99, max time.Duration) {
	if len(latencies) == 0 {
		return
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var sum time.Duration
	for _, lat := range sorted {
		sum += lat
	}
	mean = sum / time.Duration(len(sorted))

	median = sorted[len(sorted)/2]
	p95 = sorted[percentileIndex(len(sorted), 0.95)]
	p99 = sorted[percentileIndex(len(sorted), 0.99)]
	return
}

func percentileIndex(n int, q float64) int {
	idx := int(float64(n) * q)
	if idx >= n {
		idx = n - 1
	}
	return idx
}
