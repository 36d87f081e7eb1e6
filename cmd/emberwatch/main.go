// Emberwatch Cinder is a rule-based wildfire alert classifier.
//
// It evaluates sensor and observer alerts against a priority-ordered
// rule set and reports the risk level and recommended action for each:
//   - Batch classification of CSV/JSONL alert feeds
//   - Monitor mode watching a feed directory, with live rule reloads
//   - Rule sets from local files or a Git repository
//   - Classification history with scheduled retention pruning
//   - Prometheus metrics and health probes
//
// Usage:
//
//	# Classify a feed file against a rule set
//	emberwatch classify --rules rules.json --input alerts.csv
//
//	# Watch a feed directory continuously
//	emberwatch run --config /etc/emberwatch/config.yaml
//
//	# Generate a synthetic alert feed
//	emberwatch generate --records 1000 --out alerts.csv
//
//	# Check a rule file without evaluating anything
//	emberwatch lint rules.json
//
//	# Inspect recorded classifications
//	emberwatch history stats
package main

import (
	"os"

	"emberwatch/cinder/pkg/cli"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
