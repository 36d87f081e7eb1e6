package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"emberwatch/cinder/pkg/alerts"
	"emberwatch/cinder/pkg/cli"
	"emberwatch/cinder/pkg/rules"
	"emberwatch/cinder/pkg/rules/parser"
	"emberwatch/cinder/pkg/rules/validator"
)

var lintFlags struct {
	format string
	strict bool
}

var lintCmd = &cobra.Command{
	Use:   "lint [files...]",
	Short: "Validate rule files",
	Long: `Validate rule files without evaluating anything.

Every violation in every file is reported, not just the first one.
Structural errors (missing fields, unknown operators, mistyped operands)
always fail the command. Suspicious but legal constructs (duplicate ids,
shared priorities, empty condition lists, feed fields no rule references)
are warnings unless --strict promotes them to failures.

Examples:
  # Lint a single rule file
  emberwatch lint rules.json

  # Lint several files, failing on warnings too
  emberwatch lint --strict rules/*.json

  # Machine-readable findings
  emberwatch lint --format json rules.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format (text, json)")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as failures")
}

// lintResult is the outcome of linting one rule file.
type lintResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Rules    int      `json:"rules"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func lintRules(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil || format == cli.FormatCSV {
		return cli.NewConfigError("format", fmt.Sprintf("unknown lint format %q (expected text or json)", lintFlags.format))
	}

	results := make([]lintResult, 0, len(args))
	hasErrors, hasWarnings := false, false
	for _, path := range args {
		res := lintFile(path)
		hasErrors = hasErrors || !res.Valid
		hasWarnings = hasWarnings || len(res.Warnings) > 0
		results = append(results, res)
	}

	switch format {
	case cli.FormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return cli.NewCommandError("lint", err)
		}
	default:
		lintText(results)
	}

	if hasErrors || (lintFlags.strict && hasWarnings) {
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}
	return nil
}

// lintFile parses and validates a single rule file, accumulating every
// finding.
func lintFile(path string) lintResult {
	res := lintResult{File: path}

	ruleSet, err := parser.ParseFile(path)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	res.Rules = len(ruleSet)

	if err := validator.New().Validate(ruleSet); err != nil {
		var list *rules.ErrorList
		if errors.As(err, &list) {
			for _, e := range list.Errors {
				res.Errors = append(res.Errors, e.Error())
			}
		} else {
			res.Errors = append(res.Errors, err.Error())
		}
		return res
	}

	res.Valid = true
	for _, w := range validator.New().Warnings(ruleSet) {
		res.Warnings = append(res.Warnings, w.String())
	}
	res.Warnings = append(res.Warnings, feedWarnings(ruleSet)...)
	return res
}

// feedWarnings are feed-aware lint checks beyond structural validation:
// shared priorities (evaluation falls back to file order) and canonical
// feed fields no rule conditions on.
func feedWarnings(ruleSet []rules.Rule) []string {
	var out []string

	byPriority := make(map[int][]string)
	for i := range ruleSet {
		byPriority[ruleSet[i].Priority] = append(byPriority[ruleSet[i].Priority], ruleSet[i].ID)
	}
	priorities := make([]int, 0, len(byPriority))
	for p := range byPriority {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)
	for _, p := range priorities {
		if ids := byPriority[p]; len(ids) > 1 {
			out = append(out, fmt.Sprintf("rules %s share priority %d; ties keep their file order",
				strings.Join(ids, ", "), p))
		}
	}

	referenced := make(map[string]bool)
	for i := range ruleSet {
		for _, c := range ruleSet[i].Conditions {
			referenced[c.Field] = true
		}
	}
	for _, field := range alerts.CanonicalFields {
		if !referenced[field] {
			out = append(out, fmt.Sprintf("no rule references feed field %q", field))
		}
	}

	return out
}

// lintText renders findings with one line per file and indented details.
func lintText(results []lintResult) {
	errorCount, warnCount := 0, 0
	for i := range results {
		res := &results[i]
		switch {
		case !res.Valid:
			fmt.Printf("✗ %s\n", res.File)
		case len(res.Warnings) > 0:
			fmt.Printf("⚠ %s (%d rules)\n", res.File, res.Rules)
		default:
			fmt.Printf("✓ %s (%d rules)\n", res.File, res.Rules)
		}
		for _, e := range res.Errors {
			fmt.Printf("    error: %s\n", e)
			errorCount++
		}
		for _, w := range res.Warnings {
			fmt.Printf("    warning: %s\n", w)
			warnCount++
		}
	}

	fmt.Printf("\nSummary: %d file(s), %d error(s), %d warning(s)\n",
		len(results), errorCount, warnCount)
}
