package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"emberwatch/cinder/pkg/cli"
	"emberwatch/cinder/pkg/rules"
	"emberwatch/cinder/pkg/rules/git"
	"emberwatch/cinder/pkg/rules/parser"
	"emberwatch/cinder/pkg/rules/store"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and manage rule sets",
}

var rulesShowFlags struct {
	rules  string
	format string
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective rule order",
	Long: `Show the rule set as the engine evaluates it: validated, sorted by
ascending priority, ties in file order.

Without --rules the source comes from the config file, including a
configured Git repository.

Examples:
  # The configured rule source
  emberwatch rules show

  # A specific file, as canonical JSON
  emberwatch rules show --rules rules.yaml --format json`,
	RunE: rulesShow,
}

var rulesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the rule repository once",
	Long: `Fetch the configured rule repository once and report what changed.

The same local checkout monitor mode polls is updated, and the synced
rules are loaded to prove they are valid.

Examples:
  emberwatch rules sync`,
	RunE: rulesSync,
}

var rulesInitFlags struct {
	out string
}

var rulesInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the starter rule pack",
	Long: `Write the built-in starter rule pack to a file.

The starter pack covers the classic wildfire escalations: extreme heat
with drought, dry lightning, high heat, elevated heat, and strong wind.
An existing file is never overwritten.

Examples:
  emberwatch rules init
  emberwatch rules init --out rules/wildfire.json`,
	RunE: rulesInit,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesSyncCmd)
	rulesCmd.AddCommand(rulesInitCmd)

	rulesShowCmd.Flags().StringVarP(&rulesShowFlags.rules, "rules", "r", "", "rule file (default: the configured source)")
	rulesShowCmd.Flags().StringVar(&rulesShowFlags.format, "format", "text", "output format (text, json)")

	rulesInitCmd.Flags().StringVarP(&rulesInitFlags.out, "out", "o", "rules.json", "output file")
}

func rulesShow(cmd *cobra.Command, args []string) error {
	if err := initLogging("warn", "text"); err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	format, err := cli.ParseFormat(rulesShowFlags.format)
	if err != nil || format == cli.FormatCSV {
		return cli.NewConfigError("format", fmt.Sprintf("unknown format %q (expected text or json)", rulesShowFlags.format))
	}

	ctx := context.Background()

	var src store.Source
	if rulesShowFlags.rules != "" {
		src = store.NewFileSource(rulesShowFlags.rules)
	} else {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
		}
		if cfg.Rules.Git.URL != "" {
			gitSrc, err := git.NewSource(git.Config{
				URL:  cfg.Rules.Git.URL,
				Ref:  cfg.Rules.Git.Ref,
				Path: cfg.Rules.Git.Path,
				Auth: gitAuthFromEnv(),
			}, slog.Default())
			if err != nil {
				return cli.NewConfigError("rules.git", err.Error())
			}
			src = gitSrc
		} else {
			src = store.NewFileSource(cfg.Rules.Path)
		}
	}

	st, err := store.Load(ctx, src)
	if err != nil {
		return cli.NewCommandError("rules", err)
	}

	if format == cli.FormatJSON {
		if err := parser.EncodeJSON(os.Stdout, st.Rules()); err != nil {
			return cli.NewCommandError("rules", err)
		}
		return nil
	}

	fmt.Printf("Effective rule order (%d rules from %s):\n\n", st.Len(), st.Source())
	for i, r := range st.Rules() {
		fmt.Printf("%2d. [p%d] %s → %s\n", i+1, r.Priority, r.ID, r.Result.Risk)
		if len(r.Conditions) == 0 {
			fmt.Println("        always matches")
		}
		for j := range r.Conditions {
			prefix := "        "
			if j > 0 {
				prefix = "    AND "
			}
			fmt.Printf("%s%s\n", prefix, conditionString(&r.Conditions[j]))
		}
		fmt.Printf("        action: %s\n", r.Result.Action)
	}
	return nil
}

func rulesSync(cmd *cobra.Command, args []string) error {
	if err := initLogging("warn", "text"); err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if cfg.Rules.Git.URL == "" {
		return cli.NewConfigError("rules.git.url", "no rule repository configured")
	}

	src, err := git.NewSource(git.Config{
		URL:  cfg.Rules.Git.URL,
		Ref:  cfg.Rules.Git.Ref,
		Path: cfg.Rules.Git.Path,
		Auth: gitAuthFromEnv(),
	}, slog.Default())
	if err != nil {
		return cli.NewConfigError("rules.git", err.Error())
	}

	ctx := context.Background()

	res, err := src.Sync(ctx)
	if err != nil {
		return cli.NewCommandError("rules", err)
	}
	switch {
	case res.Changed && res.FromSHA == "":
		fmt.Printf("✓ Checked out %.8s\n", res.ToSHA)
	case res.Changed:
		fmt.Printf("✓ Advanced %.8s → %.8s\n", res.FromSHA, res.ToSHA)
	default:
		fmt.Printf("✓ Already up to date at %.8s\n", res.ToSHA)
	}

	if commit, err := src.Commit(); err == nil {
		fmt.Printf("  %s <%s> %s\n", commit.Author, commit.Email, commit.When.Format("2006-01-02 15:04"))
		fmt.Printf("  %s\n", commit.Message)
	}

	// Prove the synced rules actually load before anyone relies on them.
	st, err := store.Load(ctx, src)
	if err != nil {
		return cli.NewCommandError("rules", err)
	}
	fmt.Printf("✓ %d rules valid\n", st.Len())
	return nil
}

func rulesInit(cmd *cobra.Command, args []string) error {
	starter := rules.Defaults()

	f, err := os.OpenFile(rulesInitFlags.out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return cli.NewCommandError("rules", fmt.Errorf("%s already exists, refusing to overwrite", rulesInitFlags.out))
		}
		return cli.NewCommandError("rules", err)
	}
	defer f.Close()

	if err := parser.EncodeJSON(f, starter); err != nil {
		return cli.NewCommandError("rules", err)
	}

	fmt.Printf("✓ Wrote %d starter rules to %s\n", len(starter), rulesInitFlags.out)
	return nil
}

// conditionString renders one condition the way rule authors write them.
func conditionString(c *rules.Condition) string {
	switch v := c.Value.(type) {
	case string:
		return fmt.Sprintf("%s %s %q", c.Field, c.Operator, v)
	default:
		return fmt.Sprintf("%s %s %v", c.Field, c.Operator, v)
	}
}
