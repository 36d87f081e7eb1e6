package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"emberwatch/cinder/pkg/cli"
	"emberwatch/cinder/pkg/config"
	"emberwatch/cinder/pkg/engine"
	"emberwatch/cinder/pkg/history"
	"emberwatch/cinder/pkg/ingest"
	"emberwatch/cinder/pkg/ingest/checkpoint"
	"emberwatch/cinder/pkg/rules"
	"emberwatch/cinder/pkg/rules/git"
	"emberwatch/cinder/pkg/rules/store"
	"emberwatch/cinder/pkg/telemetry/health"
	"emberwatch/cinder/pkg/telemetry/metrics"
	"emberwatch/cinder/pkg/telemetry/tracing"
)

var runFlags struct {
	listen   string
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start monitor mode",
	Long: `Start monitor mode: watch the feed directory for new alert files,
classify every record against the active rule set, record the results to
history, and serve metrics and health probes.

The rule source (local file or Git repository) is loaded once at start-up
and the process refuses to start on a broken rule set. Later reloads that
fail keep the previous rules active.

Examples:
  # Start with default config
  emberwatch run

  # Start with custom config
  emberwatch run --config /etc/emberwatch/config.yaml

  # Override the telemetry listen address
  emberwatch run --listen 0.0.0.0:9464

  # Validate config without starting
  emberwatch run --dry-run`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listen, "listen", "l", "", "override telemetry listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listen != "" {
		cfg.Metrics.Listen = runFlags.listen
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}

	// Health probes are served unconditionally in monitor mode, so the
	// listen address is required even with metrics disabled.
	if cfg.Metrics.Listen == "" {
		return cli.NewConfigError("metrics.listen", "listen address is required in monitor mode")
	}

	if err := initLogging(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return cli.NewConfigError("logging", err.Error())
	}
	logger := slog.Default()

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	// Rule source: Git repository when a URL is configured, local file
	// otherwise. Credentials come from the environment, never the config
	// file.
	var (
		src    store.Source
		gitSrc *git.Source
	)
	if cfg.Rules.Git.URL != "" {
		gitSrc, err = git.NewSource(git.Config{
			URL:  cfg.Rules.Git.URL,
			Ref:  cfg.Rules.Git.Ref,
			Path: cfg.Rules.Git.Path,
			Auth: gitAuthFromEnv(),
		}, logger)
		if err != nil {
			return cli.NewConfigError("rules.git", err.Error())
		}
		src = gitSrc
	} else {
		src = store.NewFileSource(cfg.Rules.Path)
	}

	// Monitor mode never starts on a broken rule set.
	st, err := store.Load(ctx, src)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Printf("✓ Rules loaded (%d rules from %s)\n", st.Len(), st.Source())

	m := metrics.New(metrics.Config{
		Enabled:   cfg.Metrics.Enabled,
		Namespace: cfg.Metrics.Namespace,
	}, nil)
	m.SetActiveRules(st.Len())

	engineConfig := engine.DefaultConfig().
		WithDefaultResult(rules.Result{
			Risk:   cfg.Engine.DefaultRisk,
			Action: cfg.Engine.DefaultAction,
		}).
		WithMetrics(m)

	eng, err := engine.New(st, engineConfig, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	// Tracing is driven by the standard OTEL_* environment variables; it
	// is a no-op without a collector endpoint.
	tracer, err := tracing.New(tracing.FromEnv("emberwatch", Version))
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer tracer.Shutdown(context.Background())

	if err := ensureDataDirs(cfg); err != nil {
		return cli.NewCommandError("run", err)
	}

	// Classification history. An unavailable store degrades monitor mode
	// to classification-only instead of refusing to start.
	var hist history.Store
	if cfg.History.Enabled {
		histConfig := history.DefaultSQLiteConfig()
		histConfig.Path = cfg.History.Path

		sqlStore, err := history.NewSQLiteStore(histConfig)
		if err != nil {
			slog.Warn("history store unavailable, running classification-only",
				"path", cfg.History.Path,
				"error", err,
			)
		} else {
			hist = sqlStore
			defer sqlStore.Close()

			pruner, err := history.NewPruner(hist, &history.PrunerConfig{
				RetentionDays: cfg.History.RetentionDays,
				Schedule:      cfg.History.PruneSchedule,
			})
			if err != nil {
				return cli.NewConfigError("history", err.Error())
			}
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("retention scheduler started", "next_pruning", next)
				}
			}
			fmt.Println("✓ History store initialized")
		}
	}

	ckpt, err := checkpoint.NewSQLiteStore(cfg.Ingest.CheckpointPath)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("opening checkpoint store: %w", err))
	}
	defer ckpt.Close()

	proc, err := ingest.NewProcessor(eng, ckpt, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	if hist != nil {
		proc = proc.WithHistory(hist)
	}

	onFile := func(path string) {
		fileCtx, span := tracer.Start(ctx, "ingest.file")
		defer span.End()
		tracing.SetFileAttribute(span, path)

		res, err := proc.ProcessFile(fileCtx, path)
		if err != nil {
			tracing.SetError(span, err)
			slog.Error("feed file processing failed", "path", path, "error", err)
			return
		}
		if res.Skipped {
			return
		}
		tracing.SetBatchAttributes(span, res.Records, res.Actionable)
	}

	feedWatcher, err := ingest.NewFeedWatcher(ingest.DefaultFeedWatcherConfig(cfg.Ingest.Dir), logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	// Catch up on files that arrived while the process was down. Already
	// checkpointed files are skipped by fingerprint.
	pending, err := feedWatcher.Scan()
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	for _, path := range pending {
		onFile(path)
	}

	// Rule reloading: both the file watcher and the git poller funnel into
	// the same swap. A failed load keeps the previous store active.
	reload := func(rctx context.Context) error {
		newStore, err := store.Load(rctx, src)
		if err != nil {
			m.RecordReload(metrics.ReloadOutcomeFailure)
			return err
		}
		m.RecordReload(metrics.ReloadOutcomeSuccess)

		if eng.Store().Fingerprint() == newStore.Fingerprint() {
			slog.Debug("rule set unchanged, swap skipped")
			return nil
		}

		eng.Swap(newStore)
		m.SetActiveRules(newStore.Len())
		slog.Info("rule set reloaded",
			"rules", newStore.Len(),
			"source", newStore.Source(),
		)
		return nil
	}

	switch {
	case gitSrc != nil:
		poller := git.NewPoller(gitSrc, cfg.Rules.Git.Interval, reload, logger)
		if err := poller.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer poller.Stop()
		fmt.Printf("✓ Rule repository polling every %s\n", cfg.Rules.Git.Interval)

	case cfg.Rules.Watch:
		watchConfig := store.DefaultWatcherConfig()
		watchConfig.Path = cfg.Rules.Path

		ruleWatcher, err := store.NewWatcher(watchConfig, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			if err := ruleWatcher.Watch(ctx, func() error { return reload(ctx) }); err != nil {
				slog.Error("rule watcher stopped", "error", err)
			}
		}()
		defer ruleWatcher.Stop()
		fmt.Printf("✓ Watching rule source %s\n", cfg.Rules.Path)
	}

	checker := health.New(0)
	checker.RegisterCheck("rules", func(context.Context) error {
		if eng.Store() == nil {
			return fmt.Errorf("no rule store active")
		}
		return nil
	})
	if hist != nil {
		checker.RegisterCheck("history", func(hctx context.Context) error {
			_, err := hist.Stats(hctx)
			return err
		})
	}

	mux := http.NewServeMux()
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", m.Handler())
	}
	health.Register(mux, checker, Version, GitCommit, BuildDate)

	httpServer := &http.Server{
		Addr:              cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 2)
	go func() {
		slog.Info("telemetry server starting",
			"address", cfg.Metrics.Listen,
			"metrics_enabled", cfg.Metrics.Enabled,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("telemetry server: %w", err)
		}
	}()

	go func() {
		if err := feedWatcher.Watch(ctx, onFile); err != nil {
			errChan <- fmt.Errorf("feed watcher: %w", err)
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Watching feed directory %s\n", cfg.Ingest.Dir)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Metrics.Listen)
	if cfg.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Metrics.Listen)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case <-ctx.Done():
		fmt.Println("\nShutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry server shutdown failed", "error", err)
		}
		if err := feedWatcher.Stop(); err != nil {
			slog.Error("feed watcher shutdown failed", "error", err)
		}

		fmt.Println("✓ Stopped")
		return nil
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Emberwatch Cinder v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	if cfg.Rules.Git.URL != "" {
		slog.Debug("rule source",
			"mode", "git",
			"url", cfg.Rules.Git.URL,
			"ref", cfg.Rules.Git.Ref,
		)
	} else {
		slog.Debug("rule source",
			"mode", "file",
			"path", cfg.Rules.Path,
			"watch", cfg.Rules.Watch,
		)
	}
	if cfg.History.Enabled {
		slog.Debug("history enabled", "path", cfg.History.Path)
	}
}

// gitAuthFromEnv reads rule repository credentials from the environment
// so they never land in a committable config file.
func gitAuthFromEnv() git.AuthConfig {
	return git.AuthConfig{
		Token:         os.Getenv("EMBERWATCH_RULES_GIT_TOKEN"),
		SSHKeyPath:    os.Getenv("EMBERWATCH_RULES_GIT_SSH_KEY"),
		SSHPassphrase: os.Getenv("EMBERWATCH_RULES_GIT_SSH_PASSPHRASE"),
	}
}

// ensureDataDirs creates the directories monitor mode writes into.
func ensureDataDirs(cfg *config.Config) error {
	dirs := []string{
		cfg.Ingest.Dir,
		filepath.Dir(cfg.Ingest.CheckpointPath),
	}
	if cfg.History.Enabled {
		dirs = append(dirs, filepath.Dir(cfg.History.Path))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory %q: %w", dir, err)
		}
	}
	return nil
}
