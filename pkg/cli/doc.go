/*
Package cli provides shared plumbing for the emberwatch commands.

Exit codes:

Errors map to process exit codes through ExitCode: nil is 0, ConfigError is
2, everything else (including CommandError) is 1.

	if err := cmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}

Output formatting:

Command results render as text, JSON, or CSV. Results implementing Renderer
(classification reports) keep their own layout in every format; other values
fall back to generic encoding:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, rep); err != nil {
		return err
	}

Progress reporting:

Long batches render a throttled progress bar on stderr:

	progress := cli.NewProgressReporter(nil)
	progress.Start(int64(len(alertSet)))
	for i := range alertSet {
		// classify
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal handling:

Commands derive their context from SignalContext so SIGINT and SIGTERM stop
watchers and servers cleanly:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
