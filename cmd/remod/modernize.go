package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gomesmr/remod/internal/config"
	"github.com/gomesmr/remod/internal/domain"
	"github.com/gomesmr/remod/internal/report"
	"github.com/gomesmr/remod/internal/runner"
	"github.com/gomesmr/remod/internal/source"
	"github.com/gomesmr/remod/internal/stackspot"
	"github.com/gomesmr/remod/internal/terminal"
)

func newModernizeCmd() *cobra.Command {
	var (
		slug            string
		concurrency     int
		pollInterval    time.Duration
		timeout         time.Duration
		retries         int
		write           bool
		verbose         bool
		outputDir       string
		credentialsFile string
		sourceExt       string
		excludePatterns []string
		noConfig        bool
	)

	cmd := &cobra.Command{
		Use:   "modernize [path]",
		Short: "Submit each source file to a quick command and collect results",
		Long: `Walk a directory (or take a single file), submit every matching source
file as one quick-command execution, and poll all executions to
completion in parallel. With --write, modernized code replaces the
original files in place.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			if !terminal.IsStdoutTTY() {
				terminal.DisableColors()
			}
			logger := terminal.NewLogger()

			ctx, cancel := signalContext(logger)
			defer cancel()

			flagState := config.FlagState{
				SlugSet:            cmd.Flags().Changed("slug"),
				ConcurrencySet:     cmd.Flags().Changed("concurrency"),
				PollIntervalSet:    cmd.Flags().Changed("poll-interval"),
				TimeoutSet:         cmd.Flags().Changed("timeout"),
				RetriesSet:         cmd.Flags().Changed("retries"),
				SourceExtSet:       cmd.Flags().Changed("ext"),
				OutputDirSet:       cmd.Flags().Changed("output"),
				CredentialsFileSet: cmd.Flags().Changed("credentials"),
			}
			flagValues := config.ResolvedConfig{
				Slug:            slug,
				Concurrency:     concurrency,
				PollInterval:    pollInterval,
				Timeout:         timeout,
				Retries:         retries,
				SourceExt:       sourceExt,
				OutputDir:       outputDir,
				CredentialsFile: credentialsFile,
				ExcludePatterns: excludePatterns,
			}

			configDir := root
			if info, err := os.Stat(root); err != nil || !info.IsDir() {
				configDir = "."
			}
			resolved, err := loadResolvedConfig(configDir, noConfig, logger, flagState, flagValues)
			if err != nil {
				logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}

			creds, err := config.LoadCredentials(resolved.CredentialsFile)
			if err != nil {
				logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}

			collector, err := source.NewCollector(resolved.SourceExt, resolved.ExcludePatterns)
			if err != nil {
				logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}
			units, summary, err := collector.Collect(root)
			if err != nil {
				logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}
			if len(units) == 0 {
				logger.Logf(terminal.StyleWarning, "No %s files found under %s", resolved.SourceExt, root)
				return nil
			}
			logger.Logf(terminal.StyleInfo, "Found %d %s files %s(%d bytes)%s",
				summary.Units, resolved.SourceExt,
				terminal.Color(terminal.Dim), summary.TotalBytes, terminal.Color(terminal.Reset))

			client := stackspot.NewClient(stackspot.NewTransport(creds))

			r, err := runner.New(runner.Config{
				Slug:         resolved.Slug,
				Concurrency:  resolved.Concurrency,
				PollInterval: resolved.PollInterval,
				Timeout:      resolved.Timeout,
				Retries:      resolved.Retries,
				Write:        write,
				Verbose:      verbose,
			}, client, logger)
			if err != nil {
				logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}

			results, wallClock, err := r.Run(ctx, units)
			if ctx.Err() != nil {
				return exitCode(domain.ExitInterrupted)
			}
			if err != nil {
				logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}

			stats := domain.BuildRunStats(results, wallClock)
			if err := report.WriteRunReport(resolved.OutputDir, stats, results); err != nil {
				logger.Logf(terminal.StyleWarning, "Failed to write run report: %v", err)
			}

			printRunSummary(logger, stats, resolved.OutputDir)

			switch {
			case stats.Failed == 0:
				return nil
			case stats.AllFailed():
				return exitCode(domain.ExitError)
			default:
				return exitCode(domain.ExitPartial)
			}
		},
	}

	cmd.Flags().StringVarP(&slug, "slug", "s", "",
		"Quick command slug (default: modernize-legacy-java-code, env: REMOD_SLUG)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0,
		"Max concurrent executions (default: 4, env: REMOD_CONCURRENCY)")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0,
		"Delay between status polls (default: 10s, env: REMOD_POLL_INTERVAL)")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0,
		"Polling deadline per execution (default: 10m, env: REMOD_TIMEOUT)")
	cmd.Flags().IntVarP(&retries, "retries", "R", 0,
		"Retry failed units N times (default: 1, env: REMOD_RETRIES)")
	cmd.Flags().BoolVarP(&write, "write", "w", false,
		"Replace source files with the modernized result")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Log per-unit submission and polling detail")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "",
		"Directory for run reports (default: modernization-results, env: REMOD_OUTPUT_DIR)")
	cmd.Flags().StringVar(&credentialsFile, "credentials", "",
		"Path to JSON credentials file (default: credentials.json, env: REMOD_CREDENTIALS)")
	cmd.Flags().StringVar(&sourceExt, "ext", "",
		"Source file extension to collect (default: .java)")
	cmd.Flags().StringArrayVar(&excludePatterns, "exclude-pattern", nil,
		"Exclude files matching regex pattern (repeatable)")
	cmd.Flags().BoolVar(&noConfig, "no-config", false,
		"Skip loading .remod.yaml config file")

	return cmd
}

func printRunSummary(logger *terminal.Logger, stats domain.RunStats, outputDir string) {
	width := terminal.SummaryWidth()
	os.Stderr.WriteString(terminal.Ruler(width, "─") + "\n")

	logger.Logf(terminal.StyleInfo, "Processed %d units in %s",
		stats.TotalUnits, terminal.FormatDuration(stats.WallClockDuration))
	logger.Logf(terminal.StyleSuccess, "Succeeded: %d (%s), with changes: %d",
		stats.Successful, stats.SuccessRate(), stats.UnitsWithChanges)

	if stats.Failed > 0 {
		logger.Logf(terminal.StyleError, "Failed: %d", stats.Failed)
		for _, path := range stats.FailedUnits {
			logger.Logf(terminal.StyleDim, "  %s", path)
		}
	}

	logger.Logf(terminal.StyleDim, "Run report: %s/%s", outputDir, report.RunReportFileName)
}
