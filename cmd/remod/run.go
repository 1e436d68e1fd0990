package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gomesmr/remod/internal/config"
	"github.com/gomesmr/remod/internal/domain"
	"github.com/gomesmr/remod/internal/report"
	"github.com/gomesmr/remod/internal/stackspot"
	"github.com/gomesmr/remod/internal/terminal"
)

func newRunCmd() *cobra.Command {
	var (
		slug            string
		pollInterval    time.Duration
		timeout         time.Duration
		outputDir       string
		credentialsFile string
		conversationID  string
		noConfig        bool
	)

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run the full modernization workflow for one file",
		Long: `Dispatch the multi-step modernization workflow (analyze, plan, refactor,
metrics) for a single source file, poll it to completion, and write the
per-step artifacts and combined report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if !terminal.IsStdoutTTY() {
				terminal.DisableColors()
			}
			logger := terminal.NewLogger()

			ctx, cancel := signalContext(logger)
			defer cancel()

			flagState := config.FlagState{
				SlugSet:            cmd.Flags().Changed("slug"),
				PollIntervalSet:    cmd.Flags().Changed("poll-interval"),
				TimeoutSet:         cmd.Flags().Changed("timeout"),
				OutputDirSet:       cmd.Flags().Changed("output"),
				CredentialsFileSet: cmd.Flags().Changed("credentials"),
			}
			flagValues := config.ResolvedConfig{
				Slug:            slug,
				PollInterval:    pollInterval,
				Timeout:         timeout,
				OutputDir:       outputDir,
				CredentialsFile: credentialsFile,
			}

			resolved, err := loadResolvedConfig(filepath.Dir(path), noConfig, logger, flagState, flagValues)
			if err != nil {
				logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}

			creds, err := config.LoadCredentials(resolved.CredentialsFile)
			if err != nil {
				logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}

			content, err := os.ReadFile(path)
			if err != nil {
				logger.Logf(terminal.StyleError, "Failed to read %s: %v", path, err)
				return exitCode(domain.ExitError)
			}

			if conversationID == "" {
				conversationID = uuid.NewString()
			}

			client := stackspot.NewClient(stackspot.NewTransport(creds))

			logger.Logf(terminal.StyleInfo, "Dispatching workflow %s%s%s for %s",
				terminal.Color(terminal.Bold), resolved.Slug, terminal.Color(terminal.Reset), path)
			logger.Logf(terminal.StyleDim, "Conversation: %s", conversationID)

			handle, err := client.DispatchWorkflow(ctx, resolved.Slug, string(content), conversationID)
			if err != nil {
				logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}
			logger.Logf(terminal.StyleInfo, "Execution %s", handle)

			spinner := terminal.NewPhaseSpinner("Waiting for workflow")
			spinnerCtx, spinnerCancel := context.WithCancel(context.Background())
			spinnerDone := make(chan struct{})
			go func() {
				spinner.Run(spinnerCtx)
				close(spinnerDone)
			}()

			var lastState domain.ExecutionState
			execution, err := client.PollWorkflowUntilTerminal(ctx, handle, stackspot.PollOptions{
				Interval: resolved.PollInterval,
				Deadline: resolved.Timeout,
				Observer: func(state domain.ExecutionState) {
					if state != lastState {
						logger.Logf(terminal.StyleDim, "Status: %s", state)
						lastState = state
					}
				},
			})

			spinnerCancel()
			<-spinnerDone

			if ctx.Err() != nil {
				return exitCode(domain.ExitInterrupted)
			}
			if err != nil {
				logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}

			agg := report.NewAggregator(execution.Meta())
			recorded := agg.AddExecution(execution)
			logger.Logf(terminal.StyleSuccess, "Workflow complete, %d steps extracted", recorded)

			if err := report.Persist(agg.Snapshot(), resolved.OutputDir); err != nil {
				logger.Logf(terminal.StyleError, "Failed to write artifacts: %v", err)
				return exitCode(domain.ExitError)
			}
			logger.Logf(terminal.StyleInfo, "Report: %s/%s", resolved.OutputDir, report.ReportFileName)

			return nil
		},
	}

	cmd.Flags().StringVarP(&slug, "slug", "s", "",
		"Quick command slug to execute (default: modernize-legacy-java-code, env: REMOD_SLUG)")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0,
		"Delay between status polls (default: 10s, env: REMOD_POLL_INTERVAL)")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0,
		"Polling deadline (default: 10m, env: REMOD_TIMEOUT)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "",
		"Directory for artifacts (default: modernization-results, env: REMOD_OUTPUT_DIR)")
	cmd.Flags().StringVar(&credentialsFile, "credentials", "",
		"Path to JSON credentials file (default: credentials.json, env: REMOD_CREDENTIALS)")
	cmd.Flags().StringVar(&conversationID, "conversation", "",
		"Conversation id for the workflow (default: random)")
	cmd.Flags().BoolVar(&noConfig, "no-config", false,
		"Skip loading .remod.yaml config file")

	return cmd
}
