package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gomesmr/remod/internal/domain"
	"github.com/gomesmr/remod/internal/report"
	"github.com/gomesmr/remod/internal/stackspot"
	"github.com/gomesmr/remod/internal/terminal"
)

func newReportCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "report <callback.json>",
		Short: "Render a report from a saved callback payload",
		Long: `Read a callback payload saved from a previous execution, extract the
step answers, and render the modernization report without contacting
the service. The report goes to stdout unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !terminal.IsStdoutTTY() {
				terminal.DisableColors()
			}
			logger := terminal.NewLogger()

			data, err := os.ReadFile(args[0])
			if err != nil {
				logger.Logf(terminal.StyleError, "Failed to read %s: %v", args[0], err)
				return exitCode(domain.ExitError)
			}

			var execution stackspot.Execution
			if err := json.Unmarshal(data, &execution); err != nil {
				logger.Logf(terminal.StyleError, "Invalid callback payload: %v", err)
				return exitCode(domain.ExitError)
			}

			agg := report.NewAggregator(execution.Meta())
			recorded := agg.AddExecution(&execution)
			if recorded == 0 {
				logger.Log("Payload carries no recognizable steps", terminal.StyleWarning)
			}

			if outputDir != "" {
				if err := report.Persist(agg.Snapshot(), outputDir); err != nil {
					logger.Logf(terminal.StyleError, "Failed to write artifacts: %v", err)
					return exitCode(domain.ExitError)
				}
				logger.Logf(terminal.StyleInfo, "Report: %s/%s", outputDir, report.ReportFileName)
				return nil
			}

			fmt.Fprint(os.Stdout, report.Render(agg.Snapshot()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "",
		"Write artifacts to this directory instead of stdout")

	return cmd
}
