package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gomesmr/remod/internal/domain"
)

// RunReportFileName is the JSON summary written after a batch run.
const RunReportFileName = "run-report.json"

// runReport is the serialized form of a batch run summary.
type runReport struct {
	GeneratedAt string          `json:"generated_at"`
	Summary     runSummary      `json:"summary"`
	Units       []runReportUnit `json:"units"`
}

type runSummary struct {
	TotalUnits       int     `json:"total_units"`
	Successful       int     `json:"successful"`
	Failed           int     `json:"failed"`
	UnitsWithChanges int     `json:"units_with_changes"`
	SuccessRate      string  `json:"success_rate"`
	DurationSeconds  float64 `json:"duration_seconds"`
}

type runReportUnit struct {
	Path            string  `json:"path"`
	ExecutionID     string  `json:"execution_id,omitempty"`
	Status          string  `json:"status"`
	Error           string  `json:"error,omitempty"`
	HasChanges      bool    `json:"has_changes"`
	Written         bool    `json:"written"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// WriteRunReport persists the batch run summary as JSON under dir.
func WriteRunReport(dir string, stats domain.RunStats, results []domain.UnitResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	rep := runReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary: runSummary{
			TotalUnits:       stats.TotalUnits,
			Successful:       stats.Successful,
			Failed:           stats.Failed,
			UnitsWithChanges: stats.UnitsWithChanges,
			SuccessRate:      stats.SuccessRate(),
			DurationSeconds:  stats.WallClockDuration.Seconds(),
		},
		Units: make([]runReportUnit, 0, len(results)),
	}

	for _, r := range results {
		unit := runReportUnit{
			Path:            r.Path,
			ExecutionID:     r.Handle.String(),
			HasChanges:      r.HasChanges,
			Written:         r.Written,
			DurationSeconds: r.Duration.Seconds(),
		}
		if r.Successful() {
			unit.Status = "success"
		} else {
			unit.Status = "failed"
			unit.Error = r.Err.Error()
		}
		rep.Units = append(rep.Units, unit)
	}

	return writeJSONAtomic(filepath.Join(dir, RunReportFileName), rep)
}
