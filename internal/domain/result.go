package domain

import (
	"fmt"
	"time"
)

// UnitResult holds the outcome of processing one source unit through the
// submit→poll→extract cycle. A failed unit carries its error; the batch
// continues regardless.
type UnitResult struct {
	Path       string
	Handle     ExecutionHandle
	Err        error
	HasChanges bool
	Written    bool
	Duration   time.Duration
}

// Successful reports whether the unit completed without error.
func (r UnitResult) Successful() bool {
	return r.Err == nil
}

// RunStats holds aggregate statistics for one batch run.
type RunStats struct {
	TotalUnits        int
	Successful        int
	Failed            int
	UnitsWithChanges  int
	FailedUnits       []string
	WallClockDuration time.Duration
}

// SuccessRate formats the success percentage as the run reports render it.
func (s RunStats) SuccessRate() string {
	if s.TotalUnits == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(s.Successful)/float64(s.TotalUnits)*100)
}

// AllFailed reports whether no unit at all could be processed.
func (s RunStats) AllFailed() bool {
	return s.TotalUnits > 0 && s.Failed >= s.TotalUnits
}

// BuildRunStats aggregates per-unit results into run statistics.
func BuildRunStats(results []UnitResult, wallClock time.Duration) RunStats {
	stats := RunStats{
		TotalUnits:        len(results),
		WallClockDuration: wallClock,
	}
	for _, r := range results {
		if r.Successful() {
			stats.Successful++
			if r.HasChanges {
				stats.UnitsWithChanges++
			}
		} else {
			stats.Failed++
			stats.FailedUnits = append(stats.FailedUnits, r.Path)
		}
	}
	return stats
}
