// Package report aggregates extracted step results and renders and persists
// modernization reports.
package report

import (
	"sync"

	"github.com/gomesmr/remod/internal/domain"
	"github.com/gomesmr/remod/internal/extract"
	"github.com/gomesmr/remod/internal/stackspot"
)

// Aggregator collects step payloads from a completed execution into a
// snapshot. Safe for concurrent use.
type Aggregator struct {
	mu       sync.Mutex
	snapshot *domain.ExecutionSnapshot
}

// NewAggregator creates an aggregator for the given execution metadata.
func NewAggregator(meta domain.ExecutionMeta) *Aggregator {
	return &Aggregator{snapshot: domain.NewExecutionSnapshot(meta)}
}

// AddStep extracts the JSON payload from a step answer and records it.
// Extraction that produces nothing still records an empty payload so the
// report can show the step ran.
func (a *Aggregator) AddStep(kind domain.StepKind, answer string) {
	payload, _ := extract.Payload(answer)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshot.SetStep(kind, payload)
}

// AddExecution walks a callback execution and records every step whose
// step_name this tool consumes. Returns the number of steps recorded.
func (a *Aggregator) AddExecution(exec *stackspot.Execution) int {
	recorded := 0
	for _, step := range exec.Steps {
		kind, ok := domain.StepKindForRemoteName(step.StepName)
		if !ok {
			continue
		}
		a.AddStep(kind, step.StepResult.Answer)
		recorded++
	}
	return recorded
}

// Snapshot returns the aggregate built so far. The returned snapshot must
// not be mutated while the aggregator is still receiving steps.
func (a *Aggregator) Snapshot() *domain.ExecutionSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot
}
