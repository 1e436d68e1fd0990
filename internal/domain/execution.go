// Package domain provides core types for the modernization orchestrator.
package domain

// ExecutionHandle is the opaque identifier the remote service assigns to a
// submitted execution. It is the polling key for the lifetime of one job and
// is stable across retries.
type ExecutionHandle string

// String returns the handle as a plain string.
func (h ExecutionHandle) String() string {
	return string(h)
}

// ExecutionState is the lifecycle state of a remote execution.
type ExecutionState string

const (
	// StatePending means the execution has been accepted but not started.
	// An execution the service has not indexed yet (404 on status) is
	// reported as pending too.
	StatePending ExecutionState = "PENDING"
	// StateRunning means the execution is in progress.
	StateRunning ExecutionState = "RUNNING"
	// StateCompleted means the execution finished and produced a result.
	StateCompleted ExecutionState = "COMPLETED"
	// StateFailed means the remote service reported a failure.
	StateFailed ExecutionState = "FAILED"
	// StateCancelled means the remote service cancelled the execution.
	StateCancelled ExecutionState = "CANCELLED"
	// StateTimedOut is synthesized locally when the polling deadline
	// elapses before the service reports a terminal state.
	StateTimedOut ExecutionState = "TIMED_OUT"
)

// Terminal reports whether no further state transition can occur.
func (s ExecutionState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled, StateTimedOut:
		return true
	}
	return false
}

// StepKind identifies one named phase of the remote modernization workflow.
type StepKind int

const (
	StepAnalyze StepKind = iota
	StepPlan
	StepRefactor
	StepMetrics
)

// AllStepKinds lists every workflow step in report order.
var AllStepKinds = []StepKind{StepAnalyze, StepPlan, StepRefactor, StepMetrics}

var stepNames = map[StepKind]string{
	StepAnalyze:  "analyze",
	StepPlan:     "plan",
	StepRefactor: "refactor",
	StepMetrics:  "metrics",
}

// remoteStepNames maps each kind to the step_name the callback payload uses.
var remoteStepNames = map[StepKind]string{
	StepAnalyze:  "step-analyze",
	StepPlan:     "step-plan",
	StepRefactor: "step-refactor",
	StepMetrics:  "step-metrics",
}

// Name returns the short step name used for artifact files and report keys.
func (k StepKind) Name() string {
	if n, ok := stepNames[k]; ok {
		return n
	}
	return "unknown"
}

// RemoteName returns the step_name the callback payload uses for this kind.
func (k StepKind) RemoteName() string {
	if n, ok := remoteStepNames[k]; ok {
		return n
	}
	return ""
}

// StepKindForRemoteName resolves a callback step_name to its kind.
// The second return is false for step names this tool does not consume.
func StepKindForRemoteName(name string) (StepKind, bool) {
	for k, n := range remoteStepNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}
