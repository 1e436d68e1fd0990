package domain

// ExecutionMeta holds the metadata of one remote execution.
type ExecutionMeta struct {
	Handle   ExecutionHandle
	Slug     string
	State    ExecutionState
	Start    string
	End      string
	Duration float64
}

// ExecutionSnapshot is the aggregate of the step records extracted from one
// completed execution. It grows monotonically: steps are only ever added,
// and re-adding a step replaces it with the result of the same idempotent
// extraction. A snapshot with no steps is valid.
type ExecutionSnapshot struct {
	Meta     ExecutionMeta
	Payloads map[StepKind]map[string]any
	Records  map[StepKind]StepRecord
}

// NewExecutionSnapshot creates an empty snapshot for the given execution.
func NewExecutionSnapshot(meta ExecutionMeta) *ExecutionSnapshot {
	return &ExecutionSnapshot{
		Meta:     meta,
		Payloads: make(map[StepKind]map[string]any),
		Records:  make(map[StepKind]StepRecord),
	}
}

// SetStep stores the extracted payload for a step and its typed record.
// An empty payload is stored as-is: "extraction produced nothing" is a
// recorded outcome, distinct from the step being absent entirely.
func (s *ExecutionSnapshot) SetStep(kind StepKind, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	s.Payloads[kind] = payload
	s.Records[kind] = MapStep(kind, payload)
}

// HasStep reports whether a payload was recorded for kind, empty or not.
func (s *ExecutionSnapshot) HasStep(kind StepKind) bool {
	_, ok := s.Payloads[kind]
	return ok
}

// Analysis returns the analyze step record, if present.
func (s *ExecutionSnapshot) Analysis() (AnalysisRecord, bool) {
	r, ok := s.Records[StepAnalyze].(AnalysisRecord)
	return r, ok
}

// Plan returns the plan step record, if present.
func (s *ExecutionSnapshot) Plan() (PlanRecord, bool) {
	r, ok := s.Records[StepPlan].(PlanRecord)
	return r, ok
}

// Refactor returns the refactor step record, if present.
func (s *ExecutionSnapshot) Refactor() (RefactorRecord, bool) {
	r, ok := s.Records[StepRefactor].(RefactorRecord)
	return r, ok
}

// Metrics returns the metrics step record, if present.
func (s *ExecutionSnapshot) Metrics() (MetricsRecord, bool) {
	r, ok := s.Records[StepMetrics].(MetricsRecord)
	return r, ok
}
