package domain

// StepRecord is a typed view over the payload extracted from one step answer.
// Every field is optional and defaulted; constructing a record from an empty
// or malformed payload always succeeds.
type StepRecord interface {
	Kind() StepKind
}

// Framework describes one framework detected by the analysis step.
type Framework struct {
	Name                string
	CurrentVersion      string
	LatestStableVersion string
	IsOutdated          bool
}

// Issue describes one legacy pattern or code smell from the analysis step.
type Issue struct {
	Type     string
	Location string
	Severity string
}

// AnalysisRecord is the typed result of the analyze step.
type AnalysisRecord struct {
	Timestamp            string
	Repository           string
	JavaVersion          string
	SpringBootVersion    string
	Frameworks           []Framework
	OutdatedDependencies []map[string]any
	LegacyPatterns       []Issue
	CodeSmells           []Issue
	ArchitectureNotes    map[string]any
	Summary              string
}

// Kind implements StepRecord.
func (AnalysisRecord) Kind() StepKind { return StepAnalyze }

// Milestone is one named milestone of the modernization plan.
type Milestone struct {
	Name           string
	CompletedSteps []string
}

// PlanRecord is the typed result of the plan step.
type PlanRecord struct {
	Timestamp         string
	Strategy          string
	EstimatedDuration string
	Steps             []map[string]any
	Milestones        []Milestone
	Risks             []map[string]any
	Recommendations   []string
}

// Kind implements StepRecord.
func (PlanRecord) Kind() StepKind { return StepPlan }

// Change describes one file modification reported by the refactor step.
type Change struct {
	File        string
	Description string
}

// RefactorRecord is the typed result of the refactor step.
type RefactorRecord struct {
	Timestamp         string
	StepID            string
	Status            string
	Changes           []Change
	Issues            []map[string]any
	CompilationStatus string
	TestsRun          bool
	NextStep          string
}

// Kind implements StepRecord.
func (RefactorRecord) Kind() StepKind { return StepRefactor }

// MetricsRecord is the typed result of the metrics step.
type MetricsRecord struct {
	Metadata            map[string]any
	Execution           map[string]any
	AgentsMetrics       map[string]any
	Totals              map[string]any
	ModernizationImpact map[string]any
	QualityMetrics      map[string]any
	VersionsBefore      map[string]any
	VersionsAfter       map[string]any
}

// Kind implements StepRecord.
func (MetricsRecord) Kind() StepKind { return StepMetrics }

// recordBuilders is the single dispatch table mapping each step kind to its
// record constructor. Adding a step means adding one entry here.
var recordBuilders = map[StepKind]func(map[string]any) StepRecord{
	StepAnalyze:  func(p map[string]any) StepRecord { return NewAnalysisRecord(p) },
	StepPlan:     func(p map[string]any) StepRecord { return NewPlanRecord(p) },
	StepRefactor: func(p map[string]any) StepRecord { return NewRefactorRecord(p) },
	StepMetrics:  func(p map[string]any) StepRecord { return NewMetricsRecord(p) },
}

// MapStep converts an extracted payload into the typed record for kind.
// It never fails: missing or wrong-shaped fields come back defaulted.
func MapStep(kind StepKind, payload map[string]any) StepRecord {
	build, ok := recordBuilders[kind]
	if !ok {
		return nil
	}
	return build(payload)
}

// NewAnalysisRecord builds an AnalysisRecord from a payload.
func NewAnalysisRecord(p map[string]any) AnalysisRecord {
	return AnalysisRecord{
		Timestamp:            getString(p, "timestamp"),
		Repository:           getString(p, "repository"),
		JavaVersion:          getString(p, "javaVersion"),
		SpringBootVersion:    getString(p, "springBootVersion"),
		Frameworks:           getFrameworks(p, "frameworks"),
		OutdatedDependencies: getObjectList(p, "outdatedDependencies"),
		LegacyPatterns:       getIssues(p, "legacyPatterns"),
		CodeSmells:           getIssues(p, "codeSmells"),
		ArchitectureNotes:    getObject(p, "architectureNotes"),
		Summary:              getString(p, "summary"),
	}
}

// NewPlanRecord builds a PlanRecord from a payload.
func NewPlanRecord(p map[string]any) PlanRecord {
	return PlanRecord{
		Timestamp:         getString(p, "timestamp"),
		Strategy:          getString(p, "strategy"),
		EstimatedDuration: getString(p, "estimatedDuration"),
		Steps:             getObjectList(p, "steps"),
		Milestones:        getMilestones(p, "milestones"),
		Risks:             getObjectList(p, "risks"),
		Recommendations:   getStringList(p, "recommendations"),
	}
}

// NewRefactorRecord builds a RefactorRecord from a payload.
func NewRefactorRecord(p map[string]any) RefactorRecord {
	return RefactorRecord{
		Timestamp:         getString(p, "timestamp"),
		StepID:            getString(p, "stepId"),
		Status:            getString(p, "status"),
		Changes:           getChanges(p, "changes"),
		Issues:            getObjectList(p, "issues"),
		CompilationStatus: getString(p, "compilationStatus"),
		TestsRun:          getBool(p, "testsRun"),
		NextStep:          getString(p, "nextStep"),
	}
}

// NewMetricsRecord builds a MetricsRecord from a payload.
func NewMetricsRecord(p map[string]any) MetricsRecord {
	versions := getObject(p, "versions")
	return MetricsRecord{
		Metadata:            getObject(p, "metadata"),
		Execution:           getObject(p, "execution"),
		AgentsMetrics:       getObject(p, "agents_metrics"),
		Totals:              getObject(p, "totals"),
		ModernizationImpact: getObject(p, "modernization_impact"),
		QualityMetrics:      getObject(p, "quality_metrics"),
		VersionsBefore:      getObject(versions, "before"),
		VersionsAfter:       getObject(versions, "after"),
	}
}

// getString returns the string at key, or "" if absent or not a string.
func getString(p map[string]any, key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// getBool returns the bool at key, or false if absent or not a bool.
func getBool(p map[string]any, key string) bool {
	if b, ok := p[key].(bool); ok {
		return b
	}
	return false
}

// getObject returns the map at key, or an empty map if absent or malformed.
func getObject(p map[string]any, key string) map[string]any {
	if m, ok := p[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// getObjectList returns the list of objects at key, skipping entries that
// are not objects. Absent or malformed keys yield an empty slice.
func getObjectList(p map[string]any, key string) []map[string]any {
	raw, ok := p[key].([]any)
	if !ok {
		return []map[string]any{}
	}
	out := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// getStringList returns the list of strings at key, skipping non-strings.
func getStringList(p map[string]any, key string) []string {
	raw, ok := p[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getFrameworks(p map[string]any, key string) []Framework {
	items := getObjectList(p, key)
	out := make([]Framework, 0, len(items))
	for _, m := range items {
		out = append(out, Framework{
			Name:                getString(m, "name"),
			CurrentVersion:      getString(m, "currentVersion"),
			LatestStableVersion: getString(m, "latestStableVersion"),
			IsOutdated:          getBool(m, "isOutdated"),
		})
	}
	return out
}

func getIssues(p map[string]any, key string) []Issue {
	items := getObjectList(p, key)
	out := make([]Issue, 0, len(items))
	for _, m := range items {
		out = append(out, Issue{
			Type:     getString(m, "type"),
			Location: getString(m, "location"),
			Severity: getString(m, "severity"),
		})
	}
	return out
}

func getMilestones(p map[string]any, key string) []Milestone {
	items := getObjectList(p, key)
	out := make([]Milestone, 0, len(items))
	for _, m := range items {
		out = append(out, Milestone{
			Name:           getString(m, "name"),
			CompletedSteps: getStringList(m, "completedSteps"),
		})
	}
	return out
}

func getChanges(p map[string]any, key string) []Change {
	items := getObjectList(p, key)
	out := make([]Change, 0, len(items))
	for _, m := range items {
		out = append(out, Change{
			File:        getString(m, "file"),
			Description: getString(m, "description"),
		})
	}
	return out
}
