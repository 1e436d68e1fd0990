package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomesmr/remod/internal/domain"
)

// severitySymbols maps issue severities to the markers used in reports.
var severitySymbols = map[string]string{
	"high":   "🔴",
	"medium": "🟡",
	"low":    "🟢",
}

const neutralSymbol = "⚪"

// SeveritySymbol returns the marker for a severity, case-insensitively.
// Unknown or empty severities get the neutral marker.
func SeveritySymbol(severity string) string {
	if sym, ok := severitySymbols[strings.ToLower(severity)]; ok {
		return sym
	}
	return neutralSymbol
}

// Render produces the modernization report as markdown. Output is
// deterministic for a given snapshot.
func Render(snapshot *domain.ExecutionSnapshot) string {
	var b strings.Builder

	b.WriteString("# Modernization Report\n\n")
	renderMeta(&b, snapshot.Meta)

	if analysis, ok := snapshot.Analysis(); ok {
		renderAnalysis(&b, analysis)
	}
	if plan, ok := snapshot.Plan(); ok {
		renderPlan(&b, plan)
	}
	if refactor, ok := snapshot.Refactor(); ok {
		renderRefactor(&b, refactor)
	}
	if metrics, ok := snapshot.Metrics(); ok {
		renderMetrics(&b, metrics)
	}

	return b.String()
}

func renderMeta(b *strings.Builder, meta domain.ExecutionMeta) {
	b.WriteString("## Execution\n\n")
	fmt.Fprintf(b, "- ID: %s\n", meta.Handle)
	if meta.Slug != "" {
		fmt.Fprintf(b, "- Command: %s\n", meta.Slug)
	}
	fmt.Fprintf(b, "- Status: %s\n", meta.State)
	if meta.Start != "" {
		fmt.Fprintf(b, "- Started: %s\n", meta.Start)
	}
	if meta.End != "" {
		fmt.Fprintf(b, "- Finished: %s\n", meta.End)
	}
	if meta.Duration > 0 {
		fmt.Fprintf(b, "- Duration: %.1fs\n", meta.Duration)
	}
	b.WriteString("\n")
}

func renderAnalysis(b *strings.Builder, r domain.AnalysisRecord) {
	b.WriteString("## Analysis\n\n")
	if r.Repository != "" {
		fmt.Fprintf(b, "- Repository: %s\n", r.Repository)
	}
	if r.JavaVersion != "" {
		fmt.Fprintf(b, "- Java version: %s\n", r.JavaVersion)
	}
	if r.SpringBootVersion != "" {
		fmt.Fprintf(b, "- Spring Boot version: %s\n", r.SpringBootVersion)
	}
	b.WriteString("\n")

	if len(r.Frameworks) > 0 {
		b.WriteString("### Frameworks\n\n")
		for _, fw := range r.Frameworks {
			marker := "🟢"
			if fw.IsOutdated {
				marker = "🔴"
			}
			fmt.Fprintf(b, "- %s %s %s", marker, fw.Name, fw.CurrentVersion)
			if fw.IsOutdated && fw.LatestStableVersion != "" {
				fmt.Fprintf(b, " (latest: %s)", fw.LatestStableVersion)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	renderIssues(b, "Legacy Patterns", r.LegacyPatterns)
	renderIssues(b, "Code Smells", r.CodeSmells)

	if r.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", r.Summary)
	}
}

func renderIssues(b *strings.Builder, title string, issues []domain.Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, issue := range issues {
		fmt.Fprintf(b, "- %s %s", SeveritySymbol(issue.Severity), issue.Type)
		if issue.Location != "" {
			fmt.Fprintf(b, " (%s)", issue.Location)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func renderPlan(b *strings.Builder, r domain.PlanRecord) {
	b.WriteString("## Plan\n\n")
	if r.Strategy != "" {
		fmt.Fprintf(b, "- Strategy: %s\n", r.Strategy)
	}
	if r.EstimatedDuration != "" {
		fmt.Fprintf(b, "- Estimated duration: %s\n", r.EstimatedDuration)
	}
	b.WriteString("\n")

	if len(r.Milestones) > 0 {
		b.WriteString("### Milestones\n\n")
		for _, m := range r.Milestones {
			fmt.Fprintf(b, "- %s", m.Name)
			if len(m.CompletedSteps) > 0 {
				fmt.Fprintf(b, " (%s)", strings.Join(m.CompletedSteps, ", "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("### Recommendations\n\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}
}

func renderRefactor(b *strings.Builder, r domain.RefactorRecord) {
	b.WriteString("## Refactoring\n\n")
	if r.Status != "" {
		fmt.Fprintf(b, "- Status: %s\n", r.Status)
	}
	if r.CompilationStatus != "" {
		fmt.Fprintf(b, "- Compilation: %s\n", r.CompilationStatus)
	}
	fmt.Fprintf(b, "- Tests run: %t\n", r.TestsRun)
	b.WriteString("\n")

	if len(r.Changes) > 0 {
		b.WriteString("### Changes\n\n")
		for _, c := range r.Changes {
			fmt.Fprintf(b, "- %s", c.File)
			if c.Description != "" {
				fmt.Fprintf(b, ": %s", c.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

func renderMetrics(b *strings.Builder, r domain.MetricsRecord) {
	b.WriteString("## Metrics\n\n")

	if len(r.VersionsBefore) > 0 || len(r.VersionsAfter) > 0 {
		b.WriteString("### Versions\n\n")
		keys := versionKeys(r.VersionsBefore, r.VersionsAfter)
		for _, key := range keys {
			fmt.Fprintf(b, "- %s: %v → %v\n", key, valueOrDash(r.VersionsBefore, key), valueOrDash(r.VersionsAfter, key))
		}
		b.WriteString("\n")
	}

	renderMetricMap(b, "Totals", r.Totals)
	renderMetricMap(b, "Modernization Impact", r.ModernizationImpact)
	renderMetricMap(b, "Quality", r.QualityMetrics)
}

func renderMetricMap(b *strings.Builder, title string, m map[string]any) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, key := range sortedKeys(m) {
		fmt.Fprintf(b, "- %s: %v\n", key, m[key])
	}
	b.WriteString("\n")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func versionKeys(before, after map[string]any) []string {
	seen := map[string]bool{}
	var keys []string
	for _, m := range []map[string]any{before, after} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func valueOrDash(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	return "-"
}
