package domain

import (
	"testing"
)

func TestMapStepDispatch(t *testing.T) {
	for _, kind := range AllStepKinds {
		record := MapStep(kind, map[string]any{})
		if record == nil {
			t.Fatalf("MapStep(%s) = nil", kind.Name())
		}
		if record.Kind() != kind {
			t.Errorf("record.Kind() = %v, want %v", record.Kind(), kind)
		}
	}
}

func TestMapStepUnknownKind(t *testing.T) {
	if record := MapStep(StepKind(99), map[string]any{}); record != nil {
		t.Errorf("unknown kind should map to nil, got %#v", record)
	}
}

func TestNewAnalysisRecordDefaults(t *testing.T) {
	r := NewAnalysisRecord(map[string]any{})
	if r.JavaVersion != "" || r.Summary != "" {
		t.Error("string fields should default to empty")
	}
	if r.Frameworks == nil || len(r.Frameworks) != 0 {
		t.Errorf("Frameworks = %v, want empty slice", r.Frameworks)
	}
	if r.ArchitectureNotes == nil {
		t.Error("ArchitectureNotes should default to empty map")
	}
}

func TestNewAnalysisRecordFull(t *testing.T) {
	r := NewAnalysisRecord(map[string]any{
		"javaVersion":       "8",
		"springBootVersion": "1.5.9",
		"frameworks": []any{
			map[string]any{
				"name":                "spring-boot",
				"currentVersion":      "1.5.9",
				"latestStableVersion": "3.3.0",
				"isOutdated":          true,
			},
		},
		"legacyPatterns": []any{
			map[string]any{"type": "field injection", "location": "A.java", "severity": "high"},
		},
		"codeSmells": []any{
			map[string]any{"type": "god class", "severity": "medium"},
		},
	})

	if r.JavaVersion != "8" {
		t.Errorf("JavaVersion = %q", r.JavaVersion)
	}
	if len(r.Frameworks) != 1 {
		t.Fatalf("Frameworks = %v", r.Frameworks)
	}
	fw := r.Frameworks[0]
	if fw.Name != "spring-boot" || !fw.IsOutdated || fw.LatestStableVersion != "3.3.0" {
		t.Errorf("framework = %+v", fw)
	}
	if len(r.LegacyPatterns) != 1 || r.LegacyPatterns[0].Severity != "high" {
		t.Errorf("LegacyPatterns = %v", r.LegacyPatterns)
	}
	if len(r.CodeSmells) != 1 || r.CodeSmells[0].Location != "" {
		t.Errorf("CodeSmells = %v", r.CodeSmells)
	}
}

func TestNewAnalysisRecordToleratesWrongShapes(t *testing.T) {
	r := NewAnalysisRecord(map[string]any{
		"javaVersion":    17,
		"frameworks":     "not a list",
		"legacyPatterns": []any{"not an object", map[string]any{"type": "x"}},
	})
	if r.JavaVersion != "" {
		t.Errorf("non-string javaVersion should default, got %q", r.JavaVersion)
	}
	if len(r.Frameworks) != 0 {
		t.Errorf("Frameworks = %v, want empty", r.Frameworks)
	}
	if len(r.LegacyPatterns) != 1 {
		t.Errorf("LegacyPatterns = %v, want the one valid entry", r.LegacyPatterns)
	}
}

func TestNewPlanRecord(t *testing.T) {
	r := NewPlanRecord(map[string]any{
		"strategy":          "incremental",
		"estimatedDuration": "2 weeks",
		"milestones": []any{
			map[string]any{"name": "M1", "completedSteps": []any{"analyze", "plan"}},
		},
		"recommendations": []any{"upgrade deps", 42, "add tests"},
	})

	if r.Strategy != "incremental" || r.EstimatedDuration != "2 weeks" {
		t.Errorf("record = %+v", r)
	}
	if len(r.Milestones) != 1 || len(r.Milestones[0].CompletedSteps) != 2 {
		t.Errorf("Milestones = %v", r.Milestones)
	}
	if len(r.Recommendations) != 2 {
		t.Errorf("non-string recommendation should be skipped: %v", r.Recommendations)
	}
}

func TestNewRefactorRecord(t *testing.T) {
	r := NewRefactorRecord(map[string]any{
		"stepId":            "step-3",
		"status":            "completed",
		"compilationStatus": "success",
		"testsRun":          true,
		"changes": []any{
			map[string]any{"file": "A.java", "description": "constructor injection"},
		},
	})

	if r.StepID != "step-3" || !r.TestsRun || r.CompilationStatus != "success" {
		t.Errorf("record = %+v", r)
	}
	if len(r.Changes) != 1 || r.Changes[0].File != "A.java" {
		t.Errorf("Changes = %v", r.Changes)
	}
}

func TestNewMetricsRecordVersions(t *testing.T) {
	r := NewMetricsRecord(map[string]any{
		"versions": map[string]any{
			"before": map[string]any{"java": "8"},
			"after":  map[string]any{"java": "17"},
		},
		"totals": map[string]any{"files_changed": float64(3)},
	})

	if r.VersionsBefore["java"] != "8" || r.VersionsAfter["java"] != "17" {
		t.Errorf("versions = %v / %v", r.VersionsBefore, r.VersionsAfter)
	}
	if r.Totals["files_changed"] != float64(3) {
		t.Errorf("Totals = %v", r.Totals)
	}
	if r.AgentsMetrics == nil {
		t.Error("absent agents_metrics should default to empty map")
	}
}
