package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir
}

func TestLoadFromDirMissing(t *testing.T) {
	result, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Config == nil {
		t.Fatal("expected empty config, got nil")
	}
	if result.Config.Slug != nil {
		t.Error("expected nil Slug for missing config file")
	}
}

func TestLoadFromDirFullConfig(t *testing.T) {
	dir := writeConfig(t, `
slug: my-command
concurrency: 8
poll_interval: 5s
timeout: 20m
retries: 3
source_ext: .kt
output_dir: out
credentials_file: creds.json
exclude_patterns:
  - "generated/.*"
`)

	result, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := result.Config
	if *cfg.Slug != "my-command" {
		t.Errorf("Slug = %q, want %q", *cfg.Slug, "my-command")
	}
	if *cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", *cfg.Concurrency)
	}
	if cfg.PollInterval.AsDuration() != 5*time.Second {
		t.Errorf("PollInterval = %s, want 5s", cfg.PollInterval.AsDuration())
	}
	if cfg.Timeout.AsDuration() != 20*time.Minute {
		t.Errorf("Timeout = %s, want 20m", cfg.Timeout.AsDuration())
	}
	if *cfg.Retries != 3 {
		t.Errorf("Retries = %d, want 3", *cfg.Retries)
	}
	if *cfg.SourceExt != ".kt" {
		t.Errorf("SourceExt = %q, want .kt", *cfg.SourceExt)
	}
	if len(cfg.ExcludePatterns) != 1 || cfg.ExcludePatterns[0] != "generated/.*" {
		t.Errorf("ExcludePatterns = %v", cfg.ExcludePatterns)
	}
}

func TestLoadNumericDuration(t *testing.T) {
	dir := writeConfig(t, "poll_interval: 30\n")
	result, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Config.PollInterval.AsDuration(); got != 30*time.Second {
		t.Errorf("PollInterval = %s, want 30s", got)
	}
}

func TestLoadUnknownKeyWarning(t *testing.T) {
	dir := writeConfig(t, "slug: x\nconcurency: 4\n")
	result, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(result.Warnings), result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], "concurency") {
		t.Errorf("warning should name the unknown key: %q", result.Warnings[0])
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "negative concurrency",
			content: "concurrency: -1\n",
			wantErr: "concurrency",
		},
		{
			name:    "negative retries",
			content: "retries: -2\n",
			wantErr: "retries",
		},
		{
			name:    "zero timeout",
			content: "timeout: 0s\n",
			wantErr: "timeout",
		},
		{
			name:    "bad regex",
			content: "exclude_patterns:\n  - \"[unclosed\"\n",
			wantErr: "invalid regex",
		},
		{
			name:    "bad duration string",
			content: "poll_interval: soon\n",
			wantErr: "invalid duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.content)
			_, err := LoadFromDir(dir)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolvePrecedence(t *testing.T) {
	slug := "from-config"
	concurrency := 2
	cfg := &Config{Slug: &slug, Concurrency: &concurrency}

	env := EnvState{
		Slug:        "from-env",
		SlugSet:     true,
		Retries:     5,
		RetriesSet:  true,
		Timeout:     time.Minute,
		TimeoutSet:  true,
	}

	flags := FlagState{SlugSet: true}
	flagValues := ResolvedConfig{Slug: "from-flag"}

	got := Resolve(cfg, env, flags, flagValues)

	if got.Slug != "from-flag" {
		t.Errorf("Slug = %q, want flag value", got.Slug)
	}
	if got.Retries != 5 {
		t.Errorf("Retries = %d, want env value 5", got.Retries)
	}
	if got.Timeout != time.Minute {
		t.Errorf("Timeout = %s, want env value 1m", got.Timeout)
	}
	if got.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want config value 2", got.Concurrency)
	}
	if got.PollInterval != Defaults.PollInterval {
		t.Errorf("PollInterval = %s, want default", got.PollInterval)
	}
	if got.OutputDir != Defaults.OutputDir {
		t.Errorf("OutputDir = %q, want default", got.OutputDir)
	}
}

func TestResolveDefaultsOnly(t *testing.T) {
	got := Resolve(&Config{}, EnvState{}, FlagState{}, ResolvedConfig{})
	if !reflect.DeepEqual(got, Defaults) {
		t.Errorf("Resolve with no overrides = %+v, want defaults", got)
	}
}

func TestLoadEnvState(t *testing.T) {
	t.Setenv("REMOD_SLUG", "env-slug")
	t.Setenv("REMOD_CONCURRENCY", "16")
	t.Setenv("REMOD_POLL_INTERVAL", "45")
	t.Setenv("REMOD_TIMEOUT", "2m")

	state := LoadEnvState()
	if !state.SlugSet || state.Slug != "env-slug" {
		t.Errorf("Slug = %q set=%v", state.Slug, state.SlugSet)
	}
	if !state.ConcurrencySet || state.Concurrency != 16 {
		t.Errorf("Concurrency = %d set=%v", state.Concurrency, state.ConcurrencySet)
	}
	if !state.PollIntervalSet || state.PollInterval != 45*time.Second {
		t.Errorf("PollInterval = %s set=%v", state.PollInterval, state.PollIntervalSet)
	}
	if !state.TimeoutSet || state.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %s set=%v", state.Timeout, state.TimeoutSet)
	}
	if state.RetriesSet {
		t.Error("RetriesSet should be false when REMOD_RETRIES is unset")
	}
}
