package terminal

import (
	"strings"
	"testing"
	"time"
)

func TestWrapText_BasicWrapping(t *testing.T) {
	text := "This is a longer sentence that needs to be wrapped at the boundary"
	result := WrapText(text, 30, "")

	lines := strings.Split(result, "\n")
	for i, line := range lines {
		if len(line) > 30 {
			t.Errorf("line %d exceeds width 30: len=%d, content=%q", i, len(line), line)
		}
	}
}

func TestWrapText_WithIndent(t *testing.T) {
	text := "First Second Third"
	indent := ">>> "
	result := WrapText(text, 15, indent)

	lines := strings.Split(result, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, indent) {
			t.Errorf("line %d missing indent prefix: %q", i, line)
		}
	}
}

func TestWrapText_EmptyInput(t *testing.T) {
	if result := WrapText("", 50, "  "); result != "" {
		t.Errorf("expected empty string for empty input, got %q", result)
	}
	if result := WrapText("   \t  ", 50, ""); result != "" {
		t.Errorf("expected empty string for whitespace-only input, got %q", result)
	}
}

func TestWrapText_NarrowWidthWithIndent(t *testing.T) {
	result := WrapText("hello world", 3, ">>> ")
	if !strings.Contains(result, "hello") {
		t.Errorf("expected 'hello' in output: %q", result)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		dur      time.Duration
		expected string
	}{
		{0, "0.0s"},
		{500 * time.Millisecond, "0.5s"},
		{5 * time.Second, "5.0s"},
		{45*time.Second + 300*time.Millisecond, "45.3s"},
		{1 * time.Minute, "1m 0.0s"},
		{2*time.Minute + 45*time.Second + 500*time.Millisecond, "2m 45.5s"},
		{10 * time.Minute, "10m 0.0s"},
	}

	for _, tt := range tests {
		t.Run(tt.dur.String(), func(t *testing.T) {
			got := FormatDuration(tt.dur)
			if got != tt.expected {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.dur, got, tt.expected)
			}
		})
	}
}
