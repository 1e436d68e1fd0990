package terminal

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// captureStderr captures stderr output during the execution of f.
func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestLogger_Log_AllStyles(t *testing.T) {
	tests := []struct {
		style          Style
		expectedSymbol string
	}{
		{StyleInfo, "I"},
		{StyleSuccess, "✓"},
		{StyleWarning, "W"},
		{StyleError, "!"},
		{StyleDim, "·"},
		{StylePhase, "▸"},
	}

	for _, tc := range tests {
		t.Run(string(tc.style), func(t *testing.T) {
			logger := &Logger{isTTY: false}

			var output string
			WithColorsDisabled(func() {
				output = captureStderr(func() {
					logger.Log("modernizing 3 files", tc.style)
				})
			})

			if !strings.Contains(output, tc.expectedSymbol) {
				t.Errorf("expected symbol %q in output, got %q", tc.expectedSymbol, output)
			}
			if !strings.Contains(output, "modernizing 3 files") {
				t.Errorf("expected message in output, got %q", output)
			}
			if !strings.Contains(output, "[remod]") {
				t.Errorf("expected tag in output, got %q", output)
			}
		})
	}
}

func TestLogger_Logf(t *testing.T) {
	logger := &Logger{isTTY: false}

	var output string
	WithColorsDisabled(func() {
		output = captureStderr(func() {
			logger.Logf(StyleInfo, "submitted %s as %s", "App.java", "exec-1")
		})
	})

	if !strings.Contains(output, "submitted App.java as exec-1") {
		t.Errorf("expected formatted message, got %q", output)
	}
}

func TestLog_PackageLevel(t *testing.T) {
	var output string
	WithColorsDisabled(func() {
		output = captureStderr(func() {
			Logf(StyleError, "execution failed: %v", "quota exceeded")
		})
	})

	if !strings.Contains(output, "execution failed: quota exceeded") {
		t.Errorf("expected message in output, got %q", output)
	}
	if !strings.Contains(output, "!") {
		t.Errorf("expected error symbol in output, got %q", output)
	}
}

func TestLogger_Log_WithColors(t *testing.T) {
	EnableColors()

	logger := &Logger{isTTY: false}

	output := captureStderr(func() {
		logger.Log("colored message", StyleSuccess)
	})

	if !strings.Contains(output, "\033[") {
		t.Errorf("expected ANSI codes in colored output, got %q", output)
	}
}

func TestLogger_Log_TTYClearsLine(t *testing.T) {
	logger := &Logger{isTTY: true}

	var output string
	WithColorsDisabled(func() {
		output = captureStderr(func() {
			logger.Log("tty message", StyleInfo)
		})
	})

	if !strings.Contains(output, "\r") {
		t.Errorf("expected carriage return in TTY output, got %q", output)
	}
}
