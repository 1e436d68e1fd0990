package main

import (
	"errors"
	"testing"

	"github.com/gomesmr/remod/internal/domain"
)

func TestExitCode(t *testing.T) {
	if err := exitCode(domain.ExitOK); err != nil {
		t.Errorf("ExitOK should map to nil, got %v", err)
	}

	tests := []struct {
		code domain.ExitCode
		want int
	}{
		{domain.ExitPartial, 1},
		{domain.ExitError, 2},
		{domain.ExitInterrupted, 130},
	}
	for _, tt := range tests {
		err := exitCode(tt.code)
		if err == nil {
			t.Fatalf("exitCode(%d) = nil", tt.code)
		}
		var ec exitCodeError
		if !errors.As(err, &ec) {
			t.Fatalf("exitCode(%d) is not an exitCodeError", tt.code)
		}
		if ec.code.Int() != tt.want {
			t.Errorf("code = %d, want %d", ec.code.Int(), tt.want)
		}
		if ec.Error() == "" {
			t.Error("exitCodeError should carry a message")
		}
	}
}

func TestBuildVersionString(t *testing.T) {
	if buildVersionString() == "" {
		t.Error("version string should not be empty")
	}
}
