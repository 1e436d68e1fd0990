package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gomesmr/remod/internal/domain"
)

// ReportFileName is the combined report written alongside step artifacts.
const ReportFileName = "modernization-report.md"

// Persist writes the snapshot's artifacts under dir: one {step}-result.json
// per recorded step plus the combined markdown report. Each file is written
// independently so one failure does not discard the others; the returned
// error joins every failure.
func Persist(snapshot *domain.ExecutionSnapshot, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var errs []error
	for _, kind := range domain.AllStepKinds {
		payload, ok := snapshot.Payloads[kind]
		if !ok {
			continue
		}
		path := filepath.Join(dir, kind.Name()+"-result.json")
		if err := writeJSONAtomic(path, payload); err != nil {
			errs = append(errs, fmt.Errorf("step %s: %w", kind.Name(), err))
		}
	}

	reportPath := filepath.Join(dir, ReportFileName)
	if err := writeFileAtomic(reportPath, []byte(Render(snapshot))); err != nil {
		errs = append(errs, fmt.Errorf("report: %w", err))
	}

	return errors.Join(errs...)
}

// writeJSONAtomic marshals v with indentation and writes it atomically.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename into place: %w", err)
	}
	return nil
}
