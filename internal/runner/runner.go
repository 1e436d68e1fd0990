// Package runner provides the batch modernization engine.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gomesmr/remod/internal/domain"
	"github.com/gomesmr/remod/internal/source"
	"github.com/gomesmr/remod/internal/stackspot"
	"github.com/gomesmr/remod/internal/terminal"
)

// Config holds the runner configuration.
type Config struct {
	Slug         string
	Concurrency  int
	PollInterval time.Duration
	Timeout      time.Duration
	Retries      int
	Write        bool
	Verbose      bool
}

// Runner pushes source units through the submit, poll, extract cycle with
// bounded concurrency.
type Runner struct {
	config Config
	client *stackspot.Client
	logger *terminal.Logger

	mu      sync.Mutex
	results []domain.UnitResult
}

// New creates a runner. The slug names the remote command every unit is
// submitted to.
func New(config Config, client *stackspot.Client, logger *terminal.Logger) (*Runner, error) {
	if config.Slug == "" {
		return nil, fmt.Errorf("a command slug is required")
	}
	if client == nil {
		return nil, fmt.Errorf("a client is required")
	}
	return &Runner{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

// Run processes every unit and returns one result each, in completion order.
// A failed unit carries its error; the batch always runs to the end unless
// the context is cancelled.
func (r *Runner) Run(ctx context.Context, units []source.Unit) ([]domain.UnitResult, time.Duration, error) {
	spinner := terminal.NewSpinner(len(units), "Modernizing files", "Modernization complete")
	completed := spinner.Completed()

	spinnerCtx, spinnerCancel := context.WithCancel(context.Background())
	spinnerDone := make(chan struct{})
	go func() {
		spinner.Run(spinnerCtx)
		close(spinnerDone)
	}()

	start := time.Now()

	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = len(units)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, unit := range units {
		unit := unit
		g.Go(func() error {
			result := r.processUnitWithRetry(gctx, unit)
			completed.Add(1)
			r.record(result)
			// Per-unit failures are recorded, not propagated, so one bad
			// unit never cancels its siblings.
			return nil
		})
	}

	err := g.Wait()

	spinnerCancel()
	<-spinnerDone

	if ctx.Err() != nil {
		return r.snapshot(), time.Since(start), ctx.Err()
	}
	return r.snapshot(), time.Since(start), err
}

func (r *Runner) record(result domain.UnitResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *Runner) snapshot() []domain.UnitResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.UnitResult, len(r.results))
	copy(out, r.results)
	return out
}

func (r *Runner) processUnitWithRetry(ctx context.Context, unit source.Unit) domain.UnitResult {
	var result domain.UnitResult

	for attempt := 0; attempt <= r.config.Retries; attempt++ {
		if ctx.Err() != nil {
			return domain.UnitResult{Path: unit.RelPath, Err: ctx.Err()}
		}

		result = r.processUnit(ctx, unit)
		if result.Successful() {
			return result
		}

		if attempt < r.config.Retries {
			delay := time.Duration(1<<attempt) * time.Second
			r.logf(terminal.StyleWarning, "%s failed (%v), retry %d/%d in %v",
				unit.RelPath, result.Err, attempt+1, r.config.Retries, delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return result
			}
		}
	}

	return result
}

func (r *Runner) processUnit(ctx context.Context, unit source.Unit) domain.UnitResult {
	start := time.Now()
	result := domain.UnitResult{Path: unit.RelPath}

	handle, err := r.client.CreateExecution(ctx, r.config.Slug, unit.Content)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.Handle = handle

	if r.config.Verbose {
		r.logf(terminal.StyleDim, "%s submitted as %s", unit.RelPath, handle)
	}

	execution, err := r.client.PollUntilTerminal(ctx, handle, stackspot.PollOptions{
		Interval: r.config.PollInterval,
		Deadline: r.config.Timeout,
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	modernized := execution.ResultText()
	result.HasChanges = modernized != "" && modernized != unit.Content

	if r.config.Write && result.HasChanges {
		if err := writeBack(unit.Path, modernized); err != nil {
			result.Err = err
			result.Duration = time.Since(start)
			return result
		}
		result.Written = true
	}

	result.Duration = time.Since(start)
	return result
}

func (r *Runner) logf(style terminal.Style, format string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Logf(style, format, args...)
}

// writeBack replaces the source file via a temp file and rename, so an
// interrupted run never leaves a half-written file behind.
func writeBack(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".remod-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
