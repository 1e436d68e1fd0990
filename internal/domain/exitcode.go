package domain

// ExitCode represents the exit status of the orchestrator.
type ExitCode int

const (
	// ExitOK indicates every processed unit succeeded.
	ExitOK ExitCode = 0
	// ExitPartial indicates the run completed but some units failed.
	ExitPartial ExitCode = 1
	// ExitError indicates the run failed entirely.
	ExitError ExitCode = 2
	// ExitInterrupted indicates the run was interrupted by a signal.
	ExitInterrupted ExitCode = 130
)

// Int returns the exit code as an int for use with os.Exit.
func (e ExitCode) Int() int {
	return int(e)
}
