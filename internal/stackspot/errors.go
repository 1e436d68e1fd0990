package stackspot

import (
	"fmt"

	"github.com/gomesmr/remod/internal/domain"
)

// AuthError indicates the client identity is invalid or the credential
// exchange endpoint could not be reached.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportKind distinguishes the failure modes of a single HTTP call.
type TransportKind int

const (
	// TransportTimeout means the call exceeded its deadline.
	TransportTimeout TransportKind = iota
	// TransportNetwork means the call failed below the HTTP layer.
	TransportNetwork
	// TransportHTTPStatus means the service answered with a non-2xx status.
	TransportHTTPStatus
)

// TransportError describes one failed HTTP call to the remote service.
type TransportError struct {
	Kind   TransportKind
	Status int // HTTP status code, set for TransportHTTPStatus
	Err    error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case TransportTimeout:
		return fmt.Sprintf("request timed out: %v", e.Err)
	case TransportNetwork:
		return fmt.Sprintf("network error: %v", e.Err)
	default:
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transient reports whether retrying the same call later could succeed.
// Status 404 is transient during polling: the service may not have indexed
// a fresh execution yet.
func (e *TransportError) Transient() bool {
	switch e.Kind {
	case TransportTimeout, TransportNetwork:
		return true
	case TransportHTTPStatus:
		return e.Status == 404 || e.Status >= 500
	}
	return false
}

// SubmissionError indicates the remote service rejected a unit of work, or
// was unavailable when it was submitted.
type SubmissionError struct {
	Slug string
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission of %q rejected: %v", e.Slug, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PollKind distinguishes why polling ended without a completed execution.
type PollKind int

const (
	// PollRemoteFailure means the service reported the execution FAILED.
	PollRemoteFailure PollKind = iota
	// PollRemoteCancelled means the service reported CANCELLED.
	PollRemoteCancelled
	// PollTimedOut means the local deadline elapsed first.
	PollTimedOut
)

// PollError indicates an execution ended in a non-completed terminal state.
// PollTimedOut is synthesized locally and carries no remote message.
type PollError struct {
	Kind    PollKind
	Handle  domain.ExecutionHandle
	Message string
}

func (e *PollError) Error() string {
	switch e.Kind {
	case PollRemoteFailure:
		return fmt.Sprintf("execution %s failed: %s", e.Handle, e.Message)
	case PollRemoteCancelled:
		return fmt.Sprintf("execution %s cancelled: %s", e.Handle, e.Message)
	default:
		return fmt.Sprintf("execution %s timed out waiting for a terminal state", e.Handle)
	}
}
