package stackspot

import (
	"context"
	"errors"
	"time"

	"github.com/gomesmr/remod/internal/domain"
)

const (
	// DefaultPollInterval matches the delay the service documentation
	// recommends between callback fetches.
	DefaultPollInterval = 10 * time.Second
	// DefaultPollDeadline bounds how long one execution may stay
	// non-terminal before it is abandoned locally.
	DefaultPollDeadline = 10 * time.Minute
)

// ProgressObserver is invoked once per poll attempt with the state observed
// on that attempt. Observers are for progress reporting only: a panicking
// observer never aborts the poll loop.
type ProgressObserver func(domain.ExecutionState)

// PollOptions configures one polling loop.
type PollOptions struct {
	// Interval is the fixed delay between poll attempts.
	Interval time.Duration
	// Deadline bounds the whole loop, measured from the first attempt.
	Deadline time.Duration
	// Observer, if set, receives the state seen on every attempt.
	Observer ProgressObserver
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.Deadline <= 0 {
		o.Deadline = DefaultPollDeadline
	}
	return o
}

// PollUntilTerminal repeatedly fetches the callback payload for handle until
// the execution reaches a terminal state or the deadline elapses.
//
// Policy:
//   - a 404 means the service has not indexed the execution yet and counts
//     as PENDING, not as an error;
//   - any transient transport failure on a single attempt is swallowed and
//     the next attempt proceeds on schedule;
//   - COMPLETED returns the full payload; FAILED and CANCELLED return a
//     *PollError carrying the remote message; deadline exhaustion returns
//     *PollError with PollTimedOut, distinct from remote failure.
//
// Context cancellation is honored at every wait point.
func (c *Client) PollUntilTerminal(ctx context.Context, handle domain.ExecutionHandle, opts PollOptions) (*Execution, error) {
	return c.pollLoop(ctx, handle, opts, func(ctx context.Context) (*Execution, error) {
		return c.GetExecution(ctx, handle)
	})
}

// fetchFunc retrieves the current payload for one poll attempt.
type fetchFunc func(ctx context.Context) (*Execution, error)

func (c *Client) pollLoop(ctx context.Context, handle domain.ExecutionHandle, opts PollOptions, fetch fetchFunc) (*Execution, error) {
	opts = opts.withDefaults()

	deadline := time.NewTimer(opts.Deadline)
	defer deadline.Stop()

	for {
		execution, err := fetch(ctx)
		state := domain.StatePending
		switch {
		case err == nil:
			state = execution.Progress.Status
		case isNotFound(err):
			// Submitted but not indexed yet.
		case isTransient(err):
			// Swallowed; next attempt may succeed.
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			return nil, err
		}

		notifyObserver(opts.Observer, state)

		switch state {
		case domain.StateCompleted:
			return execution, nil
		case domain.StateFailed:
			return nil, &PollError{Kind: PollRemoteFailure, Handle: handle, Message: remoteMessage(execution)}
		case domain.StateCancelled:
			return nil, &PollError{Kind: PollRemoteCancelled, Handle: handle, Message: remoteMessage(execution)}
		}

		interval := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			interval.Stop()
			return nil, ctx.Err()
		case <-deadline.C:
			interval.Stop()
			return nil, &PollError{Kind: PollTimedOut, Handle: handle}
		case <-interval.C:
		}
	}
}

// notifyObserver calls the observer, absorbing panics so progress reporting
// can never abort polling.
func notifyObserver(observer ProgressObserver, state domain.ExecutionState) {
	if observer == nil {
		return
	}
	defer func() { _ = recover() }()
	observer(state)
}

func isNotFound(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == TransportHTTPStatus && te.Status == 404
}

func isTransient(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Transient()
}

func remoteMessage(execution *Execution) string {
	if execution == nil {
		return ""
	}
	if execution.ErrorMsg != "" {
		return execution.ErrorMsg
	}
	return "no error message reported"
}
