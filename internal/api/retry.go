package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmagar/anydl/internal/model"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the default SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the pause after a failed attempt: 2^attempt seconds.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 16 {
		attempt = 16
	}
	return time.Second << attempt
}

// Operation performs one attempt; attempt is 0-indexed.
type Operation func(ctx context.Context, attempt int) (*http.Response, error)

// RetryContext carries the retry state of one logical request. It is created
// per call and never shared.
type RetryContext struct {
	Label       string
	Attempt     int // attempts started so far
	MaxAttempts int
	Op          Operation
	LastErr     error

	sleep SleepFunc
}

// NewRetryContext prepares a retry loop for op. maxAttempts <= 0 means the default.
func NewRetryContext(label string, maxAttempts int, op Operation, sleep SleepFunc) *RetryContext {
	if maxAttempts <= 0 {
		maxAttempts = model.DefaultMaxAttempts
	}
	if sleep == nil {
		sleep = SleepContext
	}
	return &RetryContext{Label: label, MaxAttempts: maxAttempts, Op: op, sleep: sleep}
}

// Run invokes Op until it succeeds, fails with a non-retryable error, or the
// attempts are used up. No pause follows the final attempt.
func (rc *RetryContext) Run(ctx context.Context) (*http.Response, error) {
	for rc.Attempt < rc.MaxAttempts {
		attempt := rc.Attempt
		rc.Attempt++

		resp, err := rc.Op(ctx, attempt)
		if err == nil {
			return resp, nil
		}
		rc.LastErr = err
		if !IsRetryable(err) || rc.Attempt >= rc.MaxAttempts {
			return nil, err
		}

		wait := Backoff(attempt)
		LogBackoffWait(rc.Label, attempt, wait)
		if serr := rc.sleep(ctx, wait); serr != nil {
			return nil, serr
		}
	}
	if rc.LastErr == nil {
		rc.LastErr = errors.New("request failed after multiple attempts")
	}
	return nil, rc.LastErr
}

// ErrRetriesExhausted is returned by Action.Retry once the user-level retry
// budget is spent.
var ErrRetriesExhausted = errors.New("maximum retry attempts reached, please try again later")

// Action is a user-level operation that can be re-run after failure, up to
// model.MaxManualRetries times. A success resets the counter.
type Action struct {
	Label string

	fn      func(ctx context.Context) error
	retries int
	max     int
}

// NewAction wraps fn as a retryable user action.
func NewAction(label string, fn func(ctx context.Context) error) *Action {
	return &Action{Label: label, fn: fn, max: model.MaxManualRetries}
}

// Run performs the first invocation. It does not count against the retry budget.
func (a *Action) Run(ctx context.Context) error {
	err := a.fn(ctx)
	if err == nil {
		a.retries = 0
	}
	return err
}

// CanRetry reports whether another Retry is allowed.
func (a *Action) CanRetry() bool {
	return a != nil && a.retries < a.max
}

// Retries returns how many retries have been used.
func (a *Action) Retries() int {
	return a.retries
}

// Max returns the retry budget.
func (a *Action) Max() int {
	return a.max
}

// Retry re-runs the action, consuming one retry.
func (a *Action) Retry(ctx context.Context) error {
	if !a.CanRetry() {
		return ErrRetriesExhausted
	}
	a.retries++
	err := a.fn(ctx)
	if err == nil {
		a.retries = 0
	}
	return err
}
