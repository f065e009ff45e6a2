package api

import (
	"sync"
	"time"
)

type circuitState int

const (
	circuitClosed   circuitState = iota // requests flow through
	circuitOpen                         // backend failing, requests rejected locally
	circuitHalfOpen                     // one probe allowed through
)

func (s circuitState) String() string {
	switch s {
	case circuitClosed:
		return "closed"
	case circuitOpen:
		return "open"
	case circuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// circuitBreaker trips open after threshold consecutive retryable failures
// (429, 5xx, connection errors), stays open for resetTimeout, then lets a
// single probe through. A nil breaker allows everything.
type circuitBreaker struct {
	mu           sync.Mutex
	state        circuitState
	consecutive  int
	threshold    int
	resetTimeout time.Duration
	openedAt     time.Time
	now          func() time.Time
}

// newCircuitBreaker returns nil when threshold <= 0, disabling the breaker.
func newCircuitBreaker(threshold int, resetTimeout time.Duration) *circuitBreaker {
	if threshold <= 0 {
		return nil
	}
	return &circuitBreaker{
		state:        circuitClosed,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		now:          time.Now,
	}
}

// Allow returns the current state and whether the attempt may proceed.
func (cb *circuitBreaker) Allow() (circuitState, bool) {
	if cb == nil {
		return circuitClosed, true
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case circuitOpen:
		if cb.now().Sub(cb.openedAt) >= cb.resetTimeout {
			cb.state = circuitHalfOpen
			return circuitHalfOpen, true
		}
		return circuitOpen, false
	default:
		return cb.state, true
	}
}

// RecordSuccess closes the circuit and returns the previous state.
func (cb *circuitBreaker) RecordSuccess() (prev circuitState) {
	if cb == nil {
		return circuitClosed
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	prev = cb.state
	cb.consecutive = 0
	cb.state = circuitClosed
	return prev
}

// RecordFailure counts a retryable failure and returns the new state.
func (cb *circuitBreaker) RecordFailure() (newState circuitState) {
	if cb == nil {
		return circuitClosed
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.consecutive++
	if cb.state == circuitHalfOpen || cb.consecutive >= cb.threshold {
		cb.state = circuitOpen
		cb.openedAt = cb.now()
	}
	return cb.state
}

// State returns the current circuit state without side effects.
func (cb *circuitBreaker) State() circuitState {
	if cb == nil {
		return circuitClosed
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
