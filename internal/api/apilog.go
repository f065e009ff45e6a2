package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// APILogEntry is a single structured record written to the API log file.
// Each field uses snake_case JSON keys for easy grep/jq consumption.
type APILogEntry struct {
	Timestamp    string `json:"ts"`
	Event        string `json:"event"`                   // request, retry, backoff_wait, rate_limit_wait, offline, timeout, circuit_*
	Label        string `json:"label,omitempty"`         // endpoint name, e.g. "info" or "download"
	StatusCode   int    `json:"status_code,omitempty"`   // HTTP status (0 = no response)
	DurationMS   int64  `json:"duration_ms,omitempty"`   // round-trip time to headers
	Attempt      int    `json:"attempt,omitempty"`       // 0 = first try
	WaitMS       int64  `json:"wait_ms,omitempty"`       // backoff or limiter delay
	CircuitState string `json:"circuit_state,omitempty"` // closed / open / half-open
	Kind         string `json:"kind,omitempty"`
	Error        string `json:"error,omitempty"`
}

// apiLogger writes structured JSON-line entries to a dedicated log file.
// All methods are safe for concurrent use.
type apiLogger struct {
	mu  sync.Mutex
	enc *json.Encoder
	f   *os.File
}

var (
	loggerMu sync.RWMutex
	logger   *apiLogger
)

// InitAPILogger opens (or creates) the API log file at logPath, replacing any
// logger opened earlier. The directory is created with mode 0700.
// On error logging stays disabled; requests are unaffected.
func InitAPILogger(logPath string) error {
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return fmt.Errorf("api logger: mkdir %s: %w", filepath.Dir(logPath), err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("api logger: open %s: %w", logPath, err)
	}
	loggerMu.Lock()
	prev := logger
	logger = &apiLogger{f: f, enc: json.NewEncoder(f)}
	loggerMu.Unlock()
	if prev != nil {
		prev.close()
	}
	return nil
}

// CloseAPILogger flushes and disables the API log.
func CloseAPILogger() {
	loggerMu.Lock()
	prev := logger
	logger = nil
	loggerMu.Unlock()
	if prev != nil {
		prev.close()
	}
}

func (l *apiLogger) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.f.Close()
}

// emit appends e when a logger is configured. Write failures are ignored;
// a logging error must never abort a download.
func emit(e APILogEntry) {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l == nil {
		return
	}
	e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.enc.Encode(e)
}

// LogRequest records one attempt that produced a response or a classified error.
func LogRequest(label string, statusCode int, duration time.Duration, attempt int, circState string, reqErr error) {
	e := APILogEntry{
		Event:        "request",
		Label:        label,
		StatusCode:   statusCode,
		DurationMS:   duration.Milliseconds(),
		Attempt:      attempt,
		CircuitState: circState,
	}
	if reqErr != nil {
		e.Error = reqErr.Error()
		if k := KindOf(reqErr); k != KindUnknown {
			e.Kind = k.String()
		}
	}
	if attempt > 0 {
		e.Event = "retry"
	}
	emit(e)
}

// LogBackoffWait records the pause before the next attempt.
func LogBackoffWait(label string, attempt int, wait time.Duration) {
	emit(APILogEntry{Event: "backoff_wait", Label: label, Attempt: attempt, WaitMS: wait.Milliseconds()})
}

// LogRateLimitWait records that a request was delayed by the rate limiter.
func LogRateLimitWait(label string, waited time.Duration) {
	emit(APILogEntry{Event: "rate_limit_wait", Label: label, WaitMS: waited.Milliseconds()})
}

// LogOffline records an attempt refused because the connectivity signal is offline.
func LogOffline(label string, attempt int) {
	emit(APILogEntry{Event: "offline", Label: label, Attempt: attempt, Kind: KindNetwork.String()})
}

// LogTimeout records an attempt whose headers did not arrive in time.
func LogTimeout(label string, attempt int, limit time.Duration) {
	emit(APILogEntry{
		Event:      "timeout",
		Label:      label,
		Attempt:    attempt,
		DurationMS: limit.Milliseconds(),
		Kind:       KindTimeout.String(),
	})
}

// LogCircuitStateChange records a circuit breaker state transition.
func LogCircuitStateChange(event, label, fromState, toState string) {
	emit(APILogEntry{
		Event:        event,
		Label:        label,
		CircuitState: toState,
		Error:        fmt.Sprintf("state transition: %s -> %s", fromState, toState),
	})
}

// LogCircuitRejected records a request rejected because the breaker is open.
func LogCircuitRejected(label string) {
	emit(APILogEntry{
		Event:        "circuit_rejected",
		Label:        label,
		CircuitState: circuitOpen.String(),
		Kind:         KindCircuitOpen.String(),
		Error:        ErrCircuitOpen.Error(),
	})
}
