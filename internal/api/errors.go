package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed request.
type Kind int

const (
	KindUnknown     Kind = iota
	KindNetwork          // offline before the request was issued
	KindTimeout          // no response headers within the attempt timeout
	KindNotFound         // HTTP 404
	KindForbidden        // HTTP 403
	KindRateLimited      // HTTP 429
	KindServer           // any other non-2xx status
	KindConnection       // transport failure (refused, reset, DNS)
	KindCircuitOpen      // rejected locally by the circuit breaker
	KindParse            // response body could not be decoded
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	case KindConnection:
		return "connection"
	case KindCircuitOpen:
		return "circuit_open"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Retryable reports whether another attempt may succeed.
func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimited, KindServer, KindConnection:
		return true
	default:
		return false
	}
}

// Sentinels matched by errors.Is against a *RequestError of the same kind.
var (
	ErrNetwork     = errors.New("no internet connection")
	ErrTimeout     = errors.New("request timeout")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("access forbidden")
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrServer      = errors.New("server error")
	ErrConnection  = errors.New("connection failed")
	ErrCircuitOpen = errors.New("circuit breaker open: backend is unavailable, backing off")
	ErrParse       = errors.New("invalid response body")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindTimeout:
		return ErrTimeout
	case KindNotFound:
		return ErrNotFound
	case KindForbidden:
		return ErrForbidden
	case KindRateLimited:
		return ErrRateLimited
	case KindServer:
		return ErrServer
	case KindConnection:
		return ErrConnection
	case KindCircuitOpen:
		return ErrCircuitOpen
	case KindParse:
		return ErrParse
	default:
		return nil
	}
}

// RequestError is a classified request failure.
type RequestError struct {
	Kind       Kind
	StatusCode int    // 0 when no response was received
	Message    string // backend "detail" when present, otherwise a default per kind
	Err        error  // underlying transport or decode error, if any
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return defaultMessage(e.Kind, e.StatusCode)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *RequestError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Retryable reports whether the request may be attempted again.
func (e *RequestError) Retryable() bool {
	return e.Kind.Retryable()
}

// KindOf returns the classification of err, or KindUnknown when err is not a
// *RequestError.
func KindOf(err error) Kind {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a retryable *RequestError.
func IsRetryable(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Retryable()
}

// ClassifyStatus maps a non-2xx HTTP status to its Kind.
func ClassifyStatus(code int) Kind {
	switch code {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindServer
	}
}

func defaultMessage(k Kind, status int) string {
	switch k {
	case KindNetwork:
		return "No internet connection. Please check your network and try again."
	case KindTimeout:
		return "Request timeout. The server took too long to respond."
	case KindNotFound:
		return "Video not found. Please check the URL and try again."
	case KindForbidden:
		return "Access forbidden. This video may be private or restricted."
	case KindRateLimited:
		return "Rate limit exceeded. Please wait a moment before trying again."
	case KindServer:
		return fmt.Sprintf("Server error (%d). Please try again later.", status)
	case KindConnection:
		return "Connection to the server failed."
	case KindCircuitOpen:
		return ErrCircuitOpen.Error()
	case KindParse:
		return "The server returned an invalid response."
	default:
		return "Request failed"
	}
}

// statusError builds the error for a non-2xx response. body is the (possibly
// truncated) response payload; its JSON "detail" field wins over the default text.
func statusError(code int, body []byte) *RequestError {
	kind := ClassifyStatus(code)
	msg := detailMessage(body)
	if msg == "" {
		msg = defaultMessage(kind, code)
	}
	return &RequestError{Kind: kind, StatusCode: code, Message: msg}
}

// detailMessage extracts "detail" from a FastAPI-style error body. Non-string
// details (validation error lists) are rendered as compact JSON.
func detailMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if string(payload.Detail) == "null" {
		return ""
	}
	return string(payload.Detail)
}
