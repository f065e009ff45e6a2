package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jmagar/anydl/internal/model"
)

// UserAgent is sent with every request.
const UserAgent = "anydl/1.0"

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL        string
	APIPrefix      string
	HTTPClient     *http.Client
	AttemptTimeout time.Duration
	MaxAttempts    int

	// RateLimitPerSecond <= 0 disables the limiter.
	RateLimitPerSecond float64
	RateLimitBurst     int
	// CircuitThreshold <= 0 disables the breaker.
	CircuitThreshold int
	CircuitReset     time.Duration

	Network *Connectivity
	Sleep   SleepFunc
}

// Client talks to the extraction backend.
type Client struct {
	BaseURL        string
	APIPrefix      string
	AttemptTimeout time.Duration
	MaxAttempts    int

	http    *http.Client
	network *Connectivity
	sleep   SleepFunc
	limiter *rateLimiter
	breaker *circuitBreaker
	info    singleflight.Group
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		BaseURL:        strings.TrimRight(opts.BaseURL, "/"),
		APIPrefix:      opts.APIPrefix,
		AttemptTimeout: opts.AttemptTimeout,
		MaxAttempts:    opts.MaxAttempts,
		http:           opts.HTTPClient,
		network:        opts.Network,
		sleep:          opts.Sleep,
		limiter:        newRateLimiter(opts.RateLimitPerSecond, opts.RateLimitBurst),
		breaker:        newCircuitBreaker(opts.CircuitThreshold, opts.CircuitReset),
	}
	if c.BaseURL == "" {
		c.BaseURL = model.DefaultServerURL
	}
	if c.APIPrefix == "" {
		c.APIPrefix = model.DefaultAPIPrefix
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = model.DefaultAttemptTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = model.DefaultMaxAttempts
	}
	if c.http == nil {
		// No overall Timeout: it would also cut off long body streams.
		c.http = &http.Client{}
	}
	if c.network == nil {
		c.network = Network
	}
	if c.sleep == nil {
		c.sleep = SleepContext
	}
	return c
}

// RequestOptions describes one logical request.
type RequestOptions struct {
	Method string // defaults to GET
	Header http.Header
	Label  string // endpoint name for the API log
	// Timeout overrides the client's per-attempt header timeout.
	Timeout time.Duration
	// External marks a host other than the backend: the connectivity
	// signal, rate limiter and circuit breaker are bypassed.
	External bool
}

// Request performs a logical request against rawURL with up to maxAttempts
// attempts (<= 0 means the client default). On success the response body is
// unread and the caller must close it.
func (c *Client) Request(ctx context.Context, rawURL string, opts RequestOptions, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = c.MaxAttempts
	}
	label := opts.Label
	if label == "" {
		label = rawURL
	}
	// The breaker guards whole requests: once admitted, a request keeps its
	// full attempt budget even if its own failures open the circuit.
	if !opts.External {
		if _, allowed := c.breaker.Allow(); !allowed {
			LogCircuitRejected(label)
			return nil, &RequestError{Kind: KindCircuitOpen}
		}
	}
	rc := NewRetryContext(label, maxAttempts, func(ctx context.Context, attempt int) (*http.Response, error) {
		return c.attempt(ctx, rawURL, opts, label, attempt)
	}, c.sleep)
	return rc.Run(ctx)
}

// attempt runs one try:
//  1. connectivity check and rate limiter (backend requests only)
//  2. the HTTP exchange, bounded by AttemptTimeout until headers arrive
//  3. status classification, recorded by the breaker for backend requests
func (c *Client) attempt(ctx context.Context, rawURL string, opts RequestOptions, label string, attempt int) (*http.Response, error) {
	if !opts.External {
		if !c.network.Online() {
			LogOffline(label, attempt)
			return nil, &RequestError{Kind: KindNetwork}
		}
		waited, err := c.limiter.Wait(ctx)
		if err != nil {
			return nil, err
		}
		if waited > time.Millisecond {
			LogRateLimitWait(label, waited)
		}
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	attemptCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(attemptCtx, method, rawURL, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	limit := c.AttemptTimeout
	if opts.Timeout > 0 {
		limit = opts.Timeout
	}
	var timedOut atomic.Bool
	timer := time.AfterFunc(limit, func() {
		timedOut.Store(true)
		cancel()
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	stopped := timer.Stop()
	duration := time.Since(start)

	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if timedOut.Load() {
			LogTimeout(label, attempt, limit)
			return nil, &RequestError{Kind: KindTimeout, Err: err}
		}
		reqErr := &RequestError{Kind: KindConnection, Err: err}
		c.recordFailure(label, opts.External)
		LogRequest(label, 0, duration, attempt, c.breaker.State().String(), reqErr)
		return nil, reqErr
	}
	if !stopped {
		// The timer fired as the headers arrived; the body is already cancelled.
		resp.Body.Close()
		cancel()
		LogTimeout(label, attempt, limit)
		return nil, &RequestError{Kind: KindTimeout, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		cancel()
		reqErr := statusError(resp.StatusCode, body)
		if reqErr.Retryable() {
			c.recordFailure(label, opts.External)
		} else {
			c.recordSuccess(label, opts.External)
		}
		LogRequest(label, resp.StatusCode, duration, attempt, c.breaker.State().String(), reqErr)
		return nil, reqErr
	}

	c.recordSuccess(label, opts.External)
	LogRequest(label, resp.StatusCode, duration, attempt, c.breaker.State().String(), nil)
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c *Client) recordFailure(label string, external bool) {
	if external {
		return
	}
	before := c.breaker.State()
	if now := c.breaker.RecordFailure(); now == circuitOpen && before != circuitOpen {
		LogCircuitStateChange("circuit_opened", label, before.String(), now.String())
	}
}

// recordSuccess closes the breaker. A 404/403 proves the backend is answering.
func (c *Client) recordSuccess(label string, external bool) {
	if external {
		return
	}
	if prev := c.breaker.RecordSuccess(); prev != circuitClosed {
		LogCircuitStateChange("circuit_closed", label, prev.String(), circuitClosed.String())
	}
}

// cancelOnClose releases the attempt context once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// Get is Request with default options and attempts.
func (c *Client) Get(ctx context.Context, rawURL, label string) (*http.Response, error) {
	return c.Request(ctx, rawURL, RequestOptions{Label: label}, 0)
}

// GetExternal fetches a resource from a host other than the backend, such as
// a CDN manifest: one attempt with the short health timeout, outside the
// backend's connectivity signal, rate limiter and breaker.
func (c *Client) GetExternal(ctx context.Context, rawURL, label string) (*http.Response, error) {
	return c.Request(ctx, rawURL, RequestOptions{
		Label:    label,
		Timeout:  model.DefaultHealthTimeout,
		External: true,
	}, 1)
}

// isCancellation reports whether err came from the caller's own context.
func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
