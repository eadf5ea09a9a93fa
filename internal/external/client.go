// Package external wraps the third-party HTTP APIs the bot talks to: the LINE
// Messaging API and the Open-Meteo weather services. Every outbound call goes
// through BaseClient, which applies circuit breaking, bounded retries and a
// uniform mapping of transport failures onto types.AppError.
package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"smokebuddy/internal/types"
)

// userAgent is sent on every outbound request.
const userAgent = "SmokeBuddy/1.0"

// RetryPolicy configures the retry behavior for the BaseClient.
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryPolicy returns the policy used by the weather client.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		MinWait:    300 * time.Millisecond,
		MaxWait:    5 * time.Second,
	}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BaseClient wraps an *http.Client and a circuit breaker. Provider clients
// hold one BaseClient each so a failing provider trips only its own breaker.
type BaseClient struct {
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	retryPolicy RetryPolicy
	upstream    types.ErrorCode
	sleep       SleepFunc
	logger      *slog.Logger
}

// BaseClientOption is a functional option for configuring a BaseClient.
type BaseClientOption func(*BaseClient)

// WithSleepFunc overrides the wait between retries. Tests use it to avoid
// real delays.
func WithSleepFunc(fn SleepFunc) BaseClientOption {
	return func(c *BaseClient) {
		c.sleep = fn
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) BaseClientOption {
	return func(c *BaseClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb *gobreaker.CircuitBreaker[*http.Response]) BaseClientOption {
	return func(c *BaseClient) {
		c.breaker = cb
	}
}

// NewBreaker builds the default breaker: it opens after more than five
// consecutive failures and probes again after thirty seconds.
func NewBreaker(name string) *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
}

// NewBaseClient creates a BaseClient. upstream is the error code reported
// when the provider is unreachable or keeps failing (for example
// types.ErrCodeUpstreamMessaging for LINE).
func NewBaseClient(
	httpClient *http.Client,
	breakerName string,
	upstream types.ErrorCode,
	retryPolicy RetryPolicy,
	opts ...BaseClientOption,
) *BaseClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	bc := &BaseClient{
		client:      httpClient,
		breaker:     NewBreaker(breakerName),
		retryPolicy: retryPolicy,
		upstream:    upstream,
		sleep:       contextSleep,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(bc)
	}

	return bc
}

// Do sends req through the breaker. Transport errors, 429 and 5xx are
// retried per the policy; any other response is handed back and the caller
// owns its body. A failure that survives every attempt is returned as a
// *types.AppError with no response.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if id := types.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}
	req.Header.Set("User-Agent", userAgent)

	payload, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	var (
		status  int
		lastErr error
	)
	for attempt := 0; attempt <= c.retryPolicy.MaxRetries; attempt++ {
		if payload != nil {
			req.Body = io.NopCloser(bytes.NewReader(payload))
			req.ContentLength = int64(len(payload))
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) { return c.send(req) })
		if err == nil {
			return resp, nil
		}
		lastErr, status = err, 0
		wait := c.computeBackoff(attempt, resp)
		if resp != nil {
			status = resp.StatusCode
			resp.Body.Close()
		}

		if breakerRejected(err) || ctx.Err() != nil || attempt == c.retryPolicy.MaxRetries {
			break
		}
		c.logger.WarnContext(ctx, "upstream attempt failed, backing off",
			"breaker", c.breaker.Name(),
			"url", req.URL.Redacted(),
			"attempt", attempt+1,
			"wait", wait,
			"error", err,
		)
		if err := c.sleep(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}
	return nil, c.mapError(status, lastErr)
}

// send performs one round trip and reports retryable statuses as errors so
// the breaker counts them.
func (c *BaseClient) send(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return resp, fmt.Errorf("%s responded %d", req.URL.Host, resp.StatusCode)
	}
	return resp, nil
}

// bufferBody reads the request body once so every attempt can replay it.
func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	defer req.Body.Close()
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "cannot buffer outbound request body", err)
	}
	return b, nil
}

func breakerRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// computeBackoff prefers the server's Retry-After hint and otherwise draws a
// jittered exponential delay. Both are clamped by the policy.
func (c *BaseClient) computeBackoff(attempt int, resp *http.Response) time.Duration {
	lo, hi := c.retryPolicy.MinWait, c.retryPolicy.MaxWait
	if resp != nil {
		if hint, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
			return max(lo, min(hint, hi))
		}
	}

	ceiling := lo << attempt
	if ceiling <= 0 || ceiling > hi {
		ceiling = hi
	}
	if ceiling <= lo {
		return lo
	}
	return lo + rand.N(ceiling-lo)
}

// retryAfter parses either form of the Retry-After header.
func retryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, secs > 0
	}
	if at, err := http.ParseTime(v); err == nil {
		return time.Until(at), true
	}
	return 0, false
}

// mapError turns the last failure into an AppError. status is zero when no
// response was received.
func (c *BaseClient) mapError(status int, err error) *types.AppError {
	switch {
	case breakerRejected(err):
		return types.NewAppError(c.upstream, fmt.Sprintf("%s circuit is open", c.breaker.Name()), err)
	case status == http.StatusTooManyRequests:
		return types.NewAppError(types.ErrCodeUpstreamRateLimited, "upstream is rate limiting", err)
	case status >= 500:
		return types.NewAppError(c.upstream, fmt.Sprintf("upstream still failing with %d", status), err)
	default:
		return types.NewAppError(c.upstream, "upstream unreachable", err)
	}
}

// readErrorBody returns at most 4 KiB of a rejected response for logging.
func readErrorBody(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return string(b)
}
