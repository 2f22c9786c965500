package clients

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"whatsapp-catalog-service/internal/config"
)

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxRetries      int           // Retries after the first attempt
	InitialBackoff  time.Duration // Delay before the first retry
	MaxBackoff      time.Duration // Upper bound for a single delay
	BackoffFactor   float64       // Multiplier for exponential backoff
	RetryableErrors []int         // HTTP status codes to retry
}

// DefaultRetryableStatuses are the transient Graph API answers.
var DefaultRetryableStatuses = []int{
	http.StatusTooManyRequests,     // 429
	http.StatusInternalServerError, // 500
	http.StatusBadGateway,          // 502
	http.StatusServiceUnavailable,  // 503
	http.StatusGatewayTimeout,      // 504
}

// DefaultRetryConfig mirrors the configuration defaults: 3 retries seeded at 5s.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:      3,
		InitialBackoff:  5 * time.Second,
		MaxBackoff:      2 * time.Minute,
		BackoffFactor:   2.0,
		RetryableErrors: DefaultRetryableStatuses,
	}
}

// RetryConfigFrom derives the retry policy from a configuration snapshot.
func RetryConfigFrom(cfg *config.Config) *RetryConfig {
	rc := DefaultRetryConfig()
	rc.MaxRetries = cfg.MaxRetries
	rc.InitialBackoff = cfg.RetryDelay
	if cfg.MaxRetryDelay > 0 {
		rc.MaxBackoff = cfg.MaxRetryDelay
	}
	if rc.MaxBackoff < rc.InitialBackoff {
		rc.MaxBackoff = rc.InitialBackoff
	}
	return rc
}

// RetryResult contains the result of a retry operation
type RetryResult struct {
	Attempts      int
	LastStatus    int
	LastError     error
	Exhausted     bool
	Delays        []time.Duration
	TotalDuration time.Duration
}

// Retries is the number of attempts after the first one.
func (r *RetryResult) Retries() int {
	if r.Attempts == 0 {
		return 0
	}
	return r.Attempts - 1
}

// Retrier handles retry logic with exponential backoff.
// Delays never decrease within one call.
type Retrier struct {
	config *RetryConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a new retrier with the given config
func NewRetrier(config *RetryConfig) *Retrier {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &Retrier{config: config, sleep: sleepContext}
}

// permanentError marks a failure that happened before anything was sent.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// ShouldRetry determines if an attempt should be retried
func (r *Retrier) ShouldRetry(statusCode int, err error) bool {
	if err != nil && statusCode == 0 {
		var p *permanentError
		return !errors.As(err, &p)
	}

	for _, code := range r.config.RetryableErrors {
		if statusCode == code {
			return true
		}
	}
	return false
}

// CalculateBackoff returns InitialBackoff * BackoffFactor^attempt, capped at
// MaxBackoff. A Retry-After hint can only lengthen the delay.
func (r *Retrier) CalculateBackoff(attempt int, retryAfter time.Duration) time.Duration {
	backoff := float64(r.config.InitialBackoff) * math.Pow(r.config.BackoffFactor, float64(attempt))
	if backoff > float64(r.config.MaxBackoff) {
		backoff = float64(r.config.MaxBackoff)
	}
	d := time.Duration(backoff)
	if retryAfter > d {
		d = retryAfter
	}
	return d
}

// ParseRetryAfter extracts the Retry-After duration from response headers
func ParseRetryAfter(header http.Header) time.Duration {
	if header == nil {
		return 0
	}

	retryAfter := header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	// Try parsing as seconds
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}

	// Try parsing as HTTP-date
	if t, err := http.ParseTime(retryAfter); err == nil {
		return time.Until(t)
	}

	return 0
}

// AttemptFunc performs one attempt. A zero status with a non-nil error means
// nothing usable came back.
type AttemptFunc func(ctx context.Context) (statusCode int, retryAfter time.Duration, err error)

// Do executes fn until it succeeds, fails permanently, or retries run out.
func (r *Retrier) Do(ctx context.Context, fn AttemptFunc) *RetryResult {
	result := &RetryResult{}
	startTime := time.Now()
	var previous time.Duration

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		result.Attempts = attempt + 1

		statusCode, retryAfter, err := fn(ctx)
		result.LastStatus = statusCode
		result.LastError = err

		// Success
		if err == nil && statusCode >= 200 && statusCode < 300 {
			break
		}

		if !r.ShouldRetry(statusCode, err) || ctx.Err() != nil {
			break
		}

		if attempt >= r.config.MaxRetries {
			result.Exhausted = true
			break
		}

		backoff := r.CalculateBackoff(attempt, retryAfter)
		if backoff < previous {
			backoff = previous
		}
		previous = backoff
		result.Delays = append(result.Delays, backoff)

		if err := r.sleep(ctx, backoff); err != nil {
			result.LastStatus = 0
			result.LastError = err
			break
		}
	}

	result.TotalDuration = time.Since(startTime)
	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
