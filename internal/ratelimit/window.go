// Package ratelimit keeps outbound calls within the Graph API hourly budget.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"whatsapp-catalog-service/internal/metrics"
)

// State of a fixed window.
type State int

const (
	Open State = iota
	Throttled
)

func (s State) String() string {
	if s == Throttled {
		return "throttled"
	}
	return "open"
}

// Clock abstracts time so tests can drive the window.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
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

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// FixedWindow counts requests in consecutive windows of a fixed length and
// blocks callers once the budget of the current window is spent. Bursts at a
// window boundary are allowed; this is not a sliding window.
type FixedWindow struct {
	mu           sync.Mutex
	max          int
	window       time.Duration
	requestsMade int
	reserved     int
	resetAt      time.Time

	clock  Clock
	logger *logrus.Entry
}

// Option configures a FixedWindow.
type Option func(*FixedWindow)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(w *FixedWindow) { w.clock = c }
}

// WithLogger sets the logger used for throttling warnings.
func WithLogger(logger *logrus.Logger) Option {
	return func(w *FixedWindow) { w.logger = logger.WithField("component", "ratelimit") }
}

// NewFixedWindow allows max requests per window. A max of zero or less disables limiting.
func NewFixedWindow(max int, window time.Duration, opts ...Option) *FixedWindow {
	w := &FixedWindow{
		max:    max,
		window: window,
		clock:  RealClock,
		logger: logrus.NewEntry(logrus.StandardLogger()).WithField("component", "ratelimit"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.resetAt = w.clock.Now().Add(window)
	return w
}

// WaitIfNeeded returns immediately while the window has budget left,
// reserving one slot for the caller. Otherwise it sleeps until the window
// resets, or until ctx is done. The reservation is settled by RecordRequest;
// an unsettled one lapses when the window resets.
func (w *FixedWindow) WaitIfNeeded(ctx context.Context) error {
	if w.max <= 0 {
		return nil
	}
	for {
		w.mu.Lock()
		now := w.clock.Now()
		w.resetIfExpired(now)
		if w.used() < w.max {
			w.reserved++
			w.mu.Unlock()
			return nil
		}
		wait := w.resetAt.Sub(now)
		w.mu.Unlock()

		w.logger.WithFields(logrus.Fields{
			"requests_made": w.max,
			"wait":          wait.String(),
		}).Warn("Rate limit reached, waiting for window reset")

		metrics.RecordRateLimitWait(wait)
		if err := w.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// RecordRequest counts one dispatched request.
func (w *FixedWindow) RecordRequest(_ context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetIfExpired(w.clock.Now())
	if w.reserved > 0 {
		w.reserved--
	}
	w.requestsMade++
}

// State reports whether the next request would have to wait.
func (w *FixedWindow) State() State {
	if w.max <= 0 {
		return Open
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetIfExpired(w.clock.Now())
	if w.used() >= w.max {
		return Throttled
	}
	return Open
}

// Remaining is the number of requests left in the current window.
func (w *FixedWindow) Remaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetIfExpired(w.clock.Now())
	if n := w.max - w.used(); n > 0 {
		return n
	}
	return 0
}

// resetIfExpired must be called with mu held.
func (w *FixedWindow) resetIfExpired(now time.Time) {
	if now.Before(w.resetAt) {
		return
	}
	w.requestsMade = 0
	w.reserved = 0
	w.resetAt = now.Add(w.window)
}

// used counts recorded and reserved slots. mu must be held.
func (w *FixedWindow) used() int {
	return w.requestsMade + w.reserved
}
