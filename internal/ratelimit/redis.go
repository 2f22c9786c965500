package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"whatsapp-catalog-service/internal/metrics"
)

// RedisWindow is a fixed window whose counter lives in Redis, so every
// replica that shares an access token draws from the same budget.
// Redis errors fail open: the request proceeds and a warning is logged.
type RedisWindow struct {
	client *redis.Client
	key    string
	max    int
	window time.Duration
	clock  Clock
	logger *logrus.Entry
}

// NewRedisWindow stores its counter under key.
func NewRedisWindow(client *redis.Client, key string, max int, window time.Duration, logger *logrus.Logger) *RedisWindow {
	return &RedisWindow{
		client: client,
		key:    key,
		max:    max,
		window: window,
		clock:  RealClock,
		logger: logger.WithField("component", "ratelimit.redis"),
	}
}

// WaitIfNeeded blocks while the shared counter is at its maximum.
func (w *RedisWindow) WaitIfNeeded(ctx context.Context) error {
	if w.max <= 0 {
		return nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		count, err := w.client.Get(ctx, w.key).Int()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			w.logger.WithError(err).Warn("Failed to read shared rate window, continuing")
			return nil
		}
		if count < w.max {
			return nil
		}

		ttl, err := w.client.PTTL(ctx, w.key).Result()
		if err != nil {
			w.logger.WithError(err).Warn("Failed to read shared rate window TTL, continuing")
			return nil
		}
		if ttl < 0 {
			// counter without expiry: the process that created it died before PEXPIRE
			w.client.PExpire(ctx, w.key, w.window)
			ttl = w.window
		}

		w.logger.WithFields(logrus.Fields{
			"requests_made": count,
			"wait":          ttl.String(),
		}).Warn("Shared rate limit reached, waiting for window reset")

		metrics.RecordRateLimitWait(ttl)
		if err := w.clock.Sleep(ctx, ttl); err != nil {
			return err
		}
	}
}

// RecordRequest increments the shared counter, starting a new window on first use.
func (w *RedisWindow) RecordRequest(ctx context.Context) {
	n, err := w.client.Incr(ctx, w.key).Result()
	if err != nil {
		w.logger.WithError(err).Warn("Failed to record request in shared rate window")
		return
	}
	if n == 1 {
		if err := w.client.PExpire(ctx, w.key, w.window).Err(); err != nil {
			w.logger.WithError(err).Warn("Failed to set shared rate window expiry")
		}
	}
}

// Remaining is the number of requests left in the current shared window.
func (w *RedisWindow) Remaining(ctx context.Context) int {
	count, err := w.client.Get(ctx, w.key).Int()
	if err != nil {
		return w.max
	}
	if n := w.max - count; n > 0 {
		return n
	}
	return 0
}
