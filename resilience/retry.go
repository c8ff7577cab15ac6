// SPDX-License-Identifier: MIT

package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ManuGH/genutil/log"
	"github.com/ManuGH/genutil/metrics"
)

// RetryOption configures a Retry call.
type RetryOption func(*retryConfig)

type retryConfig struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsed      time.Duration
	maxRetries      uint64
	limitRetries    bool
}

// WithInitialInterval sets the first backoff interval.
func WithInitialInterval(d time.Duration) RetryOption {
	return func(c *retryConfig) { c.initialInterval = d }
}

// WithMaxInterval caps the backoff interval.
func WithMaxInterval(d time.Duration) RetryOption {
	return func(c *retryConfig) { c.maxInterval = d }
}

// WithMaxElapsed stops retrying once the total elapsed time exceeds d.
func WithMaxElapsed(d time.Duration) RetryOption {
	return func(c *retryConfig) { c.maxElapsed = d }
}

// WithMaxRetries limits the number of retries (not counting the first attempt).
func WithMaxRetries(n uint64) RetryOption {
	return func(c *retryConfig) {
		c.maxRetries = n
		c.limitRetries = true
	}
}

// Permanent marks an error as non-retryable: Retry returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Retry runs op with exponential backoff and jitter until it succeeds, the
// context is cancelled, or the configured limits are exhausted. The name
// labels log entries and metrics.
func Retry(ctx context.Context, name string, op func(ctx context.Context) error, opts ...RetryOption) error {
	cfg := retryConfig{
		initialInterval: 100 * time.Millisecond,
		maxInterval:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.initialInterval
	exp.MaxInterval = cfg.maxInterval
	exp.MaxElapsedTime = cfg.maxElapsed

	var b backoff.BackOff = backoff.WithContext(exp, ctx)
	if cfg.limitRetries {
		b = backoff.WithMaxRetries(b, cfg.maxRetries)
	}

	logger := log.WithComponentFromContext(ctx, "resilience")
	attempt := 0

	return backoff.Retry(func() error {
		attempt++
		err := op(ctx)
		if err != nil {
			metrics.RecordRetryAttempt(name, "failure")
			logger.Debug().Err(err).
				Str("operation", name).
				Int("attempt", attempt).
				Msg("retryable operation failed")
			return err
		}
		metrics.RecordRetryAttempt(name, "success")
		return nil
	}, b)
}
