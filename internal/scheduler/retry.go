package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jpillora/backoff"

	"stock-trader/internal/logger"
)

// RetryPolicy bounds retries of a failing task. MaxRetries counts retries
// after the first attempt.
type RetryPolicy struct {
	MaxRetries int
	MinDelay   time.Duration
	MaxDelay   time.Duration
	Jitter     bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		MinDelay:   60 * time.Second,
		MaxDelay:   3600 * time.Second,
		Jitter:     true,
	}
}

// ErrPermanent marks an error that must not be retried.
var ErrPermanent = errors.New("permanent failure")

// sleep is replaced in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry runs fn until it succeeds, returns an error wrapping ErrPermanent,
// or the retries run out. Delays grow exponentially between MinDelay and
// MaxDelay.
func Retry(ctx context.Context, policy RetryPolicy, name string, fn func(ctx context.Context) error) error {
	b := &backoff.Backoff{
		Min:    policy.MinDelay,
		Max:    policy.MaxDelay,
		Factor: 2,
		Jitter: policy.Jitter,
	}

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := b.Duration()
			logger.Warn(ctx, "Retrying task", "task", name, "attempt", attempt, "delay", delay.String(), "error", lastErr)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrPermanent) || ctx.Err() != nil {
			return lastErr
		}
	}

	return fmt.Errorf("%s: all %d retries failed: %w", name, policy.MaxRetries, lastErr)
}
