package scheduler

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements token bucket rate limiting
type RateLimiter struct {
	tokens         int
	maxTokens      int
	refillRate     time.Duration
	lastRefillTime time.Time
	now            func() time.Time
	mu             sync.Mutex
}

// NewRateLimiter creates a new rate limiter
// maxTokens: maximum number of tokens in the bucket
// refillRate: how often to add a token (e.g., 2s = 30 requests/minute)
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	return &RateLimiter{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillRate:     refillRate,
		lastRefillTime: time.Now(),
		now:            time.Now,
	}
}

// PerMinute spaces calls evenly at n per minute with no burst. n <= 0
// disables limiting.
func PerMinute(n int) *RateLimiter {
	if n <= 0 {
		return nil
	}
	return NewRateLimiter(1, time.Minute/time.Duration(n))
}

// Wait blocks until a token is available. A nil limiter never blocks.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return ctx.Err()
	}
	for {
		ok, wait := rl.tryAcquire()
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tryAcquire takes a token, or reports how long until the next refill.
func (rl *RateLimiter) tryAcquire() (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastRefillTime)
	tokensToAdd := int(elapsed / rl.refillRate)

	if tokensToAdd > 0 {
		rl.tokens += tokensToAdd
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
			rl.lastRefillTime = now
		} else {
			rl.lastRefillTime = rl.lastRefillTime.Add(time.Duration(tokensToAdd) * rl.refillRate)
		}
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true, 0
	}
	return false, rl.refillRate - now.Sub(rl.lastRefillTime)
}

// WithRateLimit wraps a function with rate limiting
func WithRateLimit(ctx context.Context, limiter *RateLimiter, fn func() error) error {
	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	return fn()
}
