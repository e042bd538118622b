package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	orig := sleep
	sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	t.Cleanup(func() { sleep = orig })
	return &delays
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	delays := stubSleep(t)
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxRetries: 3, MinDelay: time.Minute, MaxDelay: time.Hour}, "test",
		func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("temporary")
			}
			return nil
		})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
	if len(*delays) != 2 || (*delays)[0] != time.Minute || (*delays)[1] != 2*time.Minute {
		t.Errorf("Expected delays [1m 2m], got %v", *delays)
	}
}

func TestRetryGivesUp(t *testing.T) {
	delays := stubSleep(t)
	calls := 0
	boom := errors.New("boom")
	err := Retry(context.Background(), RetryPolicy{MaxRetries: 3, MinDelay: 40 * time.Minute, MaxDelay: time.Hour}, "test",
		func(context.Context) error {
			calls++
			return boom
		})
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped boom, got %v", err)
	}
	if calls != 4 {
		t.Errorf("Expected 1 attempt + 3 retries, got %d", calls)
	}
	for _, d := range *delays {
		if d > time.Hour {
			t.Errorf("Delay %v exceeds max", d)
		}
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	stubSleep(t)
	calls := 0
	err := Retry(context.Background(), DefaultRetryPolicy(), "test", func(context.Context) error {
		calls++
		return fmt.Errorf("bad symbol: %w", ErrPermanent)
	})
	if !errors.Is(err, ErrPermanent) || calls != 1 {
		t.Errorf("Expected single permanent failure, got %d calls, %v", calls, err)
	}
}

func TestRateLimiterSpacing(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	rl := PerMinute(30)
	rl.now = func() time.Time { return now }
	rl.lastRefillTime = now

	if ok, _ := rl.tryAcquire(); !ok {
		t.Fatal("Expected first token immediately")
	}
	ok, wait := rl.tryAcquire()
	if ok {
		t.Fatal("Expected no burst beyond one token")
	}
	if wait != 2*time.Second {
		t.Errorf("Expected 2s wait at 30/m, got %v", wait)
	}

	now = now.Add(2 * time.Second)
	if ok, _ := rl.tryAcquire(); !ok {
		t.Error("Expected token after refill interval")
	}
}

func TestRateLimiterWait(t *testing.T) {
	if err := (*RateLimiter)(nil).Wait(context.Background()); err != nil {
		t.Errorf("Expected nil limiter to pass, got %v", err)
	}
	if PerMinute(0) != nil {
		t.Error("Expected PerMinute(0) to disable limiting")
	}

	rl := NewRateLimiter(1, time.Hour)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}
