package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var kst = time.FixedZone("KST", 9*3600)

func TestJobDue(t *testing.T) {
	s := New(kst, time.Second)
	if err := s.Add(Job{Name: "news", At: "08:00", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatal(err)
	}
	job := s.jobs[0]

	tests := []struct {
		now  time.Time
		want bool
	}{
		{time.Date(2024, 3, 15, 7, 59, 0, 0, kst), false},
		{time.Date(2024, 3, 15, 8, 0, 0, 0, kst), true},
		{time.Date(2024, 3, 15, 22, 0, 0, 0, kst), true},
		// 23:30 UTC on the 14th is 08:30 KST on the 15th
		{time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		if got := s.due(job, tt.now); got != tt.want {
			t.Errorf("due at %v: expected %v, got %v", tt.now, tt.want, got)
		}
	}

	s.lastRun["news"] = "2024-03-15"
	if s.due(job, time.Date(2024, 3, 15, 9, 0, 0, 0, kst)) {
		t.Error("Expected job not due twice on the same day")
	}
	if !s.due(job, time.Date(2024, 3, 16, 8, 0, 0, 0, kst)) {
		t.Error("Expected job due the next day")
	}
}

func TestAddRejectsInvalidJobs(t *testing.T) {
	s := New(kst, 0)
	if err := s.Add(Job{Name: "x", At: "25:00", Run: func(context.Context) error { return nil }}); err == nil {
		t.Error("Expected error for invalid time")
	}
	if err := s.Add(Job{Name: "x", At: "08:00"}); err == nil {
		t.Error("Expected error for nil run func")
	}
}

func TestTickRunsOncePerDay(t *testing.T) {
	var runs int32
	s := New(kst, time.Second)
	s.now = func() time.Time { return time.Date(2024, 3, 15, 16, 5, 0, 0, kst) }
	_ = s.Add(Job{Name: "market", At: "16:00", Run: func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}})

	var wg sync.WaitGroup
	s.tick(context.Background(), &wg)
	wg.Wait()
	s.tick(context.Background(), &wg)
	wg.Wait()

	if runs != 1 {
		t.Errorf("Expected 1 run, got %d", runs)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(kst, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Scheduler did not stop")
	}
}

func TestChain(t *testing.T) {
	var order []string
	step := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return err
		}
	}
	boom := errors.New("boom")

	err := Chain(step("crawl", nil), step("analyze", boom), step("never", nil))(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
	if len(order) != 2 || order[1] != "analyze" {
		t.Errorf("Unexpected order %v", order)
	}
}
