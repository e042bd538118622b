// Package scheduler runs the daily collection jobs and provides the retry
// and rate limiting used by them.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stock-trader/internal/logger"
)

// Job runs once per calendar day, at or after At (HH:MM) in the
// scheduler's timezone.
type Job struct {
	Name string
	At   string
	Run  func(ctx context.Context) error

	hour, minute int
}

type Scheduler struct {
	loc  *time.Location
	poll time.Duration
	jobs []*Job
	now  func() time.Time

	mu      sync.Mutex
	lastRun map[string]string
	running map[string]bool
}

func New(loc *time.Location, poll time.Duration) *Scheduler {
	if poll <= 0 {
		poll = 30 * time.Second
	}
	return &Scheduler{
		loc:     loc,
		poll:    poll,
		now:     time.Now,
		lastRun: make(map[string]string),
		running: make(map[string]bool),
	}
}

func (s *Scheduler) Add(job Job) error {
	t, err := time.Parse("15:04", job.At)
	if err != nil {
		return fmt.Errorf("job %s: invalid time %q: %w", job.Name, job.At, err)
	}
	if job.Run == nil {
		return fmt.Errorf("job %s: nil run func", job.Name)
	}
	job.hour, job.minute = t.Hour(), t.Minute()
	s.jobs = append(s.jobs, &job)
	return nil
}

// due reports whether job should start at now. A job missed earlier in the
// day (e.g. the process started late) is due immediately.
func (s *Scheduler) due(job *Job, now time.Time) bool {
	local := now.In(s.loc)
	today := local.Format("2006-01-02")
	if s.lastRun[job.Name] == today || s.running[job.Name] {
		return false
	}
	at := time.Date(local.Year(), local.Month(), local.Day(), job.hour, job.minute, 0, 0, s.loc)
	return !local.Before(at)
}

// Run polls until ctx is cancelled, then waits for running jobs.
func (s *Scheduler) Run(ctx context.Context) error {
	logger.Info(ctx, "Scheduler started", "jobs", len(s.jobs), "timezone", s.loc.String())

	var wg sync.WaitGroup
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		s.tick(ctx, &wg)
		select {
		case <-ctx.Done():
			wg.Wait()
			logger.Info(context.Background(), "Scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, wg *sync.WaitGroup) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if !s.due(job, now) {
			continue
		}
		s.lastRun[job.Name] = now.In(s.loc).Format("2006-01-02")
		s.running[job.Name] = true

		wg.Add(1)
		go func(job *Job) {
			defer wg.Done()
			s.runJob(ctx, job)
		}(job)
	}
}

func (s *Scheduler) runJob(ctx context.Context, job *Job) {
	op := logger.StartOperation(ctx, "scheduler."+job.Name)
	err := job.Run(op.GetContext())
	if err != nil {
		op.EndWithError(err, "job", job.Name)
	} else {
		op.End("job", job.Name)
		logger.Info(ctx, "Scheduled job finished", "job", job.Name)
	}

	s.mu.Lock()
	delete(s.running, job.Name)
	s.mu.Unlock()
}

// Chain runs steps in order and stops at the first error.
func Chain(steps ...func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		for _, step := range steps {
			if err := step(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
