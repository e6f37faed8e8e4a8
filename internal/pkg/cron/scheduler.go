package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// job is a named function run on a fixed interval.
type job struct {
	name  string
	every time.Duration
	fn    func(ctx context.Context) error
}

// Scheduler runs background maintenance jobs on fixed intervals. Jobs are
// registered before Start; the zero job set is valid and Start is a no-op.
type Scheduler struct {
	mu     sync.Mutex
	jobs   []job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// AddJob registers a job. Each job runs once immediately on Start and then
// on every tick of its interval.
func (s *Scheduler) AddJob(name string, every time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job{name: name, every: every, fn: fn})
	slog.Info("Registered background job", "job", name, "every", every)
}

// Start launches one goroutine per registered job.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
	}

	slog.Info("Background jobs started", "jobs", len(s.jobs))
}

// Stop cancels the job context and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Background jobs stopped")
}

func (s *Scheduler) loop(j job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.every)
	defer ticker.Stop()

	s.run(j)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.run(j)
		}
	}
}

func (s *Scheduler) run(j job) {
	start := time.Now()

	if err := j.fn(s.ctx); err != nil {
		slog.Error("Background job failed", "job", j.name, "error", err, "took", time.Since(start))
		return
	}
	slog.Debug("Background job finished", "job", j.name, "took", time.Since(start))
}

// RunOnce executes every registered job a single time with the given
// context, outside any schedule.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if err := j.fn(ctx); err != nil {
			slog.Error("Background job failed", "job", j.name, "error", err)
		}
	}
}
