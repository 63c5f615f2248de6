// Package scheduler runs the node's periodic drivers. Each job gets its own
// ticker goroutine; a slow job never delays the others.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	jobs   []Job
	logger *slog.Logger
}

func New(logger *slog.Logger, jobs ...Job) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{jobs: jobs, logger: logger.With("module", "scheduler")}
}

func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

func (s *Scheduler) Jobs() []Job {
	return s.jobs
}

// Start runs every job until ctx is cancelled. Job errors are logged and the
// job runs again on its next tick.
func (s *Scheduler) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		if job.Interval <= 0 || job.Run == nil {
			s.logger.Warn("job_skipped", "job", job.Name)
			continue
		}
		job := job
		g.Go(func() error {
			s.loop(ctx, job)
			return nil
		})
	}
	s.logger.Info("scheduler_started", "jobs", len(s.jobs))
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx, job)
		}
	}
}

// RunOnce executes job a single time, logging its outcome.
func (s *Scheduler) RunOnce(ctx context.Context, job Job) error {
	start := time.Now()
	err := job.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("job_failed", "job", job.Name, "error", err)
		}
		return err
	}
	s.logger.Debug("job_completed", "job", job.Name, "elapsed", time.Since(start))
	return nil
}

// RunAll executes every job once in registration order. Used by the one-shot
// sync command.
func (s *Scheduler) RunAll(ctx context.Context) error {
	var firstErr error
	for _, job := range s.jobs {
		if job.Run == nil {
			continue
		}
		if err := s.RunOnce(ctx, job); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
