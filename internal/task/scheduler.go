package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule computes the next activation time after the given time.
type Schedule interface {
	Next(time.Time) time.Time
}

var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule parses a cron expression with an optional leading seconds
// field, or a descriptor such as "@daily" or "@every 1h".
func ParseSchedule(expr string) (Schedule, error) {
	sched, err := scheduleParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return sched, nil
}

// Scheduler runs a job on a schedule from a single goroutine. A tick that
// runs long delays the next one; ticks never overlap.
type Scheduler struct {
	schedule Schedule
	job      func(ctx context.Context)
	now      func() time.Time
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler for job.
func NewScheduler(schedule Schedule, job func(ctx context.Context), logger *slog.Logger) (*Scheduler, error) {
	if schedule == nil {
		return nil, fmt.Errorf("schedule cannot be nil")
	}
	if job == nil {
		return nil, ErrNilJob
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		schedule: schedule,
		job:      job,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "scheduler")),
	}, nil
}

// Run blocks until ctx is cancelled, invoking the job at each activation.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		now := s.now()
		next := s.schedule.Next(now)
		if next.IsZero() {
			return fmt.Errorf("schedule has no future activations")
		}

		s.logger.InfoContext(ctx, "next collector run scheduled", slog.Time("at", next))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.InfoContext(ctx, "scheduler stopped")
			return nil
		case <-timer.C:
		}

		s.job(ctx)
	}
}
