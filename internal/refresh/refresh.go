// Package refresh runs periodic generation refreshes so expired generations are
// rebuilt off the request path.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/flatsite/internal/logfields"
)

// Refresher rebuilds a generation when it is stale.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Func adapts a function to Refresher.
type Func func(ctx context.Context) error

func (f Func) Refresh(ctx context.Context) error { return f(ctx) }

// Scheduler wraps a gocron scheduler for refresh jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	slog.Info("Starting refresh scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down and waits for running jobs.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping refresh scheduler")
	return s.scheduler.Shutdown()
}

// Schedule runs r every interval under name. Overlapping runs are skipped.
// ctx is passed to every run.
func (s *Scheduler) Schedule(ctx context.Context, name string, interval time.Duration, r Refresher) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { run(ctx, name, r) }),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create refresh job: %w", err)
	}
	return job.ID().String(), nil
}

func run(ctx context.Context, name string, r Refresher) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := r.Refresh(ctx); err != nil {
		slog.Warn("Scheduled refresh failed", logfields.Job(name), logfields.Error(err))
		return
	}
	slog.Debug("Scheduled refresh finished", logfields.Job(name), logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
}
