package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Scheduler periodically triggers a discovery run.
type Scheduler struct {
	runner *Runner
	logger *slog.Logger
}

// NewScheduler creates a run scheduler.
func NewScheduler(runner *Runner, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		logger: logger.With(slog.String("component", "discovery-scheduler")),
	}
}

// Start blocks until the context is canceled, running discovery on each tick.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.logger.Error("discovery scheduler not started: non-positive interval", "interval", interval.String())
		return
	}
	s.logger.Info("discovery scheduler started", "interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("discovery scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	sink := func(line string) {
		s.logger.Debug(line)
	}
	id, res, err := s.runner.Run(ctx, sink)
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.logger.Info("scheduled discovery skipped: run in progress", "run_id", id)
	case err != nil:
		s.logger.Error("scheduled discovery failed", "run_id", id, "error", err)
	default:
		s.logger.Info("scheduled discovery complete", "run_id", id, "artists", len(res.Artists))
	}
}
