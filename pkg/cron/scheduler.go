// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/payment-reports/internal/domain/import/inbox"
)

// Sweeper is implemented by inbox.Watcher.
type Sweeper interface {
	Sweep(ctx context.Context) (inbox.Summary, error)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	schedule string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that sweeps the inbox on schedule, a
// standard 5-field cron expression.
func NewScheduler(sweeper Sweeper, schedule string, timeout time.Duration, logger *slog.Logger) *Scheduler {
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Scheduler{
		cron:     c,
		sweeper:  sweeper,
		schedule: schedule,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweepInbox); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs. The returned context is done once
// a running sweep has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow triggers a sweep outside the schedule.
func (s *Scheduler) RunNow() {
	go s.sweepInbox()
}

func (s *Scheduler) sweepInbox() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	sum, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Error("inbox sweep failed",
			slog.Int("processed", sum.Processed),
			slog.Int("failed", sum.Failed),
			slog.Any("error", err),
		)
		return
	}

	s.logger.Debug("inbox sweep finished",
		slog.Int("processed", sum.Processed),
		slog.Int("failed", sum.Failed),
		slog.Duration("elapsed", time.Since(start)),
	)
}
