package infra

import (
	"context"

	"github.com/robfig/cron/v3"

	"cryptohustle/internal/logging"
)

// Scheduler runs the periodic maintenance jobs: the settlement sweep
// every 10 seconds and the leaderboard rank refresh every minute.
type Scheduler struct {
	cron        *cron.Cron
	sweep       func(ctx context.Context) error
	rankRefresh func(ctx context.Context) error
}

// NewScheduler creates a new scheduler
func NewScheduler(sweep, rankRefresh func(ctx context.Context) error) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		sweep:       sweep,
		rankRefresh: rankRefresh,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("*/10 * * * * *", func() {
		if err := s.sweep(context.Background()); err != nil {
			logging.Logg.Error("settlement sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc("0 * * * * *", func() {
		if err := s.rankRefresh(context.Background()); err != nil {
			logging.Logg.Error("rank refresh failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logging.Logg.Info("scheduler started",
		"settlement_sweep", "*/10 * * * * *", "rank_refresh", "0 * * * * *")
	return nil
}

// Stop stops the scheduler; running jobs finish first.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logging.Logg.Info("scheduler stopped")
}
