package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type RateJobs interface {
	RefreshRates(ctx context.Context) error
	SweepCache() int
}

// Scheduler runs the periodic rate jobs on a cron.
type Scheduler struct {
	cron       *cron.Cron
	jobs       RateJobs
	jobTimeout time.Duration
	logger     *logrus.Logger
}

func NewScheduler(jobs RateJobs, jobTimeout time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:       jobs,
		jobTimeout: jobTimeout,
		logger:     logger,
	}
}

func (s *Scheduler) Register(sweepSchedule, refreshSchedule string) error {
	if _, err := s.cron.AddFunc(sweepSchedule, s.sweep); err != nil {
		return fmt.Errorf("add sweep job %q: %w", sweepSchedule, err)
	}
	if _, err := s.cron.AddFunc(refreshSchedule, s.refresh); err != nil {
		return fmt.Errorf("add refresh job %q: %w", refreshSchedule, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.WithField("jobs", len(s.cron.Entries())).Info("Scheduler started")
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
	}
}

func (s *Scheduler) sweep() {
	removed := s.jobs.SweepCache()
	s.logger.WithField("removed", removed).Debug("Rate cache sweep finished")
}

func (s *Scheduler) refresh() {
	s.logger.Info("Auto refreshing exchange rates...")
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	if err := s.jobs.RefreshRates(ctx); err != nil {
		s.logger.Errorf("Error refreshing exchange rates: %v", err)
		return
	}
	s.logger.Info("Exchange rates refreshed")
}
