// Package scheduler runs periodic re-analysis of stored jobs that have no
// analysis yet.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// Reanalyzer is the slice of the dashboard use case the scheduler needs.
type Reanalyzer interface {
	ReanalyzePending(ctx context.Context, limit int) (int, error)
}

// Scheduler wraps robfig/cron and manages the re-analysis loop.
type Scheduler struct {
	cron    *cron.Cron
	target  Reanalyzer
	spec    string
	batch   int
	running atomic.Bool
	log     *slog.Logger
}

func New(target Reanalyzer, spec string, batch int, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if batch <= 0 {
		batch = 50
	}
	return &Scheduler{
		cron:   cron.New(),
		target: target,
		spec:   spec,
		batch:  batch,
		log:    log.With("component", "scheduler"),
	}
}

// Start registers the job and starts cron. ctx is handed to every cycle.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("reanalysis scheduled", "spec", s.spec, "batch", s.batch)
	return nil
}

// Stop waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunOnce executes one cycle; a cycle that is still running makes it a no-op.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("previous reanalysis cycle still running, skipping")
		return 0
	}
	defer s.running.Store(false)

	n, err := s.target.ReanalyzePending(ctx, s.batch)
	if err != nil {
		s.log.Error("reanalysis cycle failed", "err", err)
		return n
	}
	if n > 0 {
		s.log.Info("reanalysis cycle complete", "jobs", n)
	}
	return n
}
