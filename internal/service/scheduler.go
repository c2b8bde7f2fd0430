package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/linkmirror/linkmirror/internal/models"
)

// Scheduler triggers periodic runs on a Runner. It is optional: deployments
// driven by an external cron hitting the HTTP API leave both intervals at
// zero and never start one.
type Scheduler struct {
	runner *Runner
	log    *logrus.Logger

	syncEvery      time.Duration
	reconcileEvery time.Duration
}

// NewScheduler creates a Scheduler. A zero interval disables that job.
func NewScheduler(runner *Runner, log *logrus.Logger, syncEvery, reconcileEvery time.Duration) *Scheduler {
	return &Scheduler{
		runner:         runner,
		log:            log,
		syncEvery:      syncEvery,
		reconcileEvery: reconcileEvery,
	}
}

// Run drives the enabled tickers until the context is cancelled. An overlap
// with a run triggered over HTTP is skipped, not queued; the next tick
// catches up because every run re-derives its work from destination state.
func (s *Scheduler) Run(ctx context.Context) {
	syncTick := tickerChan(s.syncEvery)
	reconcileTick := tickerChan(s.reconcileEvery)

	if s.syncEvery > 0 {
		s.log.WithField("every", s.syncEvery.String()).Info("sync schedule enabled")
	}
	if s.reconcileEvery > 0 {
		s.log.WithField("every", s.reconcileEvery.String()).Info("reconcile schedule enabled")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-syncTick:
			if _, err := s.runner.Sync(ctx, SyncOptions{}); err != nil {
				s.logRunError("sync", err)
			}
		case <-reconcileTick:
			if _, err := s.runner.Reconcile(ctx, ReconcileOptions{}); err != nil {
				s.logRunError("reconcile", err)
			}
		}
	}
}

func (s *Scheduler) logRunError(job string, err error) {
	if errors.Is(err, models.ErrRunInProgress) {
		s.log.WithField("job", job).Info("scheduled run skipped, already running")
		return
	}
	s.log.WithError(err).WithField("job", job).Error("scheduled run failed")
}

// tickerChan returns a nil channel for disabled jobs; a nil channel never
// fires in a select.
func tickerChan(every time.Duration) <-chan time.Time {
	if every <= 0 {
		return nil
	}

	return time.NewTicker(every).C
}
