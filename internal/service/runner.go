// Package service orchestrates sync and reconcile runs between the source
// client and the destination ledger.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/linkmirror/linkmirror/internal/config"
	"github.com/linkmirror/linkmirror/internal/engine"
	"github.com/linkmirror/linkmirror/internal/metrics"
	"github.com/linkmirror/linkmirror/internal/models"
	"github.com/linkmirror/linkmirror/internal/notion"
	"github.com/linkmirror/linkmirror/internal/raindrop"
)

// Compile-time checks: the concrete clients satisfy the engine interfaces.
var (
	_ engine.Source        = (*raindrop.CollectionSource)(nil)
	_ engine.Ledger        = (*notion.Client)(nil)
	_ engine.TitleResolver = (*raindrop.TitleCache)(nil)
)

// SyncOptions are the per-invocation knobs of an incremental sync.
type SyncOptions struct {
	// DryRun classifies every candidate without writing anything.
	DryRun bool

	// Max caps the candidate set for controlled manual testing. Zero means
	// no cap.
	Max int
}

// ReconcileOptions are the per-invocation knobs of a full reconciliation.
type ReconcileOptions struct {
	DryRun bool
}

// Runner executes sync and reconcile runs one at a time per job. All durable
// state lives in the destination, so a Runner holds nothing but wiring; two
// deployments pointed at the same database converge on the same result.
type Runner struct {
	cfg      *config.Config
	raindrop *raindrop.Client
	source   *raindrop.CollectionSource
	ledger   *notion.Client
	log      *logrus.Logger
	clock    engine.Clock

	syncMu      sync.Mutex
	reconcileMu sync.Mutex
}

// NewRunner creates a Runner wired to the given clients.
func NewRunner(cfg *config.Config, rc *raindrop.Client, nc *notion.Client, log *logrus.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		raindrop: rc,
		source:   raindrop.NewCollectionSource(rc, cfg.RaindropCollectionID),
		ledger:   nc,
		log:      log,
		clock:    engine.SystemClock{},
	}
}

// Sync runs one incremental pass: build the candidate set for the current
// window, then upsert each candidate. Returns models.ErrRunInProgress when a
// sync is already running.
func (r *Runner) Sync(ctx context.Context, opts SyncOptions) (*models.SyncSummary, error) {
	if !r.syncMu.TryLock() {
		return nil, models.ErrRunInProgress
	}
	defer r.syncMu.Unlock()

	runID := uuid.New().String()
	started := r.clock.Now()
	log := r.log.WithFields(logrus.Fields{"run_id": runID, "job": "sync", "dry_run": opts.DryRun})
	log.Info("sync started")

	summary, err := r.runSync(ctx, runID, started, opts, log)
	r.observeRun("sync", started, err)
	if err != nil {
		log.WithError(err).Error("sync failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"candidates": summary.Candidates,
		"created":    len(summary.Created),
		"updated":    len(summary.Updated),
		"duration":   time.Duration(summary.DurationMS) * time.Millisecond,
	}).Info("sync finished")

	return summary, nil
}

func (r *Runner) runSync(
	ctx context.Context, runID string, started time.Time, opts SyncOptions, log *logrus.Entry,
) (*models.SyncSummary, error) {
	window := engine.Window(r.clock.Now(), r.cfg.LookbackHours, r.cfg.OverlapMinutes)
	log.WithField("window_since", window.Since).Debug("window computed")

	builder := engine.NewChangeSetBuilder(r.source, r.ledger, r.log)
	changeSet, err := builder.Build(ctx, window, engine.ChangeSetConfig{
		PageSize:                r.cfg.PageSize,
		MaxPages:                r.cfg.MaxPages,
		ConsecutiveExistingStop: r.cfg.ConsecutiveStop,
		MaxItems:                opts.Max,
	})
	if err != nil {
		return nil, err
	}

	titles := raindrop.NewTitleCache(r.raindrop)
	defaultTitle := r.defaultCollectionTitle(ctx, titles)

	upserter := engine.NewUpserter(r.ledger, titles, r.log)
	outcome, err := upserter.Apply(ctx, changeSet.Items, engine.UpsertConfig{
		DefaultCollectionTitle: defaultTitle,
		WriteDelay:             r.cfg.WriteDelay(),
		DryRun:                 opts.DryRun,
	})
	if err != nil {
		return nil, err
	}

	return &models.SyncSummary{
		RunID:           runID,
		DryRun:          opts.DryRun,
		PagesScanned:    changeSet.PagesScanned,
		StopReason:      changeSet.StopReason,
		Candidates:      len(changeSet.Items),
		Created:         outcome.Created,
		Updated:         outcome.Updated,
		SkippedLocked:   outcome.SkippedLocked,
		SkippedUpToDate: outcome.SkippedUpToDate,
		StartedAt:       started,
		DurationMS:      r.clock.Now().Sub(started).Milliseconds(),
	}, nil
}

// Reconcile runs one full set-difference pass over both populations. Returns
// models.ErrRunInProgress when a reconciliation is already running.
func (r *Runner) Reconcile(ctx context.Context, opts ReconcileOptions) (*models.ReconcileSummary, error) {
	if !r.reconcileMu.TryLock() {
		return nil, models.ErrRunInProgress
	}
	defer r.reconcileMu.Unlock()

	runID := uuid.New().String()
	started := r.clock.Now()
	log := r.log.WithFields(logrus.Fields{"run_id": runID, "job": "reconcile", "dry_run": opts.DryRun})
	log.Info("reconcile started")

	titles := raindrop.NewTitleCache(r.raindrop)
	reconciler := engine.NewReconciler(r.source, r.ledger, titles, r.log, r.clock)
	outcome, err := reconciler.Run(ctx, engine.ReconcileConfig{
		PageSize:   r.cfg.PageSize,
		MaxPages:   r.cfg.ReconcileMaxPages,
		Archive:    r.cfg.DeletionMode == config.DeletionArchive,
		Grace:      r.cfg.DeletionGrace(),
		WriteDelay: r.cfg.WriteDelay(),
		DryRun:     opts.DryRun,
	})
	r.observeRun("reconcile", started, err)
	if err != nil {
		log.WithError(err).Error("reconcile failed")
		return nil, err
	}

	summary := &models.ReconcileSummary{
		RunID:          runID,
		DryRun:         opts.DryRun,
		SourceItems:    outcome.SourceItems,
		LedgerRows:     outcome.LedgerRows,
		Moved:          outcome.Moved,
		DeleteDetected: outcome.DeleteDetected,
		InGrace:        outcome.InGrace,
		ArchivedRows:   outcome.Archived,
		Cleared:        outcome.Cleared,
		SkippedLocked:  outcome.SkippedLocked,
		StartedAt:      started,
		DurationMS:     r.clock.Now().Sub(started).Milliseconds(),
	}

	log.WithFields(logrus.Fields{
		"source_items":    summary.SourceItems,
		"ledger_rows":     summary.LedgerRows,
		"moved":           len(summary.Moved),
		"delete_detected": len(summary.DeleteDetected),
		"archived":        len(summary.ArchivedRows),
		"duration":        time.Duration(summary.DurationMS) * time.Millisecond,
	}).Info("reconcile finished")

	return summary, nil
}

// PingSource verifies source connectivity for readiness checks.
func (r *Runner) PingSource(ctx context.Context) error {
	return r.raindrop.Ping(ctx)
}

// PingDestination verifies destination connectivity for readiness checks.
func (r *Runner) PingDestination(ctx context.Context) error {
	return r.ledger.Ping(ctx)
}

// defaultCollectionTitle pre-resolves the mirrored collection's title so
// items without a collection reference still get a sensible value. A lookup
// failure degrades to an empty title rather than failing the run.
func (r *Runner) defaultCollectionTitle(ctx context.Context, titles *raindrop.TitleCache) string {
	title, err := titles.Title(ctx, r.cfg.RaindropCollectionID)
	if err != nil {
		r.log.WithError(err).WithField("collection_id", r.cfg.RaindropCollectionID).
			Debug("default collection title lookup failed")
		return ""
	}

	return title
}

func (r *Runner) observeRun(job string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.RunsTotal.WithLabelValues(job, result).Inc()
	metrics.RunDuration.WithLabelValues(job).Observe(r.clock.Now().Sub(started).Seconds())
}
