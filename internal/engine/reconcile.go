package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/linkmirror/linkmirror/internal/metrics"
	"github.com/linkmirror/linkmirror/internal/models"
)

// ReconcileConfig controls one full-population reconciliation.
type ReconcileConfig struct {
	// PageSize and MaxPages bound the full source enumeration. The budget is
	// larger than the incremental scan's since the whole collection is walked.
	PageSize int
	MaxPages int

	// Archive enables permanent archiving once the grace period elapses.
	// When false, deletions are detected and flagged but nothing is ever
	// archived.
	Archive bool

	// Grace is how long a row stays in the deletion-detected state before it
	// may be archived, tolerating transient disappearance.
	Grace time.Duration

	// WriteDelay paces mutating calls; dry runs never pace.
	WriteDelay time.Duration

	// DryRun suppresses every write while reporting every classification.
	DryRun bool
}

// ReconcileOutcome records the per-row classifications of one run.
type ReconcileOutcome struct {
	SourceItems    int
	LedgerRows     int
	Moved          []int64
	DeleteDetected []int64
	InGrace        []int64
	Archived       []int64
	Cleared        []int64
	SkippedLocked  []int64
}

// Reconciler computes the set difference between the full source population
// and the full ledger population, classifying every ledger-only row as moved
// or deleted with a grace period before permanent archive.
type Reconciler struct {
	source Source
	ledger Ledger
	titles TitleResolver
	log    *logrus.Logger
	clock  Clock
	pacer  *pacer
}

// NewReconciler creates a Reconciler.
func NewReconciler(source Source, ledger Ledger, titles TitleResolver, log *logrus.Logger, clock Clock) *Reconciler {
	return &Reconciler{source: source, ledger: ledger, titles: titles, log: log, clock: clock, pacer: &pacer{}}
}

// Run enumerates both populations and processes every ledger row. Rows are
// handled strictly in order; a failed write aborts the remainder and the next
// nightly run re-derives everything from ledger state.
func (r *Reconciler) Run(ctx context.Context, cfg ReconcileConfig) (*ReconcileOutcome, error) {
	sourceIDs, err := r.enumerateSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rows, err := r.ledger.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	outcome := &ReconcileOutcome{
		SourceItems: len(sourceIDs),
		LedgerRows:  len(rows),
	}

	for _, row := range rows {
		if _, present := sourceIDs[row.ItemID]; present {
			if err := r.reconcilePresent(ctx, row, cfg, outcome); err != nil {
				return nil, err
			}
			continue
		}

		if err := r.reconcileAbsent(ctx, row, cfg, outcome); err != nil {
			return nil, err
		}
	}

	return outcome, nil
}

// enumerateSource pages through the entire collection collecting item IDs.
func (r *Reconciler) enumerateSource(ctx context.Context, cfg ReconcileConfig) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})

	for pageIdx := 0; pageIdx < cfg.MaxPages; pageIdx++ {
		items, err := r.source.ListRecent(ctx, pageIdx, cfg.PageSize)
		if err != nil {
			return nil, err
		}
		metrics.PagesScanned.WithLabelValues("reconcile").Inc()

		for _, item := range items {
			ids[item.ID] = struct{}{}
		}

		if len(items) < cfg.PageSize {
			break
		}
	}

	return ids, nil
}

// reconcilePresent handles a row whose item is still in the collection: the
// only work left is clearing a stale deletion flag from a reappeared item.
func (r *Reconciler) reconcilePresent(
	ctx context.Context, row models.Row, cfg ReconcileConfig, outcome *ReconcileOutcome,
) error {
	if row.State() != models.DeletionDetected {
		return nil
	}

	if row.Locked {
		outcome.SkippedLocked = append(outcome.SkippedLocked, row.ItemID)
		return nil
	}

	if !cfg.DryRun {
		if err := r.pacer.pace(ctx, cfg.WriteDelay); err != nil {
			return err
		}
		if err := r.ledger.ClearDeleteFlags(ctx, row.PageID); err != nil {
			return err
		}
	}
	outcome.Cleared = append(outcome.Cleared, row.ItemID)

	return nil
}

// reconcileAbsent disambiguates a ledger row missing from the collection
// enumeration: a targeted detail lookup separates "moved to another
// collection" from "truly removed".
func (r *Reconciler) reconcileAbsent(
	ctx context.Context, row models.Row, cfg ReconcileConfig, outcome *ReconcileOutcome,
) error {
	detail, err := r.source.ItemDetail(ctx, row.ItemID)
	if err != nil {
		// The client already retried transient failures. Treating a still-
		// failing check as not-found keeps the delete pipeline moving; the
		// grace period is what protects against a false positive here.
		r.log.WithError(err).WithField("item_id", row.ItemID).
			Warn("detail check failed, treating as removed")
		detail = models.ItemDetail{}
	}

	if detail.Exists && !detail.Removed {
		return r.reconcileMoved(ctx, row, detail, cfg, outcome)
	}

	return r.reconcileDeleted(ctx, row, cfg, outcome)
}

func (r *Reconciler) reconcileMoved(
	ctx context.Context, row models.Row, detail models.ItemDetail, cfg ReconcileConfig, outcome *ReconcileOutcome,
) error {
	if row.Locked {
		outcome.SkippedLocked = append(outcome.SkippedLocked, row.ItemID)
		return nil
	}

	title, err := r.titles.Title(ctx, detail.CollectionID)
	if err != nil {
		r.log.WithError(err).WithField("collection_id", detail.CollectionID).
			Debug("collection title lookup failed")
		title = ""
	}

	if !cfg.DryRun {
		if err := r.pacer.pace(ctx, cfg.WriteDelay); err != nil {
			return err
		}
		if err := r.ledger.UpdateCollection(ctx, row.PageID, title); err != nil {
			return err
		}
		if row.State() == models.DeletionDetected {
			if err := r.pacer.pace(ctx, cfg.WriteDelay); err != nil {
				return err
			}
			if err := r.ledger.ClearDeleteFlags(ctx, row.PageID); err != nil {
				return err
			}
		}
	}
	outcome.Moved = append(outcome.Moved, row.ItemID)

	return nil
}

// reconcileDeleted advances the delete state machine:
// Present -> DeletionDetected -> (grace) -> Archived.
// Locked rows never move; every transition on them degrades to a skip.
func (r *Reconciler) reconcileDeleted(
	ctx context.Context, row models.Row, cfg ReconcileConfig, outcome *ReconcileOutcome,
) error {
	if row.Locked {
		outcome.SkippedLocked = append(outcome.SkippedLocked, row.ItemID)
		return nil
	}

	now := r.clock.Now()

	switch row.State() {
	case models.Present:
		if !cfg.DryRun {
			if err := r.pacer.pace(ctx, cfg.WriteDelay); err != nil {
				return err
			}
			if err := r.ledger.MarkDeleteDetected(ctx, row.PageID, now, true); err != nil {
				return err
			}
		}
		outcome.DeleteDetected = append(outcome.DeleteDetected, row.ItemID)
		metrics.DeletionsDetected.Inc()

	case models.DeletionDetected:
		if now.Sub(row.DeleteDetectedAt) < cfg.Grace {
			outcome.InGrace = append(outcome.InGrace, row.ItemID)
			return nil
		}

		if !cfg.Archive {
			outcome.SkippedLocked = append(outcome.SkippedLocked, row.ItemID)
			return nil
		}

		if !cfg.DryRun {
			if err := r.pacer.pace(ctx, cfg.WriteDelay); err != nil {
				return err
			}
			if err := r.ledger.Archive(ctx, row.PageID); err != nil {
				return err
			}
		}
		outcome.Archived = append(outcome.Archived, row.ItemID)
		metrics.RowsArchived.Inc()
	}

	return nil
}
