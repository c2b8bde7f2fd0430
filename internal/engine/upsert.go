package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/linkmirror/linkmirror/internal/metrics"
	"github.com/linkmirror/linkmirror/internal/models"
)

// UpsertConfig controls one upsert pass over a candidate set.
type UpsertConfig struct {
	// DefaultCollectionTitle is the pre-resolved title of the mirrored
	// collection, used for items that carry no collection reference.
	DefaultCollectionTitle string

	// WriteDelay is the fixed pacing between mutating ledger calls. Reads
	// are never paced; dry runs never pace.
	WriteDelay time.Duration

	// DryRun suppresses every write while still classifying each candidate
	// exactly as a real run would.
	DryRun bool
}

// UpsertOutcome records the per-candidate decisions of one pass.
type UpsertOutcome struct {
	Created         []int64
	Updated         []int64
	SkippedLocked   []int64
	SkippedUpToDate []int64
}

// Upserter decides create / update / skip for each candidate against the
// ledger's current state.
type Upserter struct {
	ledger Ledger
	titles TitleResolver
	log    *logrus.Logger
	pacer  *pacer
}

// NewUpserter creates an Upserter.
func NewUpserter(ledger Ledger, titles TitleResolver, log *logrus.Logger) *Upserter {
	return &Upserter{ledger: ledger, titles: titles, log: log, pacer: &pacer{}}
}

// Apply processes every candidate in order. A failed write aborts the rest of
// the run; the ledger's idempotency makes the next scheduled run pick up
// where the true state stands.
func (u *Upserter) Apply(ctx context.Context, items []models.Item, cfg UpsertConfig) (*UpsertOutcome, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	refs, err := u.ledger.FindByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	outcome := &UpsertOutcome{}
	for _, item := range items {
		if err := u.applyOne(ctx, item, refs, cfg, outcome); err != nil {
			return nil, err
		}
	}

	return outcome, nil
}

func (u *Upserter) applyOne(
	ctx context.Context, item models.Item, refs map[int64]models.RowRef, cfg UpsertConfig, outcome *UpsertOutcome,
) error {
	title := u.resolveTitle(ctx, item, cfg.DefaultCollectionTitle)

	ref, exists := refs[item.ID]
	switch {
	case !exists:
		if !cfg.DryRun {
			if err := u.pacer.pace(ctx, cfg.WriteDelay); err != nil {
				return err
			}
			if _, err := u.ledger.Create(ctx, item, title); err != nil {
				return err
			}
		}
		outcome.Created = append(outcome.Created, item.ID)
		metrics.ItemsProcessed.WithLabelValues("created").Inc()

	case ref.Locked:
		outcome.SkippedLocked = append(outcome.SkippedLocked, item.ID)
		metrics.ItemsProcessed.WithLabelValues("skipped_locked").Inc()

	case item.ModifiedAt().After(ref.LastModified):
		if !cfg.DryRun {
			if err := u.pacer.pace(ctx, cfg.WriteDelay); err != nil {
				return err
			}
			if err := u.ledger.Update(ctx, ref.PageID, item, title); err != nil {
				return err
			}
		}
		outcome.Updated = append(outcome.Updated, item.ID)
		metrics.ItemsProcessed.WithLabelValues("updated").Inc()

	default:
		outcome.SkippedUpToDate = append(outcome.SkippedUpToDate, item.ID)
		metrics.ItemsProcessed.WithLabelValues("skipped_up_to_date").Inc()
	}

	return nil
}

// resolveTitle looks up the item's owning collection title, per item since a
// bookmark may have moved collections since last seen. Failures degrade to no
// title rather than failing the run.
func (u *Upserter) resolveTitle(ctx context.Context, item models.Item, fallback string) string {
	if item.Collection == nil {
		return fallback
	}

	title, err := u.titles.Title(ctx, item.Collection.ID)
	if err != nil {
		u.log.WithError(err).WithField("collection_id", item.Collection.ID).
			Debug("collection title lookup failed")
		return ""
	}

	return title
}

// pacer inserts a fixed delay between mutating calls, skipping the delay
// before the first one.
type pacer struct {
	mutated bool
}

func (p *pacer) pace(ctx context.Context, delay time.Duration) error {
	if !p.mutated {
		p.mutated = true
		return nil
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
