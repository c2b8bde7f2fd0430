package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/linkmirror/linkmirror/internal/metrics"
	"github.com/linkmirror/linkmirror/internal/models"
)

// ChangeSetConfig bounds one candidate scan.
type ChangeSetConfig struct {
	// PageSize is the number of items requested per source page.
	PageSize int

	// MaxPages bounds each paginated scan. Exhausting the budget halts the
	// scan normally; it is not an error.
	MaxPages int

	// ConsecutiveExistingStop is how many already-mirrored items must be seen
	// in a row before an item older than the window ends the recency scan.
	ConsecutiveExistingStop int

	// MaxItems is a caller-supplied hard cap for controlled manual testing.
	// Zero means no cap. When the cap truncates the union, which entries
	// survive is unspecified.
	MaxItems int
}

// ChangeSet is the deduplicated candidate set produced by one scan.
type ChangeSet struct {
	Items        []models.Item
	PagesScanned int
	StopReason   models.StopReason
}

// ChangeSetBuilder collects create/update candidates from two independent
// paginated scans of the source and unions them by item ID.
type ChangeSetBuilder struct {
	source Source
	ledger Ledger
	log    *logrus.Logger
}

// NewChangeSetBuilder creates a ChangeSetBuilder.
func NewChangeSetBuilder(source Source, ledger Ledger, log *logrus.Logger) *ChangeSetBuilder {
	return &ChangeSetBuilder{source: source, ledger: ledger, log: log}
}

// Build runs the recency scan and the two change scans sequentially and
// merges their results. Later scans overwrite earlier entries for the same
// ID; source items are immutable within a run, so the content is identical
// either way.
func (b *ChangeSetBuilder) Build(ctx context.Context, window models.SyncWindow, cfg ChangeSetConfig) (*ChangeSet, error) {
	candidates := make(map[int64]models.Item)

	recencyPages, stopReason, err := b.recencyScan(ctx, window, cfg, candidates)
	if err != nil {
		return nil, err
	}

	searchPages, err := b.changeScan(ctx, window, cfg, candidates)
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(candidates))
	for _, item := range candidates {
		if cfg.MaxItems > 0 && len(items) >= cfg.MaxItems {
			break
		}
		items = append(items, item)
	}

	b.log.WithFields(logrus.Fields{
		"candidates":    len(items),
		"recency_pages": recencyPages,
		"search_pages":  searchPages,
		"stop_reason":   stopReason,
	}).Debug("change set built")

	return &ChangeSet{
		Items:        items,
		PagesScanned: recencyPages + searchPages,
		StopReason:   stopReason,
	}, nil
}

// recencyScan walks the newest-first listing, accepting items created inside
// the window. Existence lookups feed only the stop rule: a run of
// consecutive already-mirrored items past the window edge means further
// pages are redundant.
func (b *ChangeSetBuilder) recencyScan(
	ctx context.Context, window models.SyncWindow, cfg ChangeSetConfig, candidates map[int64]models.Item,
) (int, models.StopReason, error) {
	consecutiveExisting := 0
	pages := 0

	for pageIdx := 0; ; pageIdx++ {
		if pageIdx >= cfg.MaxPages {
			return pages, models.StopPageBudget, nil
		}

		items, err := b.source.ListRecent(ctx, pageIdx, cfg.PageSize)
		if err != nil {
			return pages, "", err
		}
		pages++
		metrics.PagesScanned.WithLabelValues("recency").Inc()

		if len(items) == 0 {
			return pages, models.StopEmptyPage, nil
		}

		ids := make([]int64, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		existing, err := b.ledger.FindByItemIDs(ctx, ids)
		if err != nil {
			return pages, "", err
		}

		pastWindow := false
		for _, item := range items {
			if _, ok := existing[item.ID]; ok {
				consecutiveExisting++
			} else {
				consecutiveExisting = 0
			}

			if window.Contains(item.Created) {
				candidates[item.ID] = item
			} else if consecutiveExisting >= cfg.ConsecutiveExistingStop {
				pastWindow = true
			}
		}

		if cfg.MaxItems > 0 && pageIdx == 0 && len(candidates) >= cfg.MaxItems {
			return pages, models.StopItemCap, nil
		}
		if pastWindow {
			return pages, models.StopPastWindow, nil
		}
		if len(items) < cfg.PageSize {
			return pages, models.StopShortPage, nil
		}
	}
}

// changeScan runs the two date-filtered searches (modified-after and
// created-after) and folds every hit into the candidate set.
func (b *ChangeSetBuilder) changeScan(
	ctx context.Context, window models.SyncWindow, cfg ChangeSetConfig, candidates map[int64]models.Item,
) (int, error) {
	scans := []func(ctx context.Context, page int) ([]models.Item, error){
		func(ctx context.Context, page int) ([]models.Item, error) {
			return b.source.SearchUpdatedSince(ctx, window.SinceDate, page, cfg.PageSize)
		},
		func(ctx context.Context, page int) ([]models.Item, error) {
			return b.source.SearchCreatedSince(ctx, window.SinceDate, page, cfg.PageSize)
		},
	}

	pages := 0
	for _, scan := range scans {
		for pageIdx := 0; pageIdx < cfg.MaxPages; pageIdx++ {
			items, err := scan(ctx, pageIdx)
			if err != nil {
				return pages, err
			}
			pages++
			metrics.PagesScanned.WithLabelValues("search").Inc()

			for _, item := range items {
				candidates[item.ID] = item
			}

			if len(items) < cfg.PageSize {
				break
			}
		}
	}

	return pages, nil
}
