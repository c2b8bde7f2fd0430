package engine

import (
	"context"
	"time"

	"github.com/linkmirror/linkmirror/internal/models"
)

// Source is the read surface of the bookmark service, already scoped to the
// mirrored collection. Page numbering starts at zero; every listing is
// newest-first.
type Source interface {
	// ListRecent returns one page of the collection ordered by creation
	// time, newest first.
	ListRecent(ctx context.Context, page, perPage int) ([]models.Item, error)

	// SearchUpdatedSince returns one page of items whose last-modified date
	// is after the given date (date granularity only).
	SearchUpdatedSince(ctx context.Context, date time.Time, page, perPage int) ([]models.Item, error)

	// SearchCreatedSince returns one page of items created after the given
	// date (date granularity only).
	SearchCreatedSince(ctx context.Context, date time.Time, page, perPage int) ([]models.Item, error)

	// ItemDetail fetches one item directly, reporting existence and removal
	// regardless of which collection it currently sits in.
	ItemDetail(ctx context.Context, id int64) (models.ItemDetail, error)
}

// Ledger is the destination's row store keyed by source item ID.
type Ledger interface {
	// FindByItemIDs batch-resolves source IDs to existing non-archived rows.
	// IDs without a row are absent from the result.
	FindByItemIDs(ctx context.Context, ids []int64) (map[int64]models.RowRef, error)

	// Create inserts a new unlocked row for an item.
	Create(ctx context.Context, item models.Item, collectionTitle string) (string, error)

	// Update rewrites all mapped content fields of a row.
	Update(ctx context.Context, pageID string, item models.Item, collectionTitle string) error

	// UpdateCollection rewrites only the row's collection field.
	UpdateCollection(ctx context.Context, pageID string, collectionTitle string) error

	// MarkDeleteDetected flags the row as absent from the source.
	MarkDeleteDetected(ctx context.Context, pageID string, detectedAt time.Time, setPendingStatus bool) error

	// ClearDeleteFlags resets the delete flag and detection timestamp.
	ClearDeleteFlags(ctx context.Context, pageID string) error

	// Archive permanently archives the row.
	Archive(ctx context.Context, pageID string) error

	// ListAll enumerates every non-archived row.
	ListAll(ctx context.Context) ([]models.Row, error)
}

// TitleResolver resolves collection IDs to display titles. Implementations
// cache within one run; the cache never outlives an invocation.
type TitleResolver interface {
	Title(ctx context.Context, collectionID int64) (string, error)
}
