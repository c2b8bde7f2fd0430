package raindrop

import (
	"context"
	"fmt"
	"time"

	"github.com/linkmirror/linkmirror/internal/models"
)

// CollectionSource binds a Client to a single collection and translates the
// engine's date-based queries into Raindrop search syntax.
type CollectionSource struct {
	client       *Client
	collectionID int64
}

// NewCollectionSource creates a collection-scoped source.
func NewCollectionSource(client *Client, collectionID int64) *CollectionSource {
	return &CollectionSource{client: client, collectionID: collectionID}
}

// ListRecent returns one page of the collection, newest creations first.
func (s *CollectionSource) ListRecent(ctx context.Context, page, perPage int) ([]models.Item, error) {
	return s.client.ListRecent(ctx, s.collectionID, page, perPage, SortNewestCreated)
}

// SearchUpdatedSince returns one page of items updated on or after the given
// date, newest updates first. The search operator has day granularity, so the
// query uses the day before to keep the boundary inclusive.
func (s *CollectionSource) SearchUpdatedSince(ctx context.Context, since time.Time, page, perPage int) ([]models.Item, error) {
	return s.client.Search(ctx, s.collectionID, dateQuery("lastUpdate", since), page, perPage, SortNewestUpdated)
}

// SearchCreatedSince returns one page of items created on or after the given
// date, newest first.
func (s *CollectionSource) SearchCreatedSince(ctx context.Context, since time.Time, page, perPage int) ([]models.Item, error) {
	return s.client.Search(ctx, s.collectionID, dateQuery("created", since), page, perPage, SortNewestCreated)
}

// ItemDetail fetches one bookmark by ID regardless of collection.
func (s *CollectionSource) ItemDetail(ctx context.Context, id int64) (models.ItemDetail, error) {
	return s.client.ItemDetail(ctx, id)
}

// dateQuery builds a "field:>YYYY-MM-DD" operator query. The strict operator
// paired with the previous day yields an inclusive since-date match.
func dateQuery(field string, since time.Time) string {
	day := since.UTC().AddDate(0, 0, -1)
	return fmt.Sprintf("%s:>%s", field, day.Format("2006-01-02"))
}
