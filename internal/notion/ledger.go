package notion

import (
	"context"
	"net/http"
	"time"

	"github.com/linkmirror/linkmirror/internal/models"
)

// lookupChunkSize bounds the number of OR clauses per database query.
const lookupChunkSize = 25

// defaultQueryPageSize is the page size for full-database enumeration.
const defaultQueryPageSize = 100

type queryRequest struct {
	Filter      any    `json:"filter,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// FindByItemIDs returns the non-archived rows matching the given source IDs,
// keyed by source ID. Lookups are chunked to respect the API's filter-clause
// limit; absent IDs are simply missing from the result.
func (c *Client) FindByItemIDs(ctx context.Context, ids []int64) (map[int64]models.RowRef, error) {
	found := make(map[int64]models.RowRef, len(ids))

	for start := 0; start < len(ids); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(ids))

		clauses := make([]any, 0, end-start)
		for _, id := range ids[start:end] {
			clauses = append(clauses, map[string]any{
				"property": propID,
				"number":   map[string]any{"equals": id},
			})
		}

		err := c.queryPages(ctx, map[string]any{"or": clauses}, func(p page) {
			if row, ok := p.toRow(); ok {
				found[row.ItemID] = row.Ref()
			}
		})
		if err != nil {
			return nil, err
		}
	}

	return found, nil
}

// ListAll enumerates every non-archived row of the mirror database.
func (c *Client) ListAll(ctx context.Context) ([]models.Row, error) {
	var rows []models.Row
	err := c.queryPages(ctx, nil, func(p page) {
		if row, ok := p.toRow(); ok {
			rows = append(rows, row)
		}
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (c *Client) queryPages(ctx context.Context, filter any, visit func(page)) error {
	cursor := ""
	for {
		req := queryRequest{Filter: filter, StartCursor: cursor, PageSize: defaultQueryPageSize}

		var resp queryResponse
		if err := c.doJSON(ctx, http.MethodPost, "/v1/databases/"+c.databaseID+"/query", req, &resp); err != nil {
			return err
		}

		for _, p := range resp.Results {
			if !p.Archived {
				visit(p)
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			return nil
		}
		cursor = resp.NextCursor
	}
}

// Create inserts a new row for an item. The row starts unlocked with its
// stored last-modified set to the item's.
func (c *Client) Create(ctx context.Context, item models.Item, collectionTitle string) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"database_id": c.databaseID},
		"properties": createProperties(item, collectionTitle, c.now()),
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/pages", body, &created); err != nil {
		return "", err
	}

	return created.ID, nil
}

// Update rewrites all mapped content fields of an existing row and bumps the
// stored last-modified and sync timestamps. Properties outside the mapped set
// are left untouched.
func (c *Client) Update(ctx context.Context, pageID string, item models.Item, collectionTitle string) error {
	return c.patchProperties(ctx, pageID, contentProperties(item, collectionTitle, c.now()))
}

// UpdateCollection rewrites only the row's collection property (plus the sync
// timestamp), used when reconciliation detects an item moved between
// collections.
func (c *Client) UpdateCollection(ctx context.Context, pageID string, collectionTitle string) error {
	props := map[string]any{
		propLastSynced: dateProp(c.now()),
	}
	if collectionTitle != "" {
		props[propCollection] = selectProp(collectionTitle)
	}

	return c.patchProperties(ctx, pageID, props)
}

// MarkDeleteDetected flags a row as absent from the source. The deleted flag
// and detection timestamp are always set together; setPendingStatus
// additionally moves the workflow status to the archive-pending state.
func (c *Client) MarkDeleteDetected(ctx context.Context, pageID string, detectedAt time.Time, setPendingStatus bool) error {
	props := map[string]any{
		propDeleted:        checkboxProp(true),
		propDeleteDetected: dateProp(detectedAt),
		propLastSynced:     dateProp(c.now()),
	}
	if setPendingStatus {
		props[propStatus] = selectProp(statusArchivePending)
	}

	return c.patchProperties(ctx, pageID, props)
}

// ClearDeleteFlags resets the deleted flag and detection timestamp together,
// used when an item reappears in the source.
func (c *Client) ClearDeleteFlags(ctx context.Context, pageID string) error {
	return c.patchProperties(ctx, pageID, map[string]any{
		propDeleted:        checkboxProp(false),
		propDeleteDetected: dateProp(time.Time{}),
		propLastSynced:     dateProp(c.now()),
	})
}

// Archive permanently archives a row. Terminal: archived rows disappear from
// queries, freeing their source ID for a future re-create.
func (c *Client) Archive(ctx context.Context, pageID string) error {
	return c.doJSON(ctx, http.MethodPatch, "/v1/pages/"+pageID, map[string]any{"archived": true}, nil)
}

func (c *Client) patchProperties(ctx context.Context, pageID string, props map[string]any) error {
	return c.doJSON(ctx, http.MethodPatch, "/v1/pages/"+pageID, map[string]any{"properties": props}, nil)
}
