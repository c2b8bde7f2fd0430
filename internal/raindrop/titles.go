package raindrop

import "context"

// TitleCache memoizes collection-title lookups for the duration of one run.
// It is deliberately not shared across invocations: a stateless deployment
// starts cold every run, and titles change rarely enough that one lookup per
// collection per run is cheap.
type TitleCache struct {
	client *Client
	titles map[int64]string
}

// NewTitleCache creates an empty per-run cache backed by the given client.
func NewTitleCache(client *Client) *TitleCache {
	return &TitleCache{
		client: client,
		titles: make(map[int64]string),
	}
}

// Title resolves a collection's display title, caching successful lookups.
// Failures are returned to the caller and not cached, so a transient error
// on one item does not poison the rest of the run.
func (tc *TitleCache) Title(ctx context.Context, collectionID int64) (string, error) {
	if title, ok := tc.titles[collectionID]; ok {
		return title, nil
	}

	title, err := tc.client.CollectionTitle(ctx, collectionID)
	if err != nil {
		return "", err
	}

	tc.titles[collectionID] = title

	return title, nil
}
