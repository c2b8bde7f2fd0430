// Package raindrop provides a typed client for the Raindrop bookmark API,
// covering the read surface the mirror needs: paginated listing, field
// search, collection lookup, and single-item detail.
package raindrop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/linkmirror/linkmirror/internal/config"
	"github.com/linkmirror/linkmirror/internal/models"
)

// trashCollectionID is the well-known collection holding removed bookmarks.
const trashCollectionID = -99

// Sort orders accepted by the listing and search endpoints.
const (
	SortNewestCreated = "-created"
	SortNewestUpdated = "-lastUpdate"
)

// Client is a Raindrop REST API client.
type Client struct {
	baseURL    string
	token      config.Secret
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry overrides the retry budget and backoff bounds.
func WithRetry(maxRetries int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
		c.maxDelay = maxDelay
	}
}

// New creates a Raindrop client for the given base URL (e.g. "https://api.raindrop.io").
func New(baseURL string, token config.Secret, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		maxRetries: 3,
		baseDelay:  200 * time.Millisecond,
		maxDelay:   3 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}

	return c
}

// ListRecent returns one page of the collection's bookmarks in the given sort
// order. Page numbering starts at zero.
func (c *Client) ListRecent(ctx context.Context, collectionID int64, page, perPage int, sort string) ([]models.Item, error) {
	return c.listPage(ctx, collectionID, "", page, perPage, sort)
}

// Search returns one page of bookmarks matching a field/operator query such
// as "lastUpdate:>2024-01-02".
func (c *Client) Search(ctx context.Context, collectionID int64, query string, page, perPage int, sort string) ([]models.Item, error) {
	return c.listPage(ctx, collectionID, query, page, perPage, sort)
}

func (c *Client) listPage(ctx context.Context, collectionID int64, search string, page, perPage int, sort string) ([]models.Item, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("perpage", strconv.Itoa(perPage))
	if sort != "" {
		q.Set("sort", sort)
	}
	if search != "" {
		q.Set("search", search)
	}

	var resp itemsResponse
	path := fmt.Sprintf("/rest/v1/raindrops/%d?%s", collectionID, q.Encode())
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(resp.Items))
	for _, raw := range resp.Items {
		items = append(items, raw.toModel())
	}

	return items, nil
}

// CollectionTitle returns the display title of a collection.
func (c *Client) CollectionTitle(ctx context.Context, collectionID int64) (string, error) {
	var resp collectionResponse
	path := fmt.Sprintf("/rest/v1/collection/%d", collectionID)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return "", err
	}

	return resp.Item.Title, nil
}

// ItemDetail fetches a single bookmark directly, reporting whether it still
// exists and whether it sits in the trash collection. A 404 maps to
// Exists=false rather than an error.
func (c *Client) ItemDetail(ctx context.Context, id int64) (models.ItemDetail, error) {
	var resp itemResponse
	path := fmt.Sprintf("/rest/v1/raindrop/%d", id)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		if IsNotFound(err) {
			return models.ItemDetail{}, nil
		}

		return models.ItemDetail{}, err
	}

	return models.ItemDetail{
		Exists:       true,
		Removed:      resp.Item.Removed || resp.Item.Collection.ID == trashCollectionID,
		CollectionID: resp.Item.Collection.ID,
		LastUpdate:   resp.Item.LastUpdate,
	}, nil
}

// Ping verifies the token against the authenticated-user endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.getJSON(ctx, "/rest/v1/user", nil)
}

// getJSON performs a GET with bounded retry. Raindrop throttles aggressively,
// so 429 and 5xx responses are retried with exponential backoff honoring
// Retry-After.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token.Value())
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if waitErr := waitWithContext(ctx, retryDelay(attempt+1, "", c.baseDelay, c.maxDelay)); waitErr != nil {
					return waitErr
				}
				continue
			}

			return fmt.Errorf("raindrop request failed: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return readErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			if out == nil || len(body) == 0 {
				return nil
			}

			return json.Unmarshal(body, out)
		}

		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries {
			if waitErr := waitWithContext(ctx, retryDelay(attempt+1, resp.Header.Get("Retry-After"), c.baseDelay, c.maxDelay)); waitErr != nil {
				return waitErr
			}
			continue
		}

		return parseAPIError(resp.StatusCode, body)
	}
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

func retryDelay(attempt int, retryAfterHeader string, baseDelay, maxDelay time.Duration) time.Duration {
	if retryAfter := parseRetryAfterSeconds(retryAfterHeader); retryAfter > 0 {
		return min(retryAfter, maxDelay)
	}

	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}

	return min(delay, maxDelay)
}

func parseRetryAfterSeconds(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
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
