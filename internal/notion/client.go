// Package notion implements the destination ledger on top of the Notion API:
// a database whose rows mirror source bookmarks, keyed by a numeric ID
// property. The ledger is the only persisted state the mirror relies on.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/linkmirror/linkmirror/internal/config"
)

const apiVersion = "2022-06-28"

// Client is a Notion API client scoped to a single mirror database.
type Client struct {
	baseURL    string
	token      config.Secret
	databaseID string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	now        func() time.Time
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

// WithNow overrides the clock used for sync timestamps.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a Notion client for the given base URL and mirror database.
func New(baseURL string, token config.Secret, databaseID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      token,
		databaseID: databaseID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		baseDelay:  200 * time.Millisecond,
		maxDelay:   5 * time.Second,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}

	return c
}

// Ping verifies the token can read the mirror database.
func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/v1/databases/"+c.databaseID, nil, nil)
}

// doJSON performs one API call with bounded retry on 429 and 5xx, honoring
// Retry-After the way the Notion API reports it.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	for attempt := 0; ; attempt++ {
		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token.Value())
		req.Header.Set("Notion-Version", apiVersion)
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if waitErr := c.wait(ctx, attempt+1, ""); waitErr != nil {
					return waitErr
				}
				continue
			}

			return fmt.Errorf("notion request failed: %w", err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return readErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			if out == nil || len(respBody) == 0 {
				return nil
			}

			return json.Unmarshal(respBody, out)
		}

		if (resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599)) && attempt < c.maxRetries {
			if waitErr := c.wait(ctx, attempt+1, resp.Header.Get("Retry-After")); waitErr != nil {
				return waitErr
			}
			continue
		}

		return parseAPIError(resp.StatusCode, respBody)
	}
}

func (c *Client) wait(ctx context.Context, attempt int, retryAfterHeader string) error {
	delay := c.baseDelay
	if retryAfter := parseRetryAfterSeconds(retryAfterHeader); retryAfter > 0 {
		delay = retryAfter
	} else {
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay >= c.maxDelay {
				break
			}
		}
	}
	if delay > c.maxDelay {
		delay = c.maxDelay
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
