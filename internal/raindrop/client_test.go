package raindrop

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linkmirror/linkmirror/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL, config.Secret("token"),
		WithRetry(2, time.Millisecond, 5*time.Millisecond))
}

func TestListRecent_ParsesItems(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/raindrops/123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.URL.Query().Get("sort"); got != SortNewestCreated {
			t.Errorf("unexpected sort %q", got)
		}
		w.Write([]byte(`{"items":[
			{"_id": 1, "title": "One", "link": "https://www.example.com/a",
			 "created": "2026-03-01T10:00:00Z", "collection": {"$id": 123}},
			{"_id": 2, "title": "Two", "link": "https://b.dev", "domain": "b.dev",
			 "created": "2026-03-01T09:00:00Z", "lastUpdate": "2026-03-02T09:00:00Z",
			 "collection": {"$id": 123}}
		], "count": 2}`))
	})

	items, err := c.ListRecent(context.Background(), 123, 0, 50, SortNewestCreated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != 1 || items[0].URL != "https://www.example.com/a" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[0].Domain != "example.com" {
		t.Errorf("expected derived domain without www, got %q", items[0].Domain)
	}
	if items[1].ModifiedAt().Day() != 2 {
		t.Errorf("expected lastUpdate to win, got %v", items[1].ModifiedAt())
	}
}

func TestGetJSON_RetriesOn429(t *testing.T) {
	t.Parallel()

	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"items":[],"count":0}`))
	})

	if _, err := c.ListRecent(context.Background(), 1, 0, 50, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected retry after 429, got %d calls", calls)
	}
}

func TestGetJSON_GivesUpAfterBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListRecent(context.Background(), 1, 0, 50, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("expected initial call plus 2 retries, got %d", calls)
	}
}

func TestItemDetail_404MeansGone(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"result": false, "errorMessage": "not found"}`))
	})

	detail, err := c.ItemDetail(context.Background(), 99)
	if err != nil {
		t.Fatalf("a 404 must not be an error: %v", err)
	}
	if detail.Exists {
		t.Error("expected Exists=false for 404")
	}
}

func TestItemDetail_TrashCollectionMeansRemoved(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"item": {"_id": 5, "collection": {"$id": -99},
			"lastUpdate": "2026-03-01T10:00:00Z"}}`))
	})

	detail, err := c.ItemDetail(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !detail.Exists || !detail.Removed {
		t.Errorf("trash collection must report removed, got %+v", detail)
	}
}

func TestCollectionTitle(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/collection/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"item": {"_id": 42, "title": "Reading"}}`))
	})

	title, err := c.CollectionTitle(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "Reading" {
		t.Errorf("expected Reading, got %q", title)
	}
}

func TestDateQuery_InclusiveBoundary(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := dateQuery("lastUpdate", since); got != "lastUpdate:>2026-03-09" {
		t.Errorf("unexpected query %q", got)
	}
}

func TestTitleCache_CachesSuccesses(t *testing.T) {
	t.Parallel()

	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"item": {"_id": 7, "title": "Inbox"}}`))
	})

	tc := NewTitleCache(c)
	for n := 0; n < 3; n++ {
		title, err := tc.Title(context.Background(), 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if title != "Inbox" {
			t.Errorf("expected Inbox, got %q", title)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single upstream lookup, got %d", calls)
	}
}
