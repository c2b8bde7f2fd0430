package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/linkmirror/linkmirror/internal/engine"
	"github.com/linkmirror/linkmirror/internal/models"
)

var scanNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func item(id int64, created time.Time) models.Item {
	return models.Item{ID: id, Title: "bookmark", URL: "https://example.com", Created: created}
}

// pagedSource serves fixed pages from the recency listing and nothing from
// the change scans.
func pagedSource(pages ...[]models.Item) *mockSource {
	return &mockSource{
		listFn: func(_ context.Context, page, _ int) ([]models.Item, error) {
			if page >= len(pages) {
				return nil, nil
			}
			return pages[page], nil
		},
	}
}

func buildChangeSet(t *testing.T, source *mockSource, ledger *mockLedger, cfg engine.ChangeSetConfig) *engine.ChangeSet {
	t.Helper()

	window := engine.Window(scanNow, 48, 60)
	b := engine.NewChangeSetBuilder(source, ledger, testLogger())
	cs, err := b.Build(context.Background(), window, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return cs
}

func TestChangeSet_StopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	source := pagedSource(
		[]models.Item{item(1, scanNow.Add(-time.Hour)), item(2, scanNow.Add(-2*time.Hour))},
		nil,
	)

	cs := buildChangeSet(t, source, newMockLedger(), engine.ChangeSetConfig{
		PageSize: 2, MaxPages: 10, ConsecutiveExistingStop: 10,
	})

	if cs.StopReason != models.StopEmptyPage {
		t.Errorf("expected stop %q, got %q", models.StopEmptyPage, cs.StopReason)
	}
	if len(cs.Items) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(cs.Items))
	}
}

func TestChangeSet_StopsOnShortPage(t *testing.T) {
	t.Parallel()

	source := pagedSource([]models.Item{item(1, scanNow.Add(-time.Hour))})

	cs := buildChangeSet(t, source, newMockLedger(), engine.ChangeSetConfig{
		PageSize: 2, MaxPages: 10, ConsecutiveExistingStop: 10,
	})

	if cs.StopReason != models.StopShortPage {
		t.Errorf("expected stop %q, got %q", models.StopShortPage, cs.StopReason)
	}
}

func TestChangeSet_StopsOnPageBudget(t *testing.T) {
	t.Parallel()

	full := []models.Item{item(1, scanNow.Add(-time.Hour)), item(2, scanNow.Add(-time.Hour))}
	source := pagedSource(full, full, full)

	cs := buildChangeSet(t, source, newMockLedger(), engine.ChangeSetConfig{
		PageSize: 2, MaxPages: 2, ConsecutiveExistingStop: 10,
	})

	if cs.StopReason != models.StopPageBudget {
		t.Errorf("expected stop %q, got %q", models.StopPageBudget, cs.StopReason)
	}
}

func TestChangeSet_StopsPastWindowAfterConsecutiveExisting(t *testing.T) {
	t.Parallel()

	old := scanNow.Add(-200 * time.Hour)
	source := pagedSource(
		[]models.Item{item(1, old), item(2, old)},
		[]models.Item{item(3, old), item(4, old)},
	)
	ledger := newMockLedger()
	ledger.findFn = func(_ context.Context, ids []int64) (map[int64]models.RowRef, error) {
		refs := make(map[int64]models.RowRef, len(ids))
		for _, id := range ids {
			refs[id] = models.RowRef{PageID: "p", ItemID: id}
		}
		return refs, nil
	}

	cs := buildChangeSet(t, source, ledger, engine.ChangeSetConfig{
		PageSize: 2, MaxPages: 10, ConsecutiveExistingStop: 2,
	})

	if cs.StopReason != models.StopPastWindow {
		t.Errorf("expected stop %q, got %q", models.StopPastWindow, cs.StopReason)
	}
	// First page satisfies the stop rule; the second must never be fetched.
	if cs.PagesScanned != 1+2 {
		t.Errorf("expected 1 recency page plus 2 search pages, got %d", cs.PagesScanned)
	}
	if len(cs.Items) != 0 {
		t.Errorf("items outside the window must not be candidates, got %d", len(cs.Items))
	}
}

func TestChangeSet_NewOldItemResetsConsecutiveCount(t *testing.T) {
	t.Parallel()

	old := scanNow.Add(-200 * time.Hour)
	source := pagedSource(
		[]models.Item{item(1, old), item(2, old), item(3, old)},
		nil,
	)
	// Item 2 is unknown to the ledger: it breaks the consecutive run, so the
	// scan continues past the first page.
	ledger := newMockLedger()
	ledger.findFn = func(_ context.Context, ids []int64) (map[int64]models.RowRef, error) {
		refs := make(map[int64]models.RowRef)
		for _, id := range ids {
			if id != 2 {
				refs[id] = models.RowRef{PageID: "p", ItemID: id}
			}
		}
		return refs, nil
	}

	cs := buildChangeSet(t, source, ledger, engine.ChangeSetConfig{
		PageSize: 3, MaxPages: 10, ConsecutiveExistingStop: 2,
	})

	if cs.StopReason != models.StopEmptyPage {
		t.Errorf("expected stop %q, got %q", models.StopEmptyPage, cs.StopReason)
	}
}

func TestChangeSet_UnionsRecencyAndSearchResults(t *testing.T) {
	t.Parallel()

	inWindow := scanNow.Add(-time.Hour)
	source := pagedSource([]models.Item{item(1, inWindow)})
	source.searchUpdatedFn = func(_ context.Context, _ time.Time, page, _ int) ([]models.Item, error) {
		if page > 0 {
			return nil, nil
		}
		// Item 1 also surfaces in the search; the union must not double it.
		return []models.Item{item(1, inWindow), item(2, scanNow.Add(-100*time.Hour))}, nil
	}
	source.searchCreatedFn = func(_ context.Context, _ time.Time, page, _ int) ([]models.Item, error) {
		if page > 0 {
			return nil, nil
		}
		return []models.Item{item(3, inWindow)}, nil
	}

	cs := buildChangeSet(t, source, newMockLedger(), engine.ChangeSetConfig{
		PageSize: 2, MaxPages: 10, ConsecutiveExistingStop: 10,
	})

	if len(cs.Items) != 3 {
		t.Fatalf("expected 3 distinct candidates, got %d", len(cs.Items))
	}
	seen := make(map[int64]bool)
	for _, it := range cs.Items {
		if seen[it.ID] {
			t.Errorf("duplicate candidate %d", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestChangeSet_ItemCapOnFirstPage(t *testing.T) {
	t.Parallel()

	inWindow := scanNow.Add(-time.Hour)
	source := pagedSource([]models.Item{item(1, inWindow), item(2, inWindow)})

	cs := buildChangeSet(t, source, newMockLedger(), engine.ChangeSetConfig{
		PageSize: 2, MaxPages: 10, ConsecutiveExistingStop: 10, MaxItems: 1,
	})

	if cs.StopReason != models.StopItemCap {
		t.Errorf("expected stop %q, got %q", models.StopItemCap, cs.StopReason)
	}
	if len(cs.Items) != 1 {
		t.Errorf("expected capped set of 1, got %d", len(cs.Items))
	}
}
