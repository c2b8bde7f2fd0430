package engine_test

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/linkmirror/linkmirror/internal/models"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)

	return l
}

// fakeClock is a fixed clock for deterministic grace-period arithmetic.
type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

// mockSource implements engine.Source for testing.
type mockSource struct {
	listFn          func(ctx context.Context, page, perPage int) ([]models.Item, error)
	searchUpdatedFn func(ctx context.Context, date time.Time, page, perPage int) ([]models.Item, error)
	searchCreatedFn func(ctx context.Context, date time.Time, page, perPage int) ([]models.Item, error)
	detailFn        func(ctx context.Context, id int64) (models.ItemDetail, error)
}

func (m *mockSource) ListRecent(ctx context.Context, page, perPage int) ([]models.Item, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx, page, perPage)
}

func (m *mockSource) SearchUpdatedSince(ctx context.Context, date time.Time, page, perPage int) ([]models.Item, error) {
	if m.searchUpdatedFn == nil {
		return nil, nil
	}
	return m.searchUpdatedFn(ctx, date, page, perPage)
}

func (m *mockSource) SearchCreatedSince(ctx context.Context, date time.Time, page, perPage int) ([]models.Item, error) {
	if m.searchCreatedFn == nil {
		return nil, nil
	}
	return m.searchCreatedFn(ctx, date, page, perPage)
}

func (m *mockSource) ItemDetail(ctx context.Context, id int64) (models.ItemDetail, error) {
	if m.detailFn == nil {
		return models.ItemDetail{}, nil
	}
	return m.detailFn(ctx, id)
}

// mockLedger implements engine.Ledger, recording every mutation so tests can
// assert on exactly which writes happened and in what order.
type mockLedger struct {
	findFn    func(ctx context.Context, ids []int64) (map[int64]models.RowRef, error)
	listAllFn func(ctx context.Context) ([]models.Row, error)

	created        []int64
	updated        []string
	collectionSet  map[string]string
	deleteDetected []string
	cleared        []string
	archived       []string
	failOnCreate   error
	failOnUpdate   error
}

func newMockLedger() *mockLedger {
	return &mockLedger{collectionSet: make(map[string]string)}
}

func (m *mockLedger) FindByItemIDs(ctx context.Context, ids []int64) (map[int64]models.RowRef, error) {
	if m.findFn == nil {
		return map[int64]models.RowRef{}, nil
	}
	return m.findFn(ctx, ids)
}

func (m *mockLedger) Create(_ context.Context, item models.Item, _ string) (string, error) {
	if m.failOnCreate != nil {
		return "", m.failOnCreate
	}
	m.created = append(m.created, item.ID)
	return "page-created", nil
}

func (m *mockLedger) Update(_ context.Context, pageID string, _ models.Item, _ string) error {
	if m.failOnUpdate != nil {
		return m.failOnUpdate
	}
	m.updated = append(m.updated, pageID)
	return nil
}

func (m *mockLedger) UpdateCollection(_ context.Context, pageID, title string) error {
	m.collectionSet[pageID] = title
	return nil
}

func (m *mockLedger) MarkDeleteDetected(_ context.Context, pageID string, _ time.Time, _ bool) error {
	m.deleteDetected = append(m.deleteDetected, pageID)
	return nil
}

func (m *mockLedger) ClearDeleteFlags(_ context.Context, pageID string) error {
	m.cleared = append(m.cleared, pageID)
	return nil
}

func (m *mockLedger) Archive(_ context.Context, pageID string) error {
	m.archived = append(m.archived, pageID)
	return nil
}

func (m *mockLedger) ListAll(ctx context.Context) ([]models.Row, error) {
	if m.listAllFn == nil {
		return nil, nil
	}
	return m.listAllFn(ctx)
}

func (m *mockLedger) mutations() int {
	return len(m.created) + len(m.updated) + len(m.collectionSet) +
		len(m.deleteDetected) + len(m.cleared) + len(m.archived)
}

// mockTitles implements engine.TitleResolver.
type mockTitles struct {
	titleFn func(ctx context.Context, collectionID int64) (string, error)
}

func (m *mockTitles) Title(ctx context.Context, collectionID int64) (string, error) {
	if m.titleFn == nil {
		return "Bookmarks", nil
	}
	return m.titleFn(ctx, collectionID)
}
