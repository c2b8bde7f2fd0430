package api_test

import (
	"context"

	"github.com/linkmirror/linkmirror/internal/models"
	"github.com/linkmirror/linkmirror/internal/service"
)

// mockRunner implements api.SyncRunner for testing.
type mockRunner struct {
	syncFn      func(ctx context.Context, opts service.SyncOptions) (*models.SyncSummary, error)
	reconcileFn func(ctx context.Context, opts service.ReconcileOptions) (*models.ReconcileSummary, error)
}

func (m *mockRunner) Sync(ctx context.Context, opts service.SyncOptions) (*models.SyncSummary, error) {
	return m.syncFn(ctx, opts)
}

func (m *mockRunner) Reconcile(ctx context.Context, opts service.ReconcileOptions) (*models.ReconcileSummary, error) {
	return m.reconcileFn(ctx, opts)
}

// mockPinger implements api.Pinger for testing.
type mockPinger struct {
	sourceErr      error
	destinationErr error
}

func (m *mockPinger) PingSource(context.Context) error      { return m.sourceErr }
func (m *mockPinger) PingDestination(context.Context) error { return m.destinationErr }
