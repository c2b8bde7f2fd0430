package api

import (
	"context"

	"github.com/linkmirror/linkmirror/internal/models"
	"github.com/linkmirror/linkmirror/internal/service"
)

// SyncRunner defines the run operations used by SyncHandler.
type SyncRunner interface {
	Sync(ctx context.Context, opts service.SyncOptions) (*models.SyncSummary, error)
	Reconcile(ctx context.Context, opts service.ReconcileOptions) (*models.ReconcileSummary, error)
}

// Pinger defines the connectivity checks used by HealthHandler.
type Pinger interface {
	PingSource(ctx context.Context) error
	PingDestination(ctx context.Context) error
}
