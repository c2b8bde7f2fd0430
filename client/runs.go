package client

import (
	"context"
	"net/url"
	"strconv"
)

// RunService triggers sync and reconcile runs.
type RunService struct {
	c *Client
}

// SyncOptions are the per-invocation knobs of an incremental sync.
type SyncOptions struct {
	// DryRun classifies every candidate without writing anything.
	DryRun bool

	// Max caps the candidate set for controlled manual testing. Zero means
	// no cap.
	Max int
}

// Sync triggers one incremental sync run and waits for its summary.
// A run already in progress yields an error matched by IsConflict.
func (s *RunService) Sync(ctx context.Context, opts SyncOptions) (*SyncSummary, error) {
	params := url.Values{}
	if opts.DryRun {
		params.Set("dry_run", "true")
	}
	if opts.Max > 0 {
		params.Set("max", strconv.Itoa(opts.Max))
	}

	var resp SyncSummary
	if err := s.c.post(ctx, "/api/v1/sync", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reconcile triggers one full reconciliation run and waits for its summary.
func (s *RunService) Reconcile(ctx context.Context, dryRun bool) (*ReconcileSummary, error) {
	params := url.Values{}
	if dryRun {
		params.Set("dry_run", "true")
	}

	var resp ReconcileSummary
	if err := s.c.post(ctx, "/api/v1/reconcile", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
