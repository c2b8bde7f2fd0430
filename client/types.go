package client

import "time"

// HealthResponse is the liveness check payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadyResponse is the readiness check payload.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SyncSummary is the result of one incremental sync run.
type SyncSummary struct {
	RunID           string    `json:"run_id"`
	DryRun          bool      `json:"dry_run"`
	PagesScanned    int       `json:"pages_scanned"`
	StopReason      string    `json:"stop_reason"`
	Candidates      int       `json:"candidates"`
	Created         []int64   `json:"created"`
	Updated         []int64   `json:"updated"`
	SkippedLocked   []int64   `json:"skipped_locked"`
	SkippedUpToDate []int64   `json:"skipped_up_to_date"`
	StartedAt       time.Time `json:"started_at"`
	DurationMS      int64     `json:"duration_ms"`
}

// ReconcileSummary is the result of one full reconciliation run.
type ReconcileSummary struct {
	RunID          string    `json:"run_id"`
	DryRun         bool      `json:"dry_run"`
	SourceItems    int       `json:"source_items"`
	LedgerRows     int       `json:"ledger_rows"`
	Moved          []int64   `json:"moved"`
	DeleteDetected []int64   `json:"delete_detected"`
	InGrace        []int64   `json:"in_grace"`
	Archived       []int64   `json:"archived"`
	Cleared        []int64   `json:"cleared"`
	SkippedLocked  []int64   `json:"skipped_locked"`
	StartedAt      time.Time `json:"started_at"`
	DurationMS     int64     `json:"duration_ms"`
}
