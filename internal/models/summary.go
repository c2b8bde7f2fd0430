package models

import "time"

// StopReason records why the recency scan stopped paginating.
type StopReason string

const (
	// StopEmptyPage means a page returned zero items.
	StopEmptyPage StopReason = "empty_page"

	// StopShortPage means a page returned fewer items than requested.
	StopShortPage StopReason = "short_page"

	// StopPastWindow means an item older than the window was observed after
	// enough consecutive already-mirrored items.
	StopPastWindow StopReason = "past_window"

	// StopPageBudget means the configured page budget was exhausted.
	StopPageBudget StopReason = "page_budget"

	// StopItemCap means the caller-supplied hard item cap was reached on the
	// first page.
	StopItemCap StopReason = "item_cap"
)

// SyncSummary is the structured result of one incremental sync invocation.
type SyncSummary struct {
	RunID           string     `json:"run_id"`
	DryRun          bool       `json:"dry_run"`
	PagesScanned    int        `json:"pages_scanned"`
	StopReason      StopReason `json:"stop_reason"`
	Candidates      int        `json:"candidates"`
	Created         []int64    `json:"created"`
	Updated         []int64    `json:"updated"`
	SkippedLocked   []int64    `json:"skipped_locked"`
	SkippedUpToDate []int64    `json:"skipped_up_to_date"`
	StartedAt       time.Time  `json:"started_at"`
	DurationMS      int64      `json:"duration_ms"`
}

// ReconcileSummary is the structured result of one full reconciliation.
type ReconcileSummary struct {
	RunID          string    `json:"run_id"`
	DryRun         bool      `json:"dry_run"`
	SourceItems    int       `json:"source_items"`
	LedgerRows     int       `json:"ledger_rows"`
	Moved          []int64   `json:"moved"`
	DeleteDetected []int64   `json:"delete_detected"`
	InGrace        []int64   `json:"in_grace"`
	ArchivedRows   []int64   `json:"archived"`
	Cleared        []int64   `json:"cleared"`
	SkippedLocked  []int64   `json:"skipped_locked"`
	StartedAt      time.Time `json:"started_at"`
	DurationMS     int64     `json:"duration_ms"`
}
