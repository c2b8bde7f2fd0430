package models

import "time"

// DeletionState is the explicit delete-tracking state of a ledger row.
type DeletionState int

const (
	// Present means the row is live and not flagged for deletion.
	Present DeletionState = iota

	// DeletionDetected means absence from the source has been observed and
	// the row is inside its grace period.
	DeletionDetected

	// Archived is the terminal state; archived rows no longer appear in
	// ledger enumerations.
	Archived
)

// String returns the lowercase name of the state.
func (s DeletionState) String() string {
	switch s {
	case Present:
		return "present"
	case DeletionDetected:
		return "deletion_detected"
	case Archived:
		return "archived"
	default:
		return "unknown"
	}
}

// RowRef is the slim projection returned by batched existence lookups:
// just enough to decide create / update / skip.
type RowRef struct {
	PageID       string
	ItemID       int64
	Locked       bool
	LastModified time.Time
}

// Row is the full destination-side projection of a mirrored item.
// Locked is set by a human outside the mirror and is never cleared or
// overridden here; every mutation on a locked row degrades to a skip.
type Row struct {
	PageID           string    `json:"page_id"`
	ItemID           int64     `json:"item_id"`
	Locked           bool      `json:"locked"`
	Deleted          bool      `json:"deleted"`
	DeleteDetectedAt time.Time `json:"delete_detected_at,omitzero"`
	LastModified     time.Time `json:"last_modified,omitzero"`
	LastSyncedAt     time.Time `json:"last_synced_at,omitzero"`
}

// State reports the row's deletion state. Deleted and DeleteDetectedAt are
// set together and cleared together; a row with one but not the other is
// still treated as flagged.
func (r Row) State() DeletionState {
	if r.Deleted || !r.DeleteDetectedAt.IsZero() {
		return DeletionDetected
	}

	return Present
}

// Ref returns the slim lookup projection of the row.
func (r Row) Ref() RowRef {
	return RowRef{
		PageID:       r.PageID,
		ItemID:       r.ItemID,
		Locked:       r.Locked,
		LastModified: r.LastModified,
	}
}

// SyncWindow is the lookback interval for one incremental pass. SinceDate is
// the date-only truncation of Since, for search queries that only accept date
// granularity.
type SyncWindow struct {
	Since     time.Time
	SinceDate time.Time
}

// Contains reports whether an item created at t falls inside the window.
func (w SyncWindow) Contains(t time.Time) bool {
	return !t.Before(w.Since)
}
