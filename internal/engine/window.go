package engine

import (
	"time"

	"github.com/linkmirror/linkmirror/internal/models"
)

// Window computes the lookback interval for one incremental pass. The overlap
// widens the window past the nominal lookback so items straddling a previous
// run's edge (clock skew, pagination races) are still caught by the next run.
func Window(now time.Time, lookbackHours, overlapMinutes int) models.SyncWindow {
	since := now.Add(-time.Duration(lookbackHours*60+overlapMinutes) * time.Minute)

	u := since.UTC()
	return models.SyncWindow{
		Since:     since,
		SinceDate: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC),
	}
}
