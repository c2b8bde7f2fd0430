package engine_test

import (
	"testing"
	"time"

	"github.com/linkmirror/linkmirror/internal/engine"
)

func TestWindow_IncludesOverlap(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	w := engine.Window(now, 48, 60)

	want := now.Add(-49 * time.Hour)
	if !w.Since.Equal(want) {
		t.Errorf("expected since %v, got %v", want, w.Since)
	}
}

func TestWindow_SinceDateIsUTCMidnight(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+9", 9*3600)
	now := time.Date(2026, 3, 10, 3, 0, 0, 0, loc)
	w := engine.Window(now, 24, 0)

	if w.SinceDate.Hour() != 0 || w.SinceDate.Minute() != 0 {
		t.Errorf("expected midnight truncation, got %v", w.SinceDate)
	}
	if w.SinceDate.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", w.SinceDate.Location())
	}
	// 2026-03-10 03:00 +09:00 minus 24h is 2026-03-08 18:00 UTC.
	if got := w.SinceDate.Format("2006-01-02"); got != "2026-03-08" {
		t.Errorf("expected 2026-03-08, got %s", got)
	}
}

func TestWindow_ContainsBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	w := engine.Window(now, 48, 0)

	if !w.Contains(w.Since) {
		t.Error("window start must be inclusive")
	}
	if w.Contains(w.Since.Add(-time.Second)) {
		t.Error("instant before window start must be excluded")
	}
	if !w.Contains(now) {
		t.Error("now must be inside the window")
	}
}
