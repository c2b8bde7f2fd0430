package notion

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/linkmirror/linkmirror/internal/models"
)

// Property names of the mirror database. The schema is owned by the database;
// the mirror only reads and writes these fixed properties and never touches
// anything else (notably Status, which users edit, and Locked, which users
// set to opt a row out of automation).
const (
	propID             = "ID"
	propTitle          = "Name"
	propURL            = "URL"
	propExcerpt        = "Excerpt"
	propNote           = "Note"
	propTags           = "Tags"
	propDomain         = "Domain"
	propCollection     = "Collection"
	propLocked         = "Locked"
	propDeleted        = "Deleted"
	propDeleteDetected = "Delete detected"
	propSourceUpdated  = "Source updated"
	propLastSynced     = "Last synced"
	propStatus         = "Status"
)

// statusArchivePending is the workflow status set when a deletion is first
// detected on an unlocked row.
const statusArchivePending = "Archive pending"

// Notion field limits.
const (
	maxTextLength = 2000
	maxTags       = 50
)

// contentProperties maps an item's mirrored content fields to Notion
// properties. It deliberately excludes ID (immutable join key), Locked,
// Deleted/Delete detected, and Status.
func contentProperties(item models.Item, collectionTitle string, syncedAt time.Time) map[string]any {
	props := map[string]any{
		propTitle:         titleProp(item.Title),
		propURL:           map[string]any{"url": emptyToNil(item.URL)},
		propExcerpt:       richTextProp(item.Excerpt),
		propNote:          richTextProp(item.Note),
		propTags:          multiSelectProp(normalizeTags(item.Tags)),
		propDomain:        richTextProp(item.Domain),
		propSourceUpdated: dateProp(item.ModifiedAt()),
		propLastSynced:    dateProp(syncedAt),
	}
	if collectionTitle != "" {
		props[propCollection] = selectProp(collectionTitle)
	}

	return props
}

func createProperties(item models.Item, collectionTitle string, syncedAt time.Time) map[string]any {
	props := contentProperties(item, collectionTitle, syncedAt)
	props[propID] = map[string]any{"number": item.ID}

	return props
}

// normalizeTags dedupes tags, strips commas (multi-select options cannot
// contain them), and caps the set at the database limit.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ReplaceAll(tag, ",", " "))
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
		if len(out) == maxTags {
			break
		}
	}

	return out
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}

func titleProp(s string) map[string]any {
	return map[string]any{
		"title": []any{textChunk(s)},
	}
}

func richTextProp(s string) map[string]any {
	if s == "" {
		return map[string]any{"rich_text": []any{}}
	}

	return map[string]any{"rich_text": []any{textChunk(s)}}
}

func textChunk(s string) map[string]any {
	return map[string]any{
		"type": "text",
		"text": map[string]any{"content": truncate(s, maxTextLength)},
	}
}

func multiSelectProp(tags []string) map[string]any {
	options := make([]any, 0, len(tags))
	for _, tag := range tags {
		options = append(options, map[string]any{"name": truncate(tag, 100)})
	}

	return map[string]any{"multi_select": options}
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": truncate(name, 100)}}
}

func checkboxProp(v bool) map[string]any {
	return map[string]any{"checkbox": v}
}

func dateProp(t time.Time) map[string]any {
	if t.IsZero() {
		return map[string]any{"date": nil}
	}

	return map[string]any{
		"date": map[string]any{"start": t.UTC().Format(time.RFC3339)},
	}
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}

	return s
}

// page is the slice of a Notion page object the mirror reads back.
type page struct {
	ID         string                     `json:"id"`
	Archived   bool                       `json:"archived"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// toRow parses a page into a ledger row. ok is false when the page carries no
// numeric ID property, e.g. rows created by hand.
func (p page) toRow() (models.Row, bool) {
	id, ok := parseNumber(p.Properties[propID])
	if !ok {
		return models.Row{}, false
	}

	return models.Row{
		PageID:           p.ID,
		ItemID:           id,
		Locked:           parseCheckbox(p.Properties[propLocked]),
		Deleted:          parseCheckbox(p.Properties[propDeleted]),
		DeleteDetectedAt: parseDate(p.Properties[propDeleteDetected]),
		LastModified:     parseDate(p.Properties[propSourceUpdated]),
		LastSyncedAt:     parseDate(p.Properties[propLastSynced]),
	}, true
}

func parseNumber(raw json.RawMessage) (int64, bool) {
	if raw == nil {
		return 0, false
	}

	var prop struct {
		Number *float64 `json:"number"`
	}
	if err := json.Unmarshal(raw, &prop); err != nil || prop.Number == nil {
		return 0, false
	}

	return int64(*prop.Number), true
}

func parseCheckbox(raw json.RawMessage) bool {
	if raw == nil {
		return false
	}

	var prop struct {
		Checkbox bool `json:"checkbox"`
	}
	if err := json.Unmarshal(raw, &prop); err != nil {
		return false
	}

	return prop.Checkbox
}

func parseDate(raw json.RawMessage) time.Time {
	if raw == nil {
		return time.Time{}
	}

	var prop struct {
		Date *struct {
			Start string `json:"start"`
		} `json:"date"`
	}
	if err := json.Unmarshal(raw, &prop); err != nil || prop.Date == nil {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, prop.Date.Start)
	if err != nil {
		// Date-only properties come back without a time component.
		t, err = time.Parse("2006-01-02", prop.Date.Start)
		if err != nil {
			return time.Time{}
		}
	}

	return t
}
