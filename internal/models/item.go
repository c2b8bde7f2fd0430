// Package models defines the shared data types for the mirror.
package models

import "time"

// CollectionRef identifies the source collection an item belongs to.
// Title is only populated when it has been resolved.
type CollectionRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title,omitempty"`
}

// Item is a bookmark as read from the source service. Items are owned by the
// source and are read-only from the mirror's perspective.
type Item struct {
	ID         int64          `json:"id"`
	Title      string         `json:"title"`
	URL        string         `json:"url"`
	Excerpt    string         `json:"excerpt,omitempty"`
	Note       string         `json:"note,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Domain     string         `json:"domain,omitempty"`
	Created    time.Time      `json:"created"`
	LastUpdate time.Time      `json:"last_update,omitzero"`
	Collection *CollectionRef `json:"collection,omitempty"`
}

// ModifiedAt returns the item's last-modified instant, falling back to the
// creation time when the source never recorded an update.
func (i Item) ModifiedAt() time.Time {
	if i.LastUpdate.IsZero() {
		return i.Created
	}

	return i.LastUpdate
}

// ItemDetail is the result of a targeted single-item lookup, used by
// reconciliation to distinguish a moved item from a removed one.
type ItemDetail struct {
	Exists       bool
	Removed      bool
	CollectionID int64
	LastUpdate   time.Time
}
