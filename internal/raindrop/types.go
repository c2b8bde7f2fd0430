package raindrop

import (
	"net/url"
	"strings"
	"time"

	"github.com/linkmirror/linkmirror/internal/models"
)

// apiItem is a bookmark as the Raindrop API serializes it.
type apiItem struct {
	ID         int64     `json:"_id"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Excerpt    string    `json:"excerpt"`
	Note       string    `json:"note"`
	Tags       []string  `json:"tags"`
	Domain     string    `json:"domain"`
	Removed    bool      `json:"removed"`
	Created    time.Time `json:"created"`
	LastUpdate time.Time `json:"lastUpdate"`
	Collection struct {
		ID int64 `json:"$id"`
	} `json:"collection"`
}

type itemsResponse struct {
	Items []apiItem `json:"items"`
	Count int       `json:"count"`
}

type itemResponse struct {
	Item apiItem `json:"item"`
}

type collectionResponse struct {
	Item struct {
		ID    int64  `json:"_id"`
		Title string `json:"title"`
	} `json:"item"`
}

func (a apiItem) toModel() models.Item {
	item := models.Item{
		ID:         a.ID,
		Title:      a.Title,
		URL:        a.Link,
		Excerpt:    a.Excerpt,
		Note:       a.Note,
		Tags:       a.Tags,
		Domain:     a.Domain,
		Created:    a.Created,
		LastUpdate: a.LastUpdate,
	}
	if a.Collection.ID != 0 {
		item.Collection = &models.CollectionRef{ID: a.Collection.ID}
	}
	if item.Domain == "" {
		item.Domain = domainFromLink(a.Link)
	}

	return item
}

// domainFromLink derives the host portion of a bookmark's URL when the API
// did not supply one.
func domainFromLink(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return ""
	}

	return strings.TrimPrefix(u.Hostname(), "www.")
}
