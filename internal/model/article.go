// Package model holds the article and summary types shared by every stage.
package model

import (
	"strings"
	"time"
)

// RawArticle is a search result as returned by a news provider.
// Values are never mutated after the fetcher hands them out.
type RawArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content,omitempty"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

// ScoredArticle is a RawArticle annotated by the relevance filter.
type ScoredArticle struct {
	RawArticle
	Score float64 `json:"score"`
	Keep  bool    `json:"keep"`
	// Position is the index of the article in fetch order; it breaks score ties.
	Position int `json:"position"`
}

var publishedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// PublishedTime parses PublishedAt in any of the formats providers use.
func (a RawArticle) PublishedTime() (time.Time, bool) {
	value := strings.TrimSpace(a.PublishedAt)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatPublished renders the publication date for people.
// Unparseable values are returned as-is.
func (a RawArticle) FormatPublished() string {
	t, ok := a.PublishedTime()
	if !ok {
		if a.PublishedAt == "" {
			return "Unknown date"
		}
		return a.PublishedAt
	}
	return t.Format("January 02, 2006 at 03:04 PM")
}
