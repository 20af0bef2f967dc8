package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/pep299/news-summarizer/internal/model"
)

// DocumentTitle heads every rendered report.
const DocumentTitle = "AI News Summarizer Report"

const maxDescriptionChars = 700

// Section is the printable form of one report entry.
type Section struct {
	Index       int
	Title       string
	URL         string
	Source      string
	Published   string
	Description string
	Score       float64
	Headline    string
	Summary     string
	Sentiment   model.Sentiment
	Confidence  float64
	Tags        []string
}

// Badge renders the sentiment label with its confidence.
func (s Section) Badge() string {
	return fmt.Sprintf("%s (%.0f%% confidence)", strings.ToUpper(string(s.Sentiment)), s.Confidence*100)
}

// Document is a layout-independent view of a Report: one section per entry.
type Document struct {
	Title       string
	Topic       string
	GeneratedAt string
	Total       int
	Skipped     int
	Sections    []Section
}

// NewDocument lays out r. Titles and URLs are carried verbatim.
func NewDocument(r *Report) Document {
	entries := r.Entries()
	doc := Document{
		Title:       DocumentTitle,
		Topic:       r.Topic(),
		GeneratedAt: r.GeneratedAt().Format("January 02, 2006 at 03:04 PM MST"),
		Total:       len(entries),
		Skipped:     r.Skipped(),
		Sections:    make([]Section, 0, len(entries)),
	}
	for i, e := range entries {
		source := e.Article.Source
		if source == "" {
			source = "Unknown source"
		}
		doc.Sections = append(doc.Sections, Section{
			Index:       i + 1,
			Title:       e.Article.Title,
			URL:         e.Article.URL,
			Source:      source,
			Published:   e.Article.FormatPublished(),
			Description: TrimDescription(e.Article.Description, e.Article.Content),
			Score:       e.Article.Score,
			Headline:    e.Summary.Headline,
			Summary:     e.Summary.Summary,
			Sentiment:   e.Summary.Sentiment,
			Confidence:  e.Summary.Confidence,
			Tags:        e.Summary.Tags,
		})
	}
	return doc
}

var charsMarker = regexp.MustCompile(`\s*\[\+\d+ chars\]`)

// TrimDescription combines description and content, drops the provider's
// "[+N chars]" marker and shortens the result to a sentence boundary.
func TrimDescription(description, content string) string {
	description = strings.TrimSpace(description)
	content = strings.TrimSpace(charsMarker.ReplaceAllString(content, ""))

	combined := description
	if content != "" && !strings.HasPrefix(content, strings.TrimSuffix(description, "...")) {
		combined = strings.TrimSpace(description + " " + content)
	} else if combined == "" {
		combined = content
	}

	runes := []rune(combined)
	if len(runes) <= maxDescriptionChars {
		return combined
	}
	trimmed := string(runes[:maxDescriptionChars])
	if cut := strings.LastIndex(trimmed, "."); cut > 0 {
		return trimmed[:cut+1]
	}
	return strings.TrimRightFunc(trimmed, unicode.IsSpace) + "..."
}

// FileName is the download name for a report PDF.
func FileName(topic string, at time.Time) string {
	slug := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '_'
	}, strings.TrimSpace(topic))
	return fmt.Sprintf("news_summary_%s_%s.pdf", slug, at.Format("20060102_150405"))
}

// Slug is a lowercase, dash separated form of topic for storage keys.
func Slug(topic string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(topic)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
