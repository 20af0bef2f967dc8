// Package report assembles ranked, summarized articles into an immutable
// Report and renders it for people.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pep299/news-summarizer/internal/model"
)

// Entry pairs a kept article with its summary.
type Entry struct {
	Article model.ScoredArticle `json:"article"`
	Summary model.SummaryResult `json:"summary"`
}

// Stats counts what happened to the fetched articles.
type Stats struct {
	Fetched    int `json:"fetched"`
	Kept       int `json:"kept"`
	Discarded  int `json:"discarded"`
	Summarized int `json:"summarized"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
}

// Report is the final output of a run. It is only built by an Assembler and
// never changes afterwards; accessors hand out copies.
type Report struct {
	id          string
	topic       string
	generatedAt time.Time
	entries     []Entry
	stats       Stats
}

// ID identifies the run that produced the report.
func (r *Report) ID() string { return r.id }

// Topic is the topic the report was generated for.
func (r *Report) Topic() string { return r.topic }

// GeneratedAt is the assembly time.
func (r *Report) GeneratedAt() time.Time { return r.generatedAt }

// Len is the number of entries.
func (r *Report) Len() int { return len(r.entries) }

// Skipped is the number of articles dropped because they could not be
// scored or summarized.
func (r *Report) Skipped() int { return r.stats.Skipped }

// Stats returns the run counters.
func (r *Report) Stats() Stats { return r.stats }

// Entries returns a copy of the entries in rank order.
func (r *Report) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		e.Summary.Tags = append([]string(nil), e.Summary.Tags...)
		out[i] = e
	}
	return out
}

type reportJSON struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
	Stats       Stats     `json:"stats"`
}

func (r *Report) MarshalJSON() ([]byte, error) {
	entries := r.entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(reportJSON{
		ID:          r.id,
		Topic:       r.topic,
		GeneratedAt: r.generatedAt,
		Entries:     entries,
		Stats:       r.stats,
	})
}

// UnmarshalJSON restores a report serialized by MarshalJSON, such as a
// cached one. The ordering and uniqueness guarantees are re-checked.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw reportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := checkEntries(raw.Entries); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}
	*r = Report{
		id:          raw.ID,
		topic:       raw.Topic,
		generatedAt: raw.GeneratedAt,
		entries:     raw.Entries,
		stats:       raw.Stats,
	}
	return nil
}

func checkEntries(entries []Entry) error {
	seen := map[string]struct{}{}
	for i, e := range entries {
		if i > 0 && e.Article.Score > entries[i-1].Article.Score {
			return errors.New("entries not ordered by score")
		}
		if _, dup := seen[e.Article.URL]; dup {
			return fmt.Errorf("duplicate url %s", e.Article.URL)
		}
		seen[e.Article.URL] = struct{}{}
	}
	return nil
}

// Outcome is the summarization result for one kept article. Exactly one of
// Summary or Err is meaningful.
type Outcome struct {
	Article model.ScoredArticle
	Summary model.SummaryResult
	Err     error
}

// Meta carries run information the assembler does not derive itself.
type Meta struct {
	ID         string
	Topic      string
	Fetched    int
	Kept       int
	Discarded  int
	Duplicates int
	// Skipped counts articles dropped before summarization.
	Skipped int
}

// Assembler is the only constructor of Report.
type Assembler struct {
	now func() time.Time
}

// NewAssembler creates an assembler.
func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// Assemble drops failed and non-kept outcomes, imposes rank order (score
// descending, then fetch position) and keeps the first entry per URL.
func (a *Assembler) Assemble(meta Meta, outcomes []Outcome) *Report {
	stats := Stats{
		Fetched:    meta.Fetched,
		Kept:       meta.Kept,
		Discarded:  meta.Discarded,
		Duplicates: meta.Duplicates,
		Skipped:    meta.Skipped,
	}

	entries := make([]Entry, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Article.Keep {
			continue
		}
		if o.Err != nil {
			stats.Skipped++
			continue
		}
		stats.Summarized++
		summary := o.Summary
		summary.Tags = append([]string(nil), summary.Tags...)
		entries = append(entries, Entry{Article: o.Article, Summary: summary})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Article.Score != entries[j].Article.Score {
			return entries[i].Article.Score > entries[j].Article.Score
		}
		return entries[i].Article.Position < entries[j].Article.Position
	})

	unique := entries[:0]
	seen := map[string]struct{}{}
	for _, e := range entries {
		if _, dup := seen[e.Article.URL]; dup {
			stats.Duplicates++
			continue
		}
		seen[e.Article.URL] = struct{}{}
		unique = append(unique, e)
	}
	entries = unique

	return &Report{
		id:          meta.ID,
		topic:       meta.Topic,
		generatedAt: a.now().UTC(),
		entries:     entries,
		stats:       stats,
	}
}
