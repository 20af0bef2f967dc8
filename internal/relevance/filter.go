// Package relevance scores fetched articles against a topic and decides
// which ones are worth summarizing.
package relevance

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/pep299/news-summarizer/internal/model"
)

// Mode selects the scoring rule.
type Mode string

const (
	// ModeOverlap scores the weighted share of topic terms found in the article.
	ModeOverlap Mode = "overlap"
	// ModeAllTerms scores 1 when every topic term occurs in the article, 0 otherwise.
	ModeAllTerms Mode = "all_terms"
)

// Weights for where a topic term was found in overlap mode.
const (
	titleWeight       = 1.0
	descriptionWeight = 0.75
)

// removedTitle is the placeholder NewsAPI returns for withdrawn articles.
const removedTitle = "[Removed]"

// FilterError marks an article that could not be scored.
type FilterError struct {
	URL    string
	Title  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter %q (%s): %s", e.Title, e.URL, e.Reason)
}

// Filter ranks articles by relevance to a topic.
type Filter struct {
	threshold float64
	limit     int
	mode      Mode
	logger    *slog.Logger
}

// NewFilter creates a filter keeping articles whose score exceeds threshold.
func NewFilter(threshold float64, mode Mode, logger *slog.Logger) *Filter {
	if mode == "" {
		mode = ModeOverlap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{threshold: clamp(threshold), mode: mode, logger: logger}
}

// WithThreshold returns a copy of f using a different threshold.
func (f *Filter) WithThreshold(threshold float64) *Filter {
	clone := *f
	clone.threshold = clamp(threshold)
	return &clone
}

// WithLimit returns a copy of f keeping at most n articles, the best ranked
// ones. Zero or less means no limit.
func (f *Filter) WithLimit(n int) *Filter {
	clone := *f
	clone.limit = max(0, n)
	return &clone
}

// Threshold returns the keep threshold.
func (f *Filter) Threshold() float64 { return f.threshold }

// Score computes the relevance of a single article in [0, 1].
func (f *Filter) Score(topic string, article model.RawArticle) float64 {
	topicTerms := terms(topic)
	if len(topicTerms) == 0 {
		return 0
	}

	if f.mode == ModeAllTerms {
		found := tokenSet(article.Title, article.Description, article.Content)
		for _, term := range topicTerms {
			if _, ok := found[term]; !ok {
				return 0
			}
		}
		return 1
	}

	title := tokenSet(article.Title)
	body := tokenSet(article.Description)

	var total float64
	for _, term := range topicTerms {
		if _, ok := title[term]; ok {
			total += titleWeight
		} else if _, ok := body[term]; ok {
			total += descriptionWeight
		}
	}
	return clamp(total / float64(len(topicTerms)))
}

// Rank scores every article, marks those above the threshold as kept and
// returns them ordered by descending score, ties kept in fetch order. With a
// limit only the first limit qualifying articles stay kept.
// Malformed records are reported as FilterErrors and left out.
func (f *Filter) Rank(topic string, articles []model.RawArticle) ([]model.ScoredArticle, []error) {
	if len(articles) == 0 {
		return []model.ScoredArticle{}, nil
	}

	scored := make([]model.ScoredArticle, 0, len(articles))
	var skipped []error
	for i, article := range articles {
		if err := check(article); err != nil {
			f.logger.Debug("skipping article", "url", article.URL, "reason", err.Reason)
			skipped = append(skipped, err)
			continue
		}
		score := f.Score(topic, article)
		scored = append(scored, model.ScoredArticle{
			RawArticle: article,
			Score:      score,
			Keep:       score > f.threshold,
			Position:   i,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if f.limit > 0 {
		kept := 0
		for i := range scored {
			if !scored[i].Keep {
				continue
			}
			if kept == f.limit {
				scored[i].Keep = false
				continue
			}
			kept++
		}
	}
	return scored, skipped
}

// Kept returns the kept subset of a ranked slice, preserving order.
func Kept(ranked []model.ScoredArticle) []model.ScoredArticle {
	kept := make([]model.ScoredArticle, 0, len(ranked))
	for _, a := range ranked {
		if a.Keep {
			kept = append(kept, a)
		}
	}
	return kept
}

func check(article model.RawArticle) *FilterError {
	title := strings.TrimSpace(article.Title)
	switch {
	case strings.TrimSpace(article.URL) == "":
		return &FilterError{URL: article.URL, Title: article.Title, Reason: "missing url"}
	case title == "":
		return &FilterError{URL: article.URL, Title: article.Title, Reason: "missing title"}
	case title == removedTitle:
		return &FilterError{URL: article.URL, Title: article.Title, Reason: "removed by publisher"}
	}
	return nil
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
