// Package search turns a topic into news search requests and collects the
// resulting articles.
package search

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pep299/news-summarizer/internal/model"
)

// Result is the union of all successful searches for a topic.
type Result struct {
	Articles []model.RawArticle
	// Failed holds one *FetchError per variant that could not be fetched.
	Failed []error
	// Duplicates counts articles dropped because their URL was already seen.
	Duplicates int
}

// Fetcher fans a topic out over every provider and query variant.
type Fetcher struct {
	providers []Provider
	pageSize  int
	logger    *slog.Logger
}

// NewFetcher creates a fetcher. pageSize is used when a call does not ask for
// a specific number of results.
func NewFetcher(providers []Provider, pageSize int, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{providers: providers, pageSize: pageSize, logger: logger}
}

type call struct {
	provider Provider
	query    Query
	articles []model.RawArticle
	err      error
}

// Fetch runs every (variant, provider) search concurrently and unions the
// results in variant-major order, keeping the first occurrence of each URL.
// It fails only when no search succeeded.
func (f *Fetcher) Fetch(ctx context.Context, topic string, maxResults int) (Result, error) {
	pageSize := f.pageSize
	if maxResults > 0 {
		pageSize = maxResults
	}

	var calls []*call
	for _, q := range ExpandQueries(topic) {
		for _, p := range f.providers {
			calls = append(calls, &call{provider: p, query: q})
		}
	}
	if len(calls) == 0 {
		return Result{Articles: []model.RawArticle{}}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range calls {
		g.Go(func() error {
			c.articles, c.err = c.provider.Search(gctx, c.query, pageSize)
			return nil
		})
	}
	_ = g.Wait()

	result := Result{Articles: []model.RawArticle{}}
	seen := map[string]struct{}{}
	succeeded := 0
	for _, c := range calls {
		if c.err != nil {
			f.logger.Warn("search variant failed",
				"provider", c.provider.Name(), "query", c.query.String(), "error", c.err)
			result.Failed = append(result.Failed, c.err)
			continue
		}
		succeeded++
		for _, a := range c.articles {
			key := NormalizeURL(a.URL)
			if key != "" {
				if _, dup := seen[key]; dup {
					result.Duplicates++
					continue
				}
				seen[key] = struct{}{}
			}
			result.Articles = append(result.Articles, a)
		}
	}

	if succeeded == 0 {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		return result, errors.Join(result.Failed...)
	}

	f.logger.Debug("fetched articles",
		"topic", topic, "articles", len(result.Articles),
		"duplicates", result.Duplicates, "failed_variants", len(result.Failed))
	return result, nil
}
