package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"github.com/pep299/news-summarizer/internal/model"
)

const maxEnrichedChars = 4000

// Enricher downloads article pages and fills in missing or truncated content
// with the readable main text.
type Enricher struct {
	httpClient  *http.Client
	concurrency int
	logger      *slog.Logger
}

// NewEnricher creates an enricher with a per page timeout.
func NewEnricher(timeout time.Duration, concurrency int, logger *slog.Logger) *Enricher {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		httpClient:  &http.Client{Timeout: timeout},
		concurrency: concurrency,
		logger:      logger,
	}
}

// Enrich returns a copy of articles with content extracted from the source
// page. Extraction failures leave the article unchanged.
func (e *Enricher) Enrich(ctx context.Context, articles []model.ScoredArticle) []model.ScoredArticle {
	out := make([]model.ScoredArticle, len(articles))
	copy(out, articles)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range out {
		if len([]rune(out[i].Content)) >= maxEnrichedChars/2 {
			continue
		}
		g.Go(func() error {
			text, err := e.extract(gctx, out[i].URL)
			if err != nil {
				e.logger.Debug("content extraction failed", "url", out[i].URL, "error", err)
				return nil
			}
			if text != "" {
				out[i].Content = text
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Enricher) extract(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "news-summarizer/1.0")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, 4<<20), parsed)
	if err != nil {
		return "", fmt.Errorf("readability extraction failed: %w", err)
	}

	text := cleanText(article.TextContent)
	if runes := []rune(text); len(runes) > maxEnrichedChars {
		text = string(runes[:maxEnrichedChars])
	}
	return text, nil
}
