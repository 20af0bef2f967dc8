package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pep299/news-summarizer/internal/model"
)

// Provider runs one query against a news search backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query, pageSize int) ([]model.RawArticle, error)
}

// NewsAPIClient searches the NewsAPI "everything" endpoint.
type NewsAPIClient struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewNewsAPIClient creates a NewsAPI client.
func NewNewsAPIClient(apiKey, baseURL, language string, timeout time.Duration) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:   apiKey,
		baseURL:  baseURL,
		language: language,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *NewsAPIClient) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Search issues a single request. Any transport failure or non-ok status
// becomes a *FetchError.
func (c *NewsAPIClient) Search(ctx context.Context, q Query, pageSize int) ([]model.RawArticle, error) {
	params := url.Values{}
	text := q.Text
	if q.Phrase {
		text = `"` + q.Text + `"`
	}
	if q.InTitle {
		params.Set("qInTitle", text)
	} else {
		params.Set("q", text)
	}
	if c.language != "" {
		params.Set("language", c.language)
	}
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("page", "1")

	fail := func(status int, err error) error {
		return &FetchError{Provider: c.Name(), Query: q.String(), StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fail(0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fail(0, fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("reading response: %w", err))
	}

	var parsed newsAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fail(resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
		}
		return nil, fail(resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}
	if resp.StatusCode != http.StatusOK || parsed.Status != "ok" {
		msg := parsed.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if parsed.Code != "" {
			msg = parsed.Code + ": " + msg
		}
		return nil, fail(resp.StatusCode, errors.New(msg))
	}

	articles := make([]model.RawArticle, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		articles = append(articles, model.RawArticle{
			Title:       cleanText(a.Title),
			Description: cleanText(a.Description),
			Content:     cleanText(a.Content),
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
