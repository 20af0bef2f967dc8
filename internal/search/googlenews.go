package search

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/pep299/news-summarizer/internal/model"
)

// GoogleNewsClient searches the Google News RSS endpoint.
type GoogleNewsClient struct {
	baseURL  string
	language string
	parser   *gofeed.Parser
}

// NewGoogleNewsClient creates a Google News RSS search client.
func NewGoogleNewsClient(baseURL, language string, timeout time.Duration) *GoogleNewsClient {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "news-summarizer/1.0"
	return &GoogleNewsClient{baseURL: baseURL, language: language, parser: parser}
}

func (c *GoogleNewsClient) Name() string { return "googlenews" }

// Search fetches the RSS result page for q and returns at most pageSize items.
func (c *GoogleNewsClient) Search(ctx context.Context, q Query, pageSize int) ([]model.RawArticle, error) {
	lang := c.language
	if lang == "" {
		lang = "en"
	}
	params := url.Values{}
	params.Set("q", q.String())
	params.Set("hl", lang+"-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:"+lang)

	feed, err := c.parser.ParseURLWithContext(c.baseURL+"?"+params.Encode(), ctx)
	if err != nil {
		fetchErr := &FetchError{Provider: c.Name(), Query: q.String(), Err: err}
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			fetchErr.StatusCode = httpErr.StatusCode
		}
		return nil, fetchErr
	}

	count := min(len(feed.Items), pageSize)
	articles := make([]model.RawArticle, 0, count)
	for _, item := range feed.Items[:count] {
		source, description := splitDescription(item.Description)
		if item.Author != nil && source == "" {
			source = item.Author.Name
		}
		title := cleanText(item.Title)
		if source != "" {
			title = strings.TrimSuffix(title, " - "+source)
		}

		published := item.Published
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC().Format(time.RFC3339)
		}

		articles = append(articles, model.RawArticle{
			Title:       title,
			Description: description,
			URL:         item.Link,
			Source:      source,
			PublishedAt: published,
		})
	}
	return articles, nil
}

// splitDescription pulls the publisher out of the item description, which
// Google News renders as a link followed by a <font> element naming the source.
func splitDescription(raw string) (source, text string) {
	if strings.TrimSpace(raw) == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", cleanText(raw)
	}
	font := doc.Find("font").Last()
	source = strings.TrimSpace(font.Text())
	font.Remove()
	text = strings.ReplaceAll(doc.Text(), "\u00a0", " ")
	return source, strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// compile-time checks
var (
	_ Provider = (*NewsAPIClient)(nil)
	_ Provider = (*GoogleNewsClient)(nil)
)
