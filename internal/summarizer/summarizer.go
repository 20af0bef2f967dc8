// Package summarizer turns a single article into a validated SummaryResult
// through a hosted language model.
package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pep299/news-summarizer/internal/llm"
	"github.com/pep299/news-summarizer/internal/model"
)

// Stage names where a summarization failed.
const (
	StageRequest  = "request"
	StageParse    = "parse"
	StageValidate = "validate"
)

// SummarizationError reports why an article has no summary.
type SummarizationError struct {
	URL   string
	Stage string
	Err   error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize %s: %s: %v", e.URL, e.Stage, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

const maxTags = 5

// Options tune a Client.
type Options struct {
	Temperature float64
	// Timeout bounds each call including retries. Zero means no extra bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client summarizes articles with exactly one model call each.
type Client struct {
	model  llm.Model
	schema *outputSchema
	opts   Options
	logger *slog.Logger
}

// New creates a summarization client around model.
func New(m llm.Model, opts Options) (*Client, error) {
	schema, err := newOutputSchema()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{model: m, schema: schema, opts: opts, logger: logger}, nil
}

// Schema returns the JSON schema the model output must satisfy.
func (c *Client) Schema() map[string]any {
	return c.schema.document
}

// Summarize requests a summary and validates it. Any missing or malformed
// field fails the whole article; nothing is defaulted.
func (c *Client) Summarize(ctx context.Context, article model.ScoredArticle) (model.SummaryResult, error) {
	fail := func(stage string, err error) (model.SummaryResult, error) {
		return model.SummaryResult{}, &SummarizationError{URL: article.URL, Stage: stage, Err: err}
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	text, err := c.model.Complete(ctx, llm.Request{
		System:      systemPrompt,
		User:        buildPrompt(article.RawArticle),
		Temperature: c.opts.Temperature,
		SchemaName:  "article_summary",
		Schema:      c.schema.document,
	})
	if err != nil {
		return fail(StageRequest, err)
	}

	raw, ok := extractJSON(text)
	if !ok {
		return fail(StageParse, errors.New("no JSON object in model output"))
	}
	if err := c.schema.validate(raw); err != nil {
		return fail(StageValidate, err)
	}

	var out modelOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return fail(StageParse, err)
	}

	result, err := toResult(out)
	if err != nil {
		return fail(StageValidate, err)
	}

	c.logger.Debug("article summarized", "url", article.URL, "sentiment", result.Sentiment)
	return result, nil
}

func toResult(out modelOutput) (model.SummaryResult, error) {
	headline := strings.TrimSpace(out.Headline)
	summary := strings.TrimSpace(out.Summary)
	if headline == "" {
		return model.SummaryResult{}, errors.New("headline is blank")
	}
	if summary == "" {
		return model.SummaryResult{}, errors.New("summary is blank")
	}

	sentiment, err := model.ParseSentiment(out.Sentiment)
	if err != nil {
		return model.SummaryResult{}, err
	}

	tags := make([]string, 0, len(out.Tags))
	seen := map[string]struct{}{}
	for _, tag := range out.Tags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		key := strings.ToLower(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	if len(tags) == 0 || len(tags) > maxTags {
		return model.SummaryResult{}, fmt.Errorf("expected 1-%d tags, got %d", maxTags, len(tags))
	}

	return model.SummaryResult{
		Headline:   headline,
		Summary:    summary,
		Sentiment:  sentiment,
		Confidence: out.Confidence,
		Tags:       tags,
	}, nil
}
