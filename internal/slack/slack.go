// Package slack posts report digests to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pep299/news-summarizer/internal/report"
)

// Client posts messages to a Slack incoming webhook.
type Client struct {
	webhookURL string
	channel    string
	httpClient *http.Client
}

// NewClient creates a new Slack client
func NewClient(webhookURL, channel string) *Client {
	return &Client{
		webhookURL: webhookURL,
		channel:    channel,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// webhookMessage is the incoming-webhook payload.
type webhookMessage struct {
	Channel   string `json:"channel,omitempty"`
	Text      string `json:"text"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// SendDigest posts a compact digest of rep.
func (c *Client) SendDigest(ctx context.Context, rep *report.Report) error {
	return c.sendMessage(ctx, FormatDigest(rep))
}

// SendSimpleMessage sends a simple text message to Slack
func (c *Client) SendSimpleMessage(ctx context.Context, text string) error {
	return c.sendMessage(ctx, text)
}

// FormatDigest renders one line per entry: headline, sentiment and link.
func FormatDigest(rep *report.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":newspaper: *News digest: %s*\n", rep.Topic())
	fmt.Fprintf(&b, "%d articles summarized, %d skipped\n", rep.Len(), rep.Skipped())

	for i, e := range rep.Entries() {
		fmt.Fprintf(&b, "\n%d. *%s* (%s)\n<%s|%s>", i+1,
			escape(e.Summary.Headline), e.Summary.Sentiment, e.Article.URL, escape(sourceLabel(e)))
	}
	if rep.Len() == 0 {
		b.WriteString("\nNo relevant articles this time.")
	}
	return b.String()
}

func sourceLabel(e report.Entry) string {
	if e.Article.Source != "" {
		return e.Article.Source
	}
	return "link"
}

// escape applies Slack's control character escaping.
func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func (c *Client) sendMessage(ctx context.Context, text string) error {
	body, err := json.Marshal(webhookMessage{
		Channel:   c.channel,
		Text:      text,
		Username:  "News Summarizer",
		IconEmoji: ":newspaper:",
	})
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
