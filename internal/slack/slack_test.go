package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pep299/news-summarizer/internal/model"
	"github.com/pep299/news-summarizer/internal/report"
)

func testReport() *report.Report {
	outcomes := []report.Outcome{
		{
			Article: model.ScoredArticle{
				RawArticle: model.RawArticle{Title: "Tesla earnings", URL: "https://example.com/a", Source: "Reuters"},
				Score:      1,
				Keep:       true,
			},
			Summary: model.SummaryResult{
				Headline:   "Tesla <Beats> Forecasts",
				Summary:    "Record quarter.",
				Sentiment:  model.SentimentPositive,
				Confidence: 0.9,
				Tags:       []string{"tesla"},
			},
		},
		{
			Article: model.ScoredArticle{RawArticle: model.RawArticle{URL: "https://example.com/b"}, Score: 1, Keep: true},
			Err:     context.DeadlineExceeded,
		},
	}
	return report.NewAssembler().Assemble(report.Meta{ID: "r", Topic: "Tesla earnings"}, outcomes)
}

func TestNewClient(t *testing.T) {
	webhookURL := "https://hooks.slack.com/test"
	channel := "#test-channel"

	client := NewClient(webhookURL, channel)

	if client == nil {
		t.Fatal("Expected non-nil client")
	}
	if client.webhookURL != webhookURL {
		t.Errorf("Expected webhook URL '%s', got '%s'", webhookURL, client.webhookURL)
	}
	if client.channel != channel {
		t.Errorf("Expected channel '%s', got '%s'", channel, client.channel)
	}
	if client.httpClient == nil {
		t.Error("Expected non-nil http client")
	}
}

func TestSendSimpleMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if contentType := r.Header.Get("Content-Type"); contentType != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "#test")
	if err := client.SendSimpleMessage(context.Background(), "Test message"); err != nil {
		t.Fatalf("Failed to send simple message: %v", err)
	}
}

func TestSendSimpleMessageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "#test")
	err := client.SendSimpleMessage(context.Background(), "Test message")
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}
	if !strings.Contains(err.Error(), "unexpected status code: 500") {
		t.Errorf("Expected error message to contain status code, got: %v", err)
	}
}

func TestSendDigest(t *testing.T) {
	var payload webhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "#news")
	if err := client.SendDigest(context.Background(), testReport()); err != nil {
		t.Fatalf("Failed to send digest: %v", err)
	}

	if payload.Channel != "#news" {
		t.Errorf("Expected channel '#news', got '%s'", payload.Channel)
	}
	for _, want := range []string{
		"News digest: Tesla earnings",
		"1 articles summarized, 1 skipped",
		"Tesla &lt;Beats&gt; Forecasts",
		"(positive)",
		"<https://example.com/a|Reuters>",
	} {
		if !strings.Contains(payload.Text, want) {
			t.Errorf("Expected digest to contain '%s', got:\n%s", want, payload.Text)
		}
	}
}

func TestFormatDigestEmpty(t *testing.T) {
	rep := report.NewAssembler().Assemble(report.Meta{ID: "r", Topic: "nothing"}, nil)
	text := FormatDigest(rep)
	if !strings.Contains(text, "No relevant articles") {
		t.Errorf("Expected empty notice, got '%s'", text)
	}
}
