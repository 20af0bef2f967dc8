// Package gemini implements llm.Model on the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pep299/news-summarizer/internal/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Client handles Gemini API operations
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Gemini API client. An empty baseURL selects the
// public endpoint.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// geminiRequest represents the request structure for Gemini API
type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

// Complete sends one generateContent call and returns the first candidate's text.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	geminiReq := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: req.User}},
			},
		},
		GenerationConfig: generationConfig{
			Temperature: req.Temperature,
		},
	}
	if req.System != "" {
		geminiReq.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	if req.Schema != nil {
		geminiReq.GenerationConfig.ResponseMimeType = "application/json"
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)

	body, err := json.Marshal(geminiReq)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := gjson.GetBytes(bodyBytes, "error.message").String()
		if message == "" {
			message = strings.TrimSpace(string(bodyBytes))
		}
		return "", &llm.StatusError{Provider: "gemini", StatusCode: resp.StatusCode, Message: message}
	}

	if !gjson.ValidBytes(bodyBytes) {
		return "", fmt.Errorf("decoding response: invalid JSON")
	}

	if reason := gjson.GetBytes(bodyBytes, "promptFeedback.blockReason").String(); reason != "" {
		return "", fmt.Errorf("prompt blocked: %s", reason)
	}

	text := gjson.GetBytes(bodyBytes, "candidates.0.content.parts.0.text")
	if !text.Exists() || text.String() == "" {
		return "", fmt.Errorf("no content in response")
	}

	return text.String(), nil
}

var _ llm.Model = (*Client)(nil)
