// Package openaichat implements llm.Model on the Chat Completions API of
// OpenAI and Azure OpenAI.
package openaichat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/pep299/news-summarizer/internal/llm"
)

// Config selects the deployment.
type Config struct {
	// Provider is "openai" or "azure".
	Provider   string
	APIKey     string
	Endpoint   string
	Model      string
	APIVersion string
	Timeout    time.Duration
}

// Client sends chat completions.
type Client struct {
	client   openai.Client
	model    string
	provider string
}

// New creates a chat completion client. Retries are left to llm.WithRetry.
func New(cfg Config) *Client {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	switch cfg.Provider {
	case "azure":
		opts = append(opts,
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	default:
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.Endpoint != "" {
			opts = append(opts, option.WithBaseURL(cfg.Endpoint))
		}
	}

	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	return &Client{client: openai.NewClient(opts...), model: cfg.Model, provider: provider}
}

// Complete returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: param.NewOpt(req.Temperature),
	}
	if req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Strict: param.NewOpt(false),
					Schema: req.Schema,
				},
			},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &llm.StatusError{Provider: c.provider, StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		return "", fmt.Errorf("%s chat completion: %w", c.provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion: no choices in response", c.provider)
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("%s chat completion: refused: %s", c.provider, choice.Message.Refusal)
	}
	return choice.Message.Content, nil
}

var _ llm.Model = (*Client)(nil)
