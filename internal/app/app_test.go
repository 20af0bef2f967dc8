package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/news-summarizer/internal/config"
	"github.com/pep299/news-summarizer/internal/logging"
	"github.com/pep299/news-summarizer/internal/metrics"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.NewsAPIKey = "news-key"
	cfg.LLMAPIKey = "llm-key"
	cfg.LLMModel = "gpt-4o-mini"
	return cfg
}

func TestNewWiresServer(t *testing.T) {
	a, err := New(context.Background(), testConfig(), logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Pipeline)
	assert.NotNil(t, a.Service)
	assert.Nil(t, a.Watcher)
	assert.False(t, a.Service.ArchiveEnabled())

	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewWithWatchTopics(t *testing.T) {
	cfg := testConfig()
	cfg.WatchTopics = []string{"tesla earnings"}
	cfg.SlackWebhookURL = "https://hooks.slack.com/services/x"

	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()
	assert.NotNil(t, a.Watcher)
}

func TestNewRejectsBadWatchSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.WatchTopics = []string{"tesla"}
	cfg.WatchSchedule = "whenever"

	_, err := New(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestNewModel(t *testing.T) {
	for _, provider := range []string{"openai", "azure", "gemini"} {
		cfg := testConfig()
		cfg.LLMProvider = provider
		cfg.LLMEndpoint = "https://example.openai.azure.com"
		m, err := NewModel(cfg, metrics.New(), logging.Discard())
		require.NoError(t, err, provider)
		assert.NotNil(t, m, provider)
	}

	cfg := testConfig()
	cfg.LLMProvider = "cohere"
	_, err := NewModel(cfg, nil, logging.Discard())
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "LLM_PROVIDER", cfgErr.Field)
}

func TestNewArchive(t *testing.T) {
	cfg := testConfig()
	store, err := NewArchive(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, store)

	cfg.ArchiveType = "ftp"
	_, err = NewArchive(context.Background(), cfg)
	assert.Error(t, err)
}
