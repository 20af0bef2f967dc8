package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("NEWSAPI_KEY", "test-news-key")
	t.Setenv("LLM_API_KEY", "test-llm-key")
}

func TestLoadConfig(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.NewsAPIKey != "test-news-key" {
		t.Errorf("Expected NewsAPIKey to be 'test-news-key', got '%s'", cfg.NewsAPIKey)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected Port to be '8080', got '%s'", cfg.Port)
	}

	if cfg.RelevanceThreshold != 0.5 {
		t.Errorf("Expected RelevanceThreshold to be 0.5, got %v", cfg.RelevanceThreshold)
	}

	if cfg.MaxArticles != 5 {
		t.Errorf("Expected MaxArticles to be 5, got %d", cfg.MaxArticles)
	}

	if cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("Expected default openai model, got '%s'", cfg.LLMModel)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("RELEVANCE_THRESHOLD", "0.25")
	t.Setenv("SEARCH_PROVIDERS", "newsapi, googlenews")
	t.Setenv("ENRICH_CONTENT", "true")
	t.Setenv("WATCH_TOPICS", "tesla earnings,climate policy")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LLMProvider != "gemini" {
		t.Errorf("Expected provider 'gemini', got '%s'", cfg.LLMProvider)
	}
	if cfg.LLMModel != "gemini-1.5-flash" {
		t.Errorf("Expected gemini default model, got '%s'", cfg.LLMModel)
	}
	if cfg.RelevanceThreshold != 0.25 {
		t.Errorf("Expected threshold 0.25, got %v", cfg.RelevanceThreshold)
	}
	if !cfg.HasProvider("googlenews") {
		t.Error("Expected googlenews provider to be enabled")
	}
	if !cfg.EnrichContent {
		t.Error("Expected EnrichContent to be true")
	}
	if len(cfg.WatchTopics) != 2 || cfg.WatchTopics[1] != "climate policy" {
		t.Errorf("Unexpected watch topics: %v", cfg.WatchTopics)
	}
}

func TestLoadConfigYAMLOverlay(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("maxArticles: 10\nrelevanceMode: all_terms\nport: \"9090\"\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnv, path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.MaxArticles != 10 {
		t.Errorf("Expected MaxArticles from YAML to be 10, got %d", cfg.MaxArticles)
	}
	if cfg.RelevanceMode != "all_terms" {
		t.Errorf("Expected RelevanceMode 'all_terms', got '%s'", cfg.RelevanceMode)
	}
	if cfg.Port != "7070" {
		t.Errorf("Expected env to win over YAML, got port '%s'", cfg.Port)
	}
	if cfg.MaxResultsPerQuery != 20 {
		t.Errorf("Expected untouched default 20, got %d", cfg.MaxResultsPerQuery)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"missing news key", map[string]string{"NEWSAPI_KEY": "", "LLM_API_KEY": "k"}, "NEWSAPI_KEY"},
		{"missing llm key", map[string]string{"NEWSAPI_KEY": "k", "LLM_API_KEY": ""}, "LLM_API_KEY"},
		{"threshold out of range", map[string]string{"NEWSAPI_KEY": "k", "LLM_API_KEY": "k", "RELEVANCE_THRESHOLD": "1.5"}, "RELEVANCE_THRESHOLD"},
		{"azure without endpoint", map[string]string{"NEWSAPI_KEY": "k", "LLM_API_KEY": "k", "LLM_PROVIDER": "azure"}, "LLM_ENDPOINT"},
		{"unknown cache", map[string]string{"NEWSAPI_KEY": "k", "LLM_API_KEY": "k", "CACHE_TYPE": "sqlite"}, "CACHE_TYPE"},
		{"archive without bucket", map[string]string{"NEWSAPI_KEY": "k", "LLM_API_KEY": "k", "ARCHIVE_TYPE": "s3"}, "ARCHIVE_BUCKET"},
		{"unknown search provider", map[string]string{"NEWSAPI_KEY": "k", "LLM_API_KEY": "k", "SEARCH_PROVIDERS": "bing"}, "SEARCH_PROVIDERS"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for k, v := range test.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Field != test.field {
				t.Errorf("Expected field '%s', got '%s'", test.field, cfgErr.Field)
			}
		})
	}
}

func TestGoogleNewsOnlyNeedsNoNewsAPIKey(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "")
	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("SEARCH_PROVIDERS", "googlenews")

	if _, err := Load(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestParseStringSlice(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{"a, b , c ", []string{"a", "b", "c"}},
		{"a,,b", []string{"a", "b"}},
	}

	for _, test := range tests {
		result := parseStringSlice(test.input)
		if len(result) != len(test.expected) {
			t.Errorf("For input '%s', expected length %d, got %d", test.input, len(test.expected), len(result))
			continue
		}
		for i, expected := range test.expected {
			if result[i] != expected {
				t.Errorf("For input '%s', expected[%d] = '%s', got '%s'", test.input, i, expected, result[i])
			}
		}
	}
}
