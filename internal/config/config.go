// Package config loads settings from .env, an optional YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names an optional YAML file merged under the environment.
const ConfigPathEnv = "NEWS_SUMMARIZER_CONFIG"

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port      string `json:"port" yaml:"port"`
	Host      string `json:"host" yaml:"host"`
	LogLevel  string `json:"log_level" yaml:"logLevel"`
	LogFormat string `json:"log_format" yaml:"logFormat"`

	// News search settings
	NewsAPIKey         string   `json:"-" yaml:"newsApiKey"` // Don't expose in JSON
	NewsAPIURL         string   `json:"newsapi_url" yaml:"newsApiUrl"`
	NewsLanguage       string   `json:"news_language" yaml:"newsLanguage"`
	SearchProviders    []string `json:"search_providers" yaml:"searchProviders"`
	GoogleNewsURL      string   `json:"google_news_url" yaml:"googleNewsUrl"`
	MaxResultsPerQuery int      `json:"max_results_per_query" yaml:"maxResultsPerQuery"`
	EnrichContent      bool     `json:"enrich_content" yaml:"enrichContent"`

	// Relevance and report settings
	RelevanceThreshold float64 `json:"relevance_threshold" yaml:"relevanceThreshold"`
	RelevanceMode      string  `json:"relevance_mode" yaml:"relevanceMode"`
	MaxArticles        int     `json:"max_articles" yaml:"maxArticles"`

	// Summarization model settings
	LLMProvider     string  `json:"llm_provider" yaml:"llmProvider"` // "openai", "azure" or "gemini"
	LLMAPIKey       string  `json:"-" yaml:"llmApiKey"`              // Don't expose in JSON
	LLMEndpoint     string  `json:"llm_endpoint" yaml:"llmEndpoint"`
	LLMModel        string  `json:"llm_model" yaml:"llmModel"`
	AzureAPIVersion string  `json:"azure_api_version" yaml:"azureApiVersion"`
	LLMTemperature  float64 `json:"llm_temperature" yaml:"llmTemperature"`
	LLMRatePerSec   float64 `json:"llm_rate_per_second" yaml:"llmRatePerSecond"`
	LLMMaxRetries   int     `json:"llm_max_retries" yaml:"llmMaxRetries"`

	// Rate limiting
	MaxConcurrentRequests int `json:"max_concurrent_requests" yaml:"maxConcurrentRequests"`
	RequestTimeoutSeconds int `json:"request_timeout_seconds" yaml:"requestTimeoutSeconds"`

	// Cache settings
	CacheType     string `json:"cache_type" yaml:"cacheType"`         // "memory", "redis" or "gcs"
	CacheDuration int    `json:"cache_duration" yaml:"cacheDuration"` // in hours
	CacheSize     int    `json:"cache_size" yaml:"cacheSize"`
	RedisAddr     string `json:"redis_addr" yaml:"redisAddr"`
	RedisPassword string `json:"-" yaml:"redisPassword"`
	RedisDB       int    `json:"redis_db" yaml:"redisDb"`
	CacheBucket   string `json:"cache_bucket" yaml:"cacheBucket"`

	// PDF archive settings
	ArchiveType    string `json:"archive_type" yaml:"archiveType"` // "none", "gcs" or "s3"
	ArchiveBucket  string `json:"archive_bucket" yaml:"archiveBucket"`
	ArchivePrefix  string `json:"archive_prefix" yaml:"archivePrefix"`
	S3Region       string `json:"s3_region" yaml:"s3Region"`
	S3UsePathStyle bool   `json:"s3_use_path_style" yaml:"s3UsePathStyle"`

	// Scheduled refresh
	WatchTopics   []string `json:"watch_topics" yaml:"watchTopics"`
	WatchSchedule string   `json:"watch_schedule" yaml:"watchSchedule"`

	// Slack settings
	SlackWebhookURL string `json:"-" yaml:"slackWebhookUrl"` // Don't expose in JSON
	SlackChannel    string `json:"slack_channel" yaml:"slackChannel"`
}

var defaultModels = map[string]string{
	"openai": "gpt-4o-mini",
	"azure":  "gpt-4o-mini",
	"gemini": "gemini-1.5-flash",
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:                  "8080",
		Host:                  "0.0.0.0",
		LogLevel:              "info",
		LogFormat:             "text",
		NewsAPIURL:            "https://newsapi.org/v2/everything",
		NewsLanguage:          "en",
		SearchProviders:       []string{"newsapi"},
		GoogleNewsURL:         "https://news.google.com/rss/search",
		MaxResultsPerQuery:    20,
		RelevanceThreshold:    0.5,
		RelevanceMode:         "overlap",
		MaxArticles:           5,
		LLMProvider:           "openai",
		AzureAPIVersion:       "2024-06-01",
		LLMTemperature:        0.5,
		LLMRatePerSec:         2,
		LLMMaxRetries:         2,
		MaxConcurrentRequests: 5,
		RequestTimeoutSeconds: 30,
		CacheType:             "memory",
		CacheDuration:         6,
		CacheSize:             128,
		RedisAddr:             "localhost:6379",
		CacheBucket:           "news-summarizer-cache",
		ArchiveType:           "none",
		ArchivePrefix:         "reports",
		S3Region:              "us-east-1",
		WatchSchedule:         "0 */2 * * *",
		SlackChannel:          "#news",
	}
}

// Load reads configuration from the optional YAML file, the .env file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := Default()

	if path := os.Getenv(ConfigPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigError{Field: ConfigPathEnv, Message: fmt.Sprintf("cannot read %s: %v", path, err)}
		}
		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, &ConfigError{Field: ConfigPathEnv, Message: fmt.Sprintf("cannot parse %s: %v", path, err)}
		}
	}

	config.applyEnv()
	if config.LLMModel == "" {
		config.LLMModel = defaultModels[config.LLMProvider]
	}

	return config, config.validate()
}

func (c *Config) applyEnv() {
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.Host = getEnvOrDefault("HOST", c.Host)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("LOG_FORMAT", c.LogFormat)

	c.NewsAPIKey = getEnvOrDefault("NEWSAPI_KEY", c.NewsAPIKey)
	c.NewsAPIURL = getEnvOrDefault("NEWSAPI_URL", c.NewsAPIURL)
	c.NewsLanguage = getEnvOrDefault("NEWS_LANGUAGE", c.NewsLanguage)
	if value := os.Getenv("SEARCH_PROVIDERS"); value != "" {
		c.SearchProviders = parseStringSlice(value)
	}
	c.GoogleNewsURL = getEnvOrDefault("GOOGLE_NEWS_URL", c.GoogleNewsURL)
	c.MaxResultsPerQuery = getEnvOrDefaultInt("MAX_RESULTS_PER_QUERY", c.MaxResultsPerQuery)
	c.EnrichContent = getEnvOrDefaultBool("ENRICH_CONTENT", c.EnrichContent)

	c.RelevanceThreshold = getEnvOrDefaultFloat("RELEVANCE_THRESHOLD", c.RelevanceThreshold)
	c.RelevanceMode = getEnvOrDefault("RELEVANCE_MODE", c.RelevanceMode)
	c.MaxArticles = getEnvOrDefaultInt("MAX_ARTICLES", c.MaxArticles)

	c.LLMProvider = strings.ToLower(getEnvOrDefault("LLM_PROVIDER", c.LLMProvider))
	c.LLMAPIKey = getEnvOrDefault("LLM_API_KEY", c.LLMAPIKey)
	c.LLMEndpoint = getEnvOrDefault("LLM_ENDPOINT", c.LLMEndpoint)
	c.LLMModel = getEnvOrDefault("LLM_MODEL", c.LLMModel)
	c.AzureAPIVersion = getEnvOrDefault("AZURE_API_VERSION", c.AzureAPIVersion)
	c.LLMTemperature = getEnvOrDefaultFloat("LLM_TEMPERATURE", c.LLMTemperature)
	c.LLMRatePerSec = getEnvOrDefaultFloat("LLM_RATE_PER_SECOND", c.LLMRatePerSec)
	c.LLMMaxRetries = getEnvOrDefaultInt("LLM_MAX_RETRIES", c.LLMMaxRetries)

	c.MaxConcurrentRequests = getEnvOrDefaultInt("MAX_CONCURRENT_REQUESTS", c.MaxConcurrentRequests)
	c.RequestTimeoutSeconds = getEnvOrDefaultInt("REQUEST_TIMEOUT_SECONDS", c.RequestTimeoutSeconds)

	c.CacheType = getEnvOrDefault("CACHE_TYPE", c.CacheType)
	c.CacheDuration = getEnvOrDefaultInt("CACHE_DURATION_HOURS", c.CacheDuration)
	c.CacheSize = getEnvOrDefaultInt("CACHE_SIZE", c.CacheSize)
	c.RedisAddr = getEnvOrDefault("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnvOrDefault("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvOrDefaultInt("REDIS_DB", c.RedisDB)
	c.CacheBucket = getEnvOrDefault("CACHE_BUCKET", c.CacheBucket)

	c.ArchiveType = getEnvOrDefault("ARCHIVE_TYPE", c.ArchiveType)
	c.ArchiveBucket = getEnvOrDefault("ARCHIVE_BUCKET", c.ArchiveBucket)
	c.ArchivePrefix = getEnvOrDefault("ARCHIVE_PREFIX", c.ArchivePrefix)
	c.S3Region = getEnvOrDefault("S3_REGION", c.S3Region)
	c.S3UsePathStyle = getEnvOrDefaultBool("S3_USE_PATH_STYLE", c.S3UsePathStyle)

	if value := os.Getenv("WATCH_TOPICS"); value != "" {
		c.WatchTopics = parseStringSlice(value)
	}
	c.WatchSchedule = getEnvOrDefault("WATCH_SCHEDULE", c.WatchSchedule)

	c.SlackWebhookURL = getEnvOrDefault("SLACK_WEBHOOK_URL", c.SlackWebhookURL)
	c.SlackChannel = getEnvOrDefault("SLACK_CHANNEL", c.SlackChannel)
}

// RequestTimeout is the per network call timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// CacheTTL is how long a report stays cached.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheDuration) * time.Hour
}

// HasProvider reports whether the named search provider is enabled.
func (c *Config) HasProvider(name string) bool {
	for _, p := range c.SearchProviders {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// validate checks if required configuration values are present
func (c *Config) validate() error {
	if len(c.SearchProviders) == 0 {
		return &ConfigError{Field: "SEARCH_PROVIDERS", Message: "at least one search provider is required"}
	}
	for _, p := range c.SearchProviders {
		switch strings.ToLower(p) {
		case "newsapi", "googlenews":
		default:
			return &ConfigError{Field: "SEARCH_PROVIDERS", Message: fmt.Sprintf("unknown provider %q", p)}
		}
	}
	if c.HasProvider("newsapi") && c.NewsAPIKey == "" {
		return &ConfigError{Field: "NEWSAPI_KEY", Message: "NewsAPI key is required"}
	}

	switch c.LLMProvider {
	case "openai", "gemini":
	case "azure":
		if c.LLMEndpoint == "" {
			return &ConfigError{Field: "LLM_ENDPOINT", Message: "Azure endpoint is required"}
		}
	default:
		return &ConfigError{Field: "LLM_PROVIDER", Message: fmt.Sprintf("unknown provider %q", c.LLMProvider)}
	}
	if c.LLMAPIKey == "" {
		return &ConfigError{Field: "LLM_API_KEY", Message: "LLM API key is required"}
	}

	if c.RelevanceThreshold < 0 || c.RelevanceThreshold > 1 {
		return &ConfigError{Field: "RELEVANCE_THRESHOLD", Message: "must be within [0, 1]"}
	}
	if c.RelevanceMode != "overlap" && c.RelevanceMode != "all_terms" {
		return &ConfigError{Field: "RELEVANCE_MODE", Message: "must be overlap or all_terms"}
	}
	if c.MaxArticles < 0 {
		return &ConfigError{Field: "MAX_ARTICLES", Message: "must not be negative"}
	}

	positive := map[string]int{
		"MAX_RESULTS_PER_QUERY":   c.MaxResultsPerQuery,
		"MAX_CONCURRENT_REQUESTS": c.MaxConcurrentRequests,
		"REQUEST_TIMEOUT_SECONDS": c.RequestTimeoutSeconds,
		"CACHE_DURATION_HOURS":    c.CacheDuration,
		"CACHE_SIZE":              c.CacheSize,
	}
	for field, value := range positive {
		if value <= 0 {
			return &ConfigError{Field: field, Message: "must be positive"}
		}
	}
	if c.LLMRatePerSec <= 0 {
		return &ConfigError{Field: "LLM_RATE_PER_SECOND", Message: "must be positive"}
	}
	if c.LLMMaxRetries < 0 {
		return &ConfigError{Field: "LLM_MAX_RETRIES", Message: "must not be negative"}
	}

	switch c.CacheType {
	case "memory", "redis", "gcs":
	default:
		return &ConfigError{Field: "CACHE_TYPE", Message: fmt.Sprintf("unsupported cache type %q", c.CacheType)}
	}

	switch c.ArchiveType {
	case "", "none":
	case "gcs", "s3":
		if c.ArchiveBucket == "" {
			return &ConfigError{Field: "ARCHIVE_BUCKET", Message: "bucket is required for " + c.ArchiveType + " archive"}
		}
	default:
		return &ConfigError{Field: "ARCHIVE_TYPE", Message: fmt.Sprintf("unsupported archive type %q", c.ArchiveType)}
	}
	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// parseStringSlice parses comma-separated string into slice
func parseStringSlice(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
