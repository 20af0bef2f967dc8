// Package app builds the object graph shared by the server, CLI and cloud
// function entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pep299/news-summarizer/internal/archive"
	"github.com/pep299/news-summarizer/internal/cache"
	"github.com/pep299/news-summarizer/internal/config"
	"github.com/pep299/news-summarizer/internal/gemini"
	"github.com/pep299/news-summarizer/internal/handlers"
	"github.com/pep299/news-summarizer/internal/llm"
	"github.com/pep299/news-summarizer/internal/metrics"
	"github.com/pep299/news-summarizer/internal/openaichat"
	"github.com/pep299/news-summarizer/internal/pipeline"
	"github.com/pep299/news-summarizer/internal/relevance"
	"github.com/pep299/news-summarizer/internal/report"
	"github.com/pep299/news-summarizer/internal/search"
	"github.com/pep299/news-summarizer/internal/service"
	"github.com/pep299/news-summarizer/internal/slack"
	"github.com/pep299/news-summarizer/internal/summarizer"
	"github.com/pep299/news-summarizer/internal/watch"
)

const (
	retryInitialInterval = 500 * time.Millisecond
	watchTimeout         = 30 * time.Minute
)

// Application holds all dependencies
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Pipeline *pipeline.Pipeline
	Service  *service.Service
	Server   *handlers.Server
	// Watcher is nil when no topics are watched.
	Watcher *watch.Watcher

	closers []func() error
}

// New wires every component from cfg. External clients are created but not
// contacted, except the redis cache which is pinged.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Application{Config: cfg, Logger: logger, Metrics: metrics.New()}

	model, err := NewModel(cfg, a.Metrics, logger)
	if err != nil {
		return nil, err
	}
	summ, err := summarizer.New(model, summarizer.Options{
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.RequestTimeout() * time.Duration(cfg.LLMMaxRetries+1),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating summarizer: %w", err)
	}

	opts := pipeline.Options{
		Concurrency: cfg.MaxConcurrentRequests,
		Metrics:     a.Metrics,
		Logger:      logger,
	}
	if cfg.EnrichContent {
		opts.Enricher = search.NewEnricher(cfg.RequestTimeout(), cfg.MaxConcurrentRequests, logger)
	}
	a.Pipeline = pipeline.New(
		NewFetcher(cfg, logger),
		relevance.NewFilter(cfg.RelevanceThreshold, relevance.Mode(cfg.RelevanceMode), logger).WithLimit(cfg.MaxArticles),
		summ,
		report.NewAssembler(),
		opts,
	)

	cacheManager, err := cache.NewManager(ctx, cache.Options{
		Type:          cfg.CacheType,
		TTL:           cfg.CacheTTL(),
		Size:          cfg.CacheSize,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		Bucket:        cfg.CacheBucket,
		Metrics:       a.Metrics,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating cache manager: %w", err)
	}
	a.closers = append(a.closers, cacheManager.Close)

	store, err := NewArchive(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	svcOpts := service.Options{
		Cache:             cacheManager,
		ArchivePrefix:     cfg.ArchivePrefix,
		DefaultThreshold:  cfg.RelevanceThreshold,
		DefaultMaxResults: cfg.MaxResultsPerQuery,
		Metrics:           a.Metrics,
		Logger:            logger,
	}
	if store != nil {
		svcOpts.Archive = store
		a.closers = append(a.closers, store.Close)
	}
	a.Service = service.New(a.Pipeline, svcOpts)

	a.Server = handlers.NewServer(cfg, a.Service, a.Metrics, logger)

	if len(cfg.WatchTopics) > 0 {
		watchOpts := watch.Options{Timeout: watchTimeout, Logger: logger}
		if cfg.SlackWebhookURL != "" {
			watchOpts.Notifier = slack.NewClient(cfg.SlackWebhookURL, cfg.SlackChannel)
		}
		a.Watcher, err = watch.New(cfg.WatchSchedule, cfg.WatchTopics, a.Service, watchOpts)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// Router returns the HTTP handler tree.
func (a *Application) Router() http.Handler {
	return a.Server.SetupRoutes()
}

// Close cleans up resources
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewFetcher builds the fetcher over the enabled search providers.
func NewFetcher(cfg *config.Config, logger *slog.Logger) *search.Fetcher {
	var providers []search.Provider
	if cfg.HasProvider("newsapi") {
		providers = append(providers, search.NewNewsAPIClient(cfg.NewsAPIKey, cfg.NewsAPIURL, cfg.NewsLanguage, cfg.RequestTimeout()))
	}
	if cfg.HasProvider("googlenews") {
		providers = append(providers, search.NewGoogleNewsClient(cfg.GoogleNewsURL, cfg.NewsLanguage, cfg.RequestTimeout()))
	}
	return search.NewFetcher(providers, cfg.MaxResultsPerQuery, logger)
}

// NewModel selects the provider client and wraps it, innermost first, with
// metrics observation, rate limiting and retry.
func NewModel(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (llm.Model, error) {
	var base llm.Model
	switch cfg.LLMProvider {
	case "openai", "azure":
		base = openaichat.New(openaichat.Config{
			Provider:   cfg.LLMProvider,
			APIKey:     cfg.LLMAPIKey,
			Endpoint:   cfg.LLMEndpoint,
			Model:      cfg.LLMModel,
			APIVersion: cfg.AzureAPIVersion,
			Timeout:    cfg.RequestTimeout(),
		})
	case "gemini":
		base = gemini.NewClient(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEndpoint, cfg.RequestTimeout())
	default:
		return nil, &config.ConfigError{Field: "LLM_PROVIDER", Message: fmt.Sprintf("unknown provider %q", cfg.LLMProvider)}
	}

	model := llm.WithObserver(base, m.RecordLLMCall)
	model = llm.WithRateLimit(model, cfg.LLMRatePerSec, max(1, cfg.MaxConcurrentRequests))
	return llm.WithRetry(model, cfg.LLMMaxRetries, retryInitialInterval, logger), nil
}

// NewArchive returns the configured store, or nil for "none".
func NewArchive(ctx context.Context, cfg *config.Config) (archive.Store, error) {
	switch cfg.ArchiveType {
	case "", "none":
		return nil, nil
	case "gcs":
		return archive.NewGCSStore(ctx, cfg.ArchiveBucket)
	case "s3":
		return archive.NewS3Store(ctx, archive.S3Options{
			Bucket:       cfg.ArchiveBucket,
			Region:       cfg.S3Region,
			UsePathStyle: cfg.S3UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported archive type: %s", cfg.ArchiveType)
	}
}
