// Package service serves reports to the HTTP, CLI and scheduler front ends:
// cache lookup, pipeline run, PDF rendering and archiving.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pep299/news-summarizer/internal/archive"
	"github.com/pep299/news-summarizer/internal/cache"
	"github.com/pep299/news-summarizer/internal/metrics"
	"github.com/pep299/news-summarizer/internal/pipeline"
	"github.com/pep299/news-summarizer/internal/report"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*report.Report, error)
}

// Request is a report request from any front end.
type Request struct {
	Topic      string   `json:"topic"`
	MaxResults int      `json:"max_results,omitempty"`
	Threshold  *float64 `json:"threshold,omitempty"`
	// Refresh bypasses the cache.
	Refresh bool `json:"refresh,omitempty"`
}

// Options wire the optional collaborators. Nil Cache disables caching and nil
// Archive disables uploads.
type Options struct {
	Cache             *cache.Manager
	Archive           archive.Store
	ArchivePrefix     string
	DefaultThreshold  float64
	DefaultMaxResults int
	Metrics           *metrics.Metrics
	Logger            *slog.Logger
}

// Service is safe for concurrent use.
type Service struct {
	runner   Runner
	opts     Options
	renderer *report.PDFRenderer
	logger   *slog.Logger
}

func New(runner Runner, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		runner:   runner,
		opts:     opts,
		renderer: report.NewPDFRenderer(),
		logger:   logger.With("component", "service"),
	}
}

func (s *Service) cacheKey(req Request) string {
	threshold := s.opts.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = s.opts.DefaultMaxResults
	}
	return cache.GenerateKey(req.Topic, threshold, maxResults)
}

// Report returns a cached report when one exists, otherwise runs the
// pipeline and caches the result. cached reports which path was taken.
func (s *Service) Report(ctx context.Context, req Request) (rep *report.Report, cached bool, err error) {
	key := s.cacheKey(req)

	if s.opts.Cache != nil && !req.Refresh {
		rep, err := s.opts.Cache.GetReport(ctx, key)
		if err == nil {
			s.logger.Debug("serving cached report", "topic", req.Topic, "report_id", rep.ID())
			return rep, true, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache lookup failed", "topic", req.Topic, "error", err)
		}
	}

	rep, err = s.runner.Run(ctx, pipeline.Request{
		Topic:      req.Topic,
		MaxResults: req.MaxResults,
		Threshold:  req.Threshold,
	})
	if err != nil {
		return nil, false, err
	}

	if s.opts.Cache != nil {
		if err := s.opts.Cache.SetReport(ctx, key, rep.Topic(), rep); err != nil {
			s.logger.Warn("failed to cache report", "topic", rep.Topic(), "error", err)
		}
	}
	return rep, false, nil
}

// WritePDF renders rep to w.
func (s *Service) WritePDF(w io.Writer, rep *report.Report) error {
	return s.renderer.Render(w, report.NewDocument(rep))
}

// PDF renders rep into memory and returns it with its download file name.
func (s *Service) PDF(rep *report.Report) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := s.WritePDF(&buf, rep); err != nil {
		return nil, "", fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), report.FileName(rep.Topic(), rep.GeneratedAt()), nil
}

// ArchiveEnabled reports whether an archive store is configured.
func (s *Service) ArchiveEnabled() bool {
	return s.opts.Archive != nil
}

// Archive uploads the PDF of rep and returns its location.
func (s *Service) Archive(ctx context.Context, rep *report.Report) (string, error) {
	if s.opts.Archive == nil {
		return "", errors.New("no archive configured")
	}
	data, _, err := s.PDF(rep)
	if err != nil {
		return "", err
	}

	key := archive.Key(s.opts.ArchivePrefix, rep.Topic(), rep.GeneratedAt())
	location, err := s.opts.Archive.Put(ctx, key, data, "application/pdf")
	s.opts.Metrics.RecordArchive(err)
	if err != nil {
		return "", fmt.Errorf("archiving report: %w", err)
	}
	s.logger.Info("report archived", "topic", rep.Topic(), "location", location, "bytes", len(data))
	return location, nil
}

// CacheStats returns backend statistics, or nil when caching is disabled.
func (s *Service) CacheStats(ctx context.Context) (*cache.Stats, error) {
	if s.opts.Cache == nil {
		return nil, nil
	}
	return s.opts.Cache.GetStats(ctx)
}

// ClearCache drops every cached report.
func (s *Service) ClearCache(ctx context.Context) error {
	if s.opts.Cache == nil {
		return nil
	}
	return s.opts.Cache.Clear(ctx)
}
