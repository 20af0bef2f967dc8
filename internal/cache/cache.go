// Package cache stores generated reports by topic key in memory, Redis or
// Cloud Storage.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pep299/news-summarizer/internal/metrics"
	"github.com/pep299/news-summarizer/internal/report"
)

// Cache interface defines cache operations
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// Entry is a cached report for one topic request.
type Entry struct {
	Key         string         `json:"key"`
	Topic       string         `json:"topic"`
	Report      *report.Report `json:"report"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
	AccessedAt  time.Time      `json:"accessed_at"`
	AccessCount int            `json:"access_count"`
}

// Stats represents cache statistics
type Stats struct {
	Backend      string        `json:"backend"`
	TotalEntries int           `json:"total_entries"`
	HitCount     int64         `json:"hit_count"`
	MissCount    int64         `json:"miss_count"`
	HitRate      float64       `json:"hit_rate"`
	MemoryUsage  int64         `json:"memory_usage_bytes"`
	OldestEntry  time.Time     `json:"oldest_entry"`
	AverageAge   time.Duration `json:"average_age"`
}

func (s *Stats) computeHitRate() {
	if total := s.HitCount + s.MissCount; total > 0 {
		s.HitRate = float64(s.HitCount) / float64(total)
	}
}

// Common cache errors
var (
	ErrCacheMiss       = errors.New("cache miss")
	ErrUnsupportedType = errors.New("unsupported cache type")
)

// stamp fills the bookkeeping fields of a fresh entry.
func stamp(key string, entry *Entry, ttl time.Duration, now time.Time) {
	entry.Key = key
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.ExpiresAt = now.Add(ttl)
	entry.AccessedAt = now
}

func estimateSize(entry *Entry) int64 {
	data, err := json.Marshal(entry)
	if err != nil {
		return 0
	}
	return int64(len(data))
}

// Options select and configure a backend.
type Options struct {
	Type          string
	TTL           time.Duration
	Size          int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Bucket        string
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// Manager handles cache operations with convenience methods
type Manager struct {
	cache   Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewManager creates a new cache manager backed by opts.Type.
func NewManager(ctx context.Context, opts Options) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "cache", "backend", opts.Type)

	var c Cache
	switch opts.Type {
	case "", "memory":
		c = NewMemoryCache(opts.Size, opts.TTL)
	case "redis":
		rc, err := NewRedisCache(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.TTL)
		if err != nil {
			return nil, err
		}
		c = rc
	case "gcs":
		gc, err := NewCloudStorageCache(ctx, opts.Bucket, opts.TTL, logger)
		if err != nil {
			return nil, err
		}
		c = gc
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, opts.Type)
	}

	return NewManagerWithCache(c, opts.Metrics, logger), nil
}

// NewManagerWithCache wraps an existing backend.
func NewManagerWithCache(c Cache, m *metrics.Metrics, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cache: c, metrics: m, logger: logger}
}

// GetReport returns the cached report for key, or ErrCacheMiss.
func (m *Manager) GetReport(ctx context.Context, key string) (*report.Report, error) {
	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			m.metrics.RecordCache(false)
		}
		return nil, err
	}
	if entry.Report == nil {
		m.metrics.RecordCache(false)
		return nil, ErrCacheMiss
	}
	m.metrics.RecordCache(true)
	return entry.Report, nil
}

// SetReport caches rep under key.
func (m *Manager) SetReport(ctx context.Context, key, topic string, rep *report.Report) error {
	if err := m.cache.Set(ctx, key, &Entry{Topic: topic, Report: rep}); err != nil {
		return fmt.Errorf("caching report: %w", err)
	}
	m.logger.Debug("report cached", "key", key, "topic", topic, "entries", rep.Len())
	return nil
}

// Invalidate drops the cached report for key.
func (m *Manager) Invalidate(ctx context.Context, key string) error {
	return m.cache.Delete(ctx, key)
}

// GetStats returns cache statistics
func (m *Manager) GetStats(ctx context.Context) (*Stats, error) {
	return m.cache.GetStats(ctx)
}

// Clear clears all cached entries
func (m *Manager) Clear(ctx context.Context) error {
	return m.cache.Clear(ctx)
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.cache.Close()
}

// NormalizeTopic lowercases a topic and collapses inner whitespace.
func NormalizeTopic(topic string) string {
	return strings.Join(strings.Fields(strings.ToLower(topic)), " ")
}

// GenerateKey generates a cache key for a report request. Topics differing
// only in case or spacing share a key.
func GenerateKey(topic string, threshold float64, maxResults int) string {
	identifier := fmt.Sprintf("%s|%.3f|%d", NormalizeTopic(topic), threshold, maxResults)
	hash := md5.Sum([]byte(identifier))
	return fmt.Sprintf("report:%x", hash)
}
