// Package archive uploads rendered reports to object storage.
package archive

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/pep299/news-summarizer/internal/report"
)

// Store is an object store accepting whole documents.
type Store interface {
	// Put uploads data and returns the object location.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// Key is <prefix>/<topic-slug>/<UTC timestamp>.pdf.
func Key(prefix, topic string, at time.Time) string {
	slug := report.Slug(topic)
	if slug == "" {
		slug = "untitled"
	}
	return path.Join(prefix, slug, at.UTC().Format("20060102T150405Z")+".pdf")
}

// MemoryStore keeps objects in a map, for tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return "mem://" + key, nil
}

func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Keys lists stored keys in no particular order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

func (m *MemoryStore) Close() error { return nil }
