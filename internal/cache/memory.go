package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMemorySize = 128

// MemoryCache is a size-bounded LRU whose entries expire after the TTL.
type MemoryCache struct {
	lru       *expirable.LRU[string, *Entry]
	ttl       time.Duration
	mutex     sync.Mutex
	hitCount  atomic.Int64
	missCount atomic.Int64
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = defaultMemorySize
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, *Entry](size, nil, ttl),
		ttl: ttl,
	}
}

// Get retrieves an entry from cache
func (c *MemoryCache) Get(ctx context.Context, key string) (*Entry, error) {
	entry, ok := c.lru.Get(key)
	if !ok || time.Now().After(entry.ExpiresAt) {
		c.missCount.Add(1)
		return nil, ErrCacheMiss
	}
	c.hitCount.Add(1)

	c.mutex.Lock()
	entry.AccessedAt = time.Now()
	entry.AccessCount++
	out := *entry
	c.mutex.Unlock()

	return &out, nil
}

// Set stores an entry in cache
func (c *MemoryCache) Set(ctx context.Context, key string, entry *Entry) error {
	stored := *entry
	stamp(key, &stored, c.ttl, time.Now())
	stored.AccessCount = 0
	c.lru.Add(key, &stored)
	return nil
}

// Delete removes an entry from cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Exists checks if an entry exists in cache
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	entry, ok := c.lru.Peek(key)
	return ok && !time.Now().After(entry.ExpiresAt), nil
}

// Clear removes all entries from cache
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.lru.Purge()
	c.hitCount.Store(0)
	c.missCount.Store(0)
	return nil
}

// GetStats returns cache statistics
func (c *MemoryCache) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Backend:   "memory",
		HitCount:  c.hitCount.Load(),
		MissCount: c.missCount.Load(),
	}
	stats.computeHitRate()

	now := time.Now()
	var totalAge time.Duration
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, entry := range c.lru.Values() {
		stats.TotalEntries++
		stats.MemoryUsage += estimateSize(entry)
		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
		totalAge += now.Sub(entry.CreatedAt)
	}
	if stats.TotalEntries > 0 {
		stats.AverageAge = totalAge / time.Duration(stats.TotalEntries)
	}

	return stats, nil
}

// Close is a no-op for the memory backend.
func (c *MemoryCache) Close() error {
	return nil
}
