package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "news-summarizer:"

// RedisCache stores entries as JSON strings with a native TTL.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	hitCount  atomic.Int64
	missCount atomic.Int64
}

// NewRedisCache connects to addr and checks the connection.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get retrieves an entry from redis
func (c *RedisCache) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.missCount.Add(1)
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling cache entry: %w", err)
	}
	c.hitCount.Add(1)
	entry.AccessedAt = time.Now()
	entry.AccessCount++
	return &entry, nil
}

// Set stores an entry in redis
func (c *RedisCache) Set(ctx context.Context, key string, entry *Entry) error {
	stored := *entry
	stamp(key, &stored, c.ttl, time.Now())

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Delete removes an entry from redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, redisKeyPrefix+key).Err()
}

// Exists checks if an entry exists in redis
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

// Clear removes every entry under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	keys, err := c.keys(ctx)
	if err != nil {
		return fmt.Errorf("scanning keys: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("deleting keys: %w", err)
		}
	}
	c.hitCount.Store(0)
	c.missCount.Store(0)
	return nil
}

// GetStats returns cache statistics
func (c *RedisCache) GetStats(ctx context.Context) (*Stats, error) {
	keys, err := c.keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning keys: %w", err)
	}
	stats := &Stats{
		Backend:      "redis",
		TotalEntries: len(keys),
		HitCount:     c.hitCount.Load(),
		MissCount:    c.missCount.Load(),
	}
	stats.computeHitRate()
	for _, key := range keys {
		n, err := c.client.StrLen(ctx, key).Result()
		if err != nil {
			continue
		}
		stats.MemoryUsage += n
	}
	return stats, nil
}

// Close closes the redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
