package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ytget/yt-batch-downloader/internal/model"
)

// DefaultTTL is the lifetime of a cached entry
const DefaultTTL = 300 * time.Second

type entry struct {
	value      model.Metadata
	insertedAt time.Time
}

// MetadataCache maps normalized source URLs to resolved metadata
type MetadataCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

// Option configures a MetadataCache
type Option func(*MetadataCache)

// WithClock replaces the wall clock, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(c *MetadataCache) {
		c.now = now
	}
}

// NewMetadataCache creates a cache whose entries live for ttl.
// A non-positive ttl falls back to DefaultTTL.
func NewMetadataCache(ttl time.Duration, opts ...Option) *MetadataCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MetadataCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured entry lifetime
func (c *MetadataCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the value for key if it is younger than the TTL.
// An expired entry is removed.
func (c *MetadataCache) Get(key string) (model.Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return model.Metadata{}, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		delete(c.entries, key)
		return model.Metadata{}, false
	}
	return e.value, true
}

// Set stores value under key, overwriting both value and timestamp
func (c *MetadataCache) Set(key string, value model.Metadata) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, insertedAt: c.now()}
	c.mu.Unlock()
}

// Clear removes every entry
func (c *MetadataCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// ClearExpired removes every expired entry and returns how many were dropped
func (c *MetadataCache) ClearExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.insertedAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included
func (c *MetadataCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartJanitor purges expired entries every interval until ctx is done
func (c *MetadataCache) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.ttl
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.ClearExpired()
			}
		}
	}()
}
