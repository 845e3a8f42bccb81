// Package cache provides the in-process and optional Redis cache layers used
// by the store.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the configuration for the in-memory cache.
type Config struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	MaxItems        int
	OnEviction      func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

func (i *item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// Cache is a TTL cache built on sync.Map with a background janitor.
// Overflow beyond MaxItems evicts expired entries first, then an arbitrary
// entry; precise LRU order is not maintained.
type Cache struct {
	data   sync.Map
	size   atomic.Int64
	config Config

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache and starts its cleanup goroutine when a cleanup
// interval is configured.
func New(config Config) *Cache {
	c := &Cache{
		config: config,
		stop:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.janitor()
	}
	return c
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) evictExpired() {
	now := time.Now()
	c.data.Range(func(key, value any) bool {
		if it, ok := value.(*item); ok && it.expired(now) {
			c.remove(key.(string), it)
		}
		return true
	})
}

func (c *Cache) remove(key string, it *item) {
	if _, loaded := c.data.LoadAndDelete(key); loaded {
		c.size.Add(-1)
		if c.config.OnEviction != nil {
			c.config.OnEviction(key, it.value)
		}
	}
}

// Get returns the cached value for key, treating expired entries as misses.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	value, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}
	it := value.(*item)
	if it.expired(time.Now()) {
		c.remove(key, it)
		return nil, false
	}
	return it.value, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	c.SetWithTTL(ctx, key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with a custom TTL. A non-positive ttl stores the
// value without expiry.
func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	it := &item{value: value}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}

	if _, loaded := c.data.Load(key); !loaded {
		if c.config.MaxItems > 0 && int(c.size.Load()) >= c.config.MaxItems {
			c.evictExpired()
			if int(c.size.Load()) >= c.config.MaxItems {
				c.evictOne()
			}
		}
	}

	if _, loaded := c.data.Swap(key, it); !loaded {
		c.size.Add(1)
	}
}

// evictOne drops one arbitrary entry to make room.
func (c *Cache) evictOne() {
	c.data.Range(func(key, value any) bool {
		c.remove(key.(string), value.(*item))
		return false
	})
}

// Delete removes a key.
func (c *Cache) Delete(_ context.Context, key string) {
	if value, loaded := c.data.LoadAndDelete(key); loaded {
		c.size.Add(-1)
		if c.config.OnEviction != nil {
			c.config.OnEviction(key, value.(*item).value)
		}
	}
}

// Clear removes every entry.
func (c *Cache) Clear(ctx context.Context) {
	c.data.Range(func(key, _ any) bool {
		c.Delete(ctx, key.(string))
		return true
	})
}

// Size returns the current number of entries.
func (c *Cache) Size() int64 {
	return c.size.Load()
}

// Close stops the cleanup goroutine. The cache stays usable afterwards but
// no longer evicts in the background.
func (c *Cache) Close() error {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	return nil
}
