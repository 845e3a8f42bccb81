package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_BasicOperations(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute})
	defer c.Close()

	t.Run("SetAndGet", func(t *testing.T) {
		c.Set(ctx, "progress", "blob1")

		val, ok := c.Get(ctx, "progress")
		assert.True(t, ok)
		assert.Equal(t, "blob1", val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok := c.Get(ctx, "nonexistent")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		c.Set(ctx, "favorites", "original")
		c.Set(ctx, "favorites", "updated")

		val, ok := c.Get(ctx, "favorites")
		assert.True(t, ok)
		assert.Equal(t, "updated", val)
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set(ctx, "notes", "blob")
		c.Delete(ctx, "notes")

		_, ok := c.Get(ctx, "notes")
		assert.False(t, ok)
	})
}

func TestCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute})
	defer c.Close()

	c.SetWithTTL(ctx, "expiring", "value", 30*time.Millisecond)

	val, ok := c.Get(ctx, "expiring")
	require.True(t, ok)
	assert.Equal(t, "value", val)

	time.Sleep(50 * time.Millisecond)

	_, ok = c.Get(ctx, "expiring")
	assert.False(t, ok)
}

func TestCache_NoExpiry(t *testing.T) {
	ctx := context.Background()
	c := New(Config{})
	defer c.Close()

	// Zero default TTL stores entries without expiry.
	c.Set(ctx, "forever", "value")

	val, ok := c.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, "value", val)
}

func TestCache_MaxItems(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute, MaxItems: 3})
	defer c.Close()

	for i := 0; i < 3; i++ {
		c.Set(ctx, fmt.Sprintf("key%d", i), i)
	}
	assert.Equal(t, int64(3), c.Size())

	// Overflow evicts one entry to make room.
	c.Set(ctx, "key3", 3)
	assert.Equal(t, int64(3), c.Size())

	_, ok := c.Get(ctx, "key3")
	assert.True(t, ok, "newly inserted entry must survive eviction")
}

func TestCache_MaxItemsPrefersExpired(t *testing.T) {
	ctx := context.Background()
	c := New(Config{MaxItems: 2})
	defer c.Close()

	c.SetWithTTL(ctx, "stale", "old", 10*time.Millisecond)
	c.Set(ctx, "live", "fresh")
	time.Sleep(20 * time.Millisecond)

	c.Set(ctx, "new", "value")

	_, ok := c.Get(ctx, "live")
	assert.True(t, ok, "live entry must not be evicted while an expired one exists")
	_, ok = c.Get(ctx, "new")
	assert.True(t, ok)
}

func TestCache_OnEviction(t *testing.T) {
	ctx := context.Background()
	evicted := map[string]any{}
	c := New(Config{
		DefaultTTL: time.Minute,
		OnEviction: func(key string, value any) {
			evicted[key] = value
		},
	})
	defer c.Close()

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Delete(ctx, "a")
	c.Clear(ctx)

	require.Len(t, evicted, 2)
	assert.Equal(t, 1, evicted["a"])
	assert.Equal(t, 2, evicted["b"])
}

func TestCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute})
	defer c.Close()

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	require.Equal(t, int64(2), c.Size())

	c.Clear(ctx)
	assert.Equal(t, int64(0), c.Size())

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestCache_Janitor(t *testing.T) {
	ctx := context.Background()
	c := New(Config{CleanupInterval: 20 * time.Millisecond})
	defer c.Close()

	c.SetWithTTL(ctx, "short", "value", 10*time.Millisecond)
	c.Set(ctx, "keep", "value")

	time.Sleep(60 * time.Millisecond)

	// The janitor removes expired entries without any Get touching them.
	assert.Equal(t, int64(1), c.Size())
	_, ok := c.Get(ctx, "keep")
	assert.True(t, ok)
}
