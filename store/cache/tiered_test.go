package cache

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newL1OnlyCache(t *testing.T) *TieredCache {
	t.Helper()
	tc, err := NewTieredCache(&TieredCacheConfig{
		L1MaxItems: 100,
		EnableL1:   true,
		EnableL2:   false,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tc.Close() })
	return tc
}

func TestTieredCache_L1Hit(t *testing.T) {
	ctx := context.Background()
	tc := newL1OnlyCache(t)

	tc.Set(ctx, "progress", "blob")

	val, found := tc.Get(ctx, "progress", nil)
	assert.True(t, found)
	assert.Equal(t, "blob", val)
}

func TestTieredCache_L3Fetch(t *testing.T) {
	ctx := context.Background()
	tc := newL1OnlyCache(t)

	fetches := 0
	fetcher := func(_ context.Context, key string) (any, error) {
		fetches++
		return "from-db:" + key, nil
	}

	val, found := tc.Get(ctx, "favorites", fetcher)
	require.True(t, found)
	assert.Equal(t, "from-db:favorites", val)
	assert.Equal(t, 1, fetches)

	// Second read must come from L1 without touching the fetcher.
	val, found = tc.Get(ctx, "favorites", fetcher)
	require.True(t, found)
	assert.Equal(t, "from-db:favorites", val)
	assert.Equal(t, 1, fetches)
}

func TestTieredCache_FetcherError(t *testing.T) {
	ctx := context.Background()
	tc := newL1OnlyCache(t)

	fetcher := func(_ context.Context, _ string) (any, error) {
		return nil, errors.New("db unavailable")
	}

	val, found := tc.Get(ctx, "missing", fetcher)
	assert.False(t, found)
	assert.Nil(t, val)
}

func TestTieredCache_MissWithoutFetcher(t *testing.T) {
	ctx := context.Background()
	tc := newL1OnlyCache(t)

	_, found := tc.Get(ctx, "missing", nil)
	assert.False(t, found)
}

func TestTieredCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	tc := newL1OnlyCache(t)

	tc.Set(ctx, "notes", "stale")

	err := tc.Invalidate(ctx, "notes", func(_ context.Context, _ string) (any, error) {
		return "fresh", nil
	})
	require.NoError(t, err)

	val, found := tc.Get(ctx, "notes", nil)
	require.True(t, found)
	assert.Equal(t, "fresh", val)
}

func TestTieredCache_InvalidateWithoutFetcher(t *testing.T) {
	ctx := context.Background()
	tc := newL1OnlyCache(t)

	tc.Set(ctx, "notes", "stale")
	require.NoError(t, tc.Invalidate(ctx, "notes", nil))

	_, found := tc.Get(ctx, "notes", nil)
	assert.False(t, found)
}

func TestTieredCache_Stats(t *testing.T) {
	ctx := context.Background()
	tc := newL1OnlyCache(t)

	tc.Set(ctx, "a", 1)
	tc.Set(ctx, "b", 2)

	stats := tc.Stats()
	assert.Equal(t, true, stats["l1_enabled"])
	assert.Equal(t, false, stats["l2_enabled"])
	assert.Equal(t, int64(2), stats["l1_size"])
}

func TestNilRedisCache(t *testing.T) {
	ctx := context.Background()
	c := NewNilRedisCache()

	c.Set(ctx, "key", "value")
	_, found := c.Get(ctx, "key")
	assert.False(t, found, "nil cache never stores anything")
	assert.NoError(t, c.Close())
}
