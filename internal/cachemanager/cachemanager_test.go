package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "answer", 42, time.Minute)
	got, ok := c.Get(ctx, "answer")
	require.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestInMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "short", 1, 20*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	_, ok := c.Get(ctx, "short")
	assert.False(t, ok)
}

func TestInMemoryDeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "a", "1", time.Minute)
	c.Set(ctx, "b", "2", time.Minute)
	c.Set(ctx, "c", "3", time.Minute)

	require.NoError(t, c.Delete(ctx, "a", "b"))
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "c")
	assert.True(t, ok)

	require.NoError(t, c.Flush(ctx))
	_, ok = c.Get(ctx, "c")
	assert.False(t, ok)
}

func TestGetWithRefreshExtendsTTL(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "k", 7, 60*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	got, ok := c.GetWithRefresh(ctx, "k", time.Minute)
	require.True(t, ok)
	assert.Equal(t, 7, got)

	// Past the original deadline, alive because the refresh re-set it.
	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get(ctx, "k")
	assert.True(t, ok)
}

func TestReadThroughCacheLoadsOnce(t *testing.T) {
	ctx := context.Background()
	calls := 0
	cache := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	rt := NewReadThroughCache(cache, func(ctx context.Context, input string) (string, error) {
		calls++
		return "loaded:" + input, nil
	}, false)

	got, err := rt.Get(ctx, "key", "in", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "loaded:in", got)

	got, err = rt.Get(ctx, "key", "in", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "loaded:in", got)
	assert.Equal(t, 1, calls)
}

func TestReadThroughCacheDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	calls := 0
	cache := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	rt := NewReadThroughCache(cache, func(ctx context.Context, input string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("first call fails")
		}
		return "ok", nil
	}, false)

	_, err := rt.Get(ctx, "key", "in", time.Minute)
	require.Error(t, err)

	got, err := rt.Get(ctx, "key", "in", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

func TestReadThroughCacheSkip(t *testing.T) {
	ctx := context.Background()
	calls := 0
	cache := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	rt := NewReadThroughCache(cache, func(ctx context.Context, input string) (string, error) {
		calls++
		return "v", nil
	}, true)

	for i := 0; i < 3; i++ {
		_, err := rt.Get(ctx, "key", "in", time.Minute)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}
