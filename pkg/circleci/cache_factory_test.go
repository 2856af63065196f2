package circleci_test

import (
	"context"
	"testing"
	"time"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheFactory_MemoryCache(t *testing.T) {
	config := &circleci.CacheConfig{
		Type: circleci.CacheTypeMemory,
		Memory: &circleci.MemoryCacheConfig{
			MaxSize:         100,
			CleanupInterval: "1m",
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, err := circleci.NewCacheFromConfig(ctx, config)
	require.NoError(t, err)
	require.NotNil(t, cache)

	// Test basic operations
	entry := &circleci.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
		ETag:      "test-etag",
	}

	// Set
	err = cache.Set(ctx, "test-key", entry)
	assert.NoError(t, err)

	// Get
	retrieved, err := cache.Get(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.Equal(t, entry.ETag, retrieved.ETag)

	// Has
	assert.True(t, cache.Has(ctx, "test-key"))

	// Delete
	err = cache.Delete(ctx, "test-key")
	assert.NoError(t, err)
	assert.False(t, cache.Has(ctx, "test-key"))
}

func TestCacheFactory_NoOpCache(t *testing.T) {
	config := &circleci.CacheConfig{
		Type: circleci.CacheTypeNone,
	}

	ctx := context.Background()

	cache, err := circleci.NewCacheFromConfig(ctx, config)
	require.NoError(t, err)
	require.NotNil(t, cache)

	entry := &circleci.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	// Set should succeed but do nothing
	err = cache.Set(ctx, "test-key", entry)
	assert.NoError(t, err)

	// Get should always fail
	_, err = cache.Get(ctx, "test-key")
	require.ErrorIs(t, err, circleci.ErrCacheDisabled)

	// Has should always return false
	assert.False(t, cache.Has(ctx, "test-key"))

	// Delete should succeed but do nothing
	err = cache.Delete(ctx, "test-key")
	assert.NoError(t, err)

	// Clear should succeed but do nothing
	err = cache.Clear(ctx)
	assert.NoError(t, err)
}

func TestCacheFactory_NATSRequiresConfig(t *testing.T) {
	config := &circleci.CacheConfig{
		Type: circleci.CacheTypeNATS,
	}

	cache, err := circleci.NewCacheFromConfig(context.Background(), config)
	require.ErrorIs(t, err, circleci.ErrNATSConfigRequired)
	assert.Nil(t, cache)
}

func TestCacheBuilder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, err := circleci.NewCacheBuilder().
		WithType(circleci.CacheTypeMemory).
		WithMemoryConfig(50, "30s").
		WithOptions(&circleci.CacheOptions{
			DefaultTTL:   10 * time.Minute,
			MinTTL:       time.Second,
			MaxValueSize: 1024,
		}).
		Build(ctx)

	require.NoError(t, err)
	require.NotNil(t, cache)

	// Test that the cache works
	entry := &circleci.CacheEntry{
		Data:      []byte("builder test"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	err = cache.Set(ctx, "builder-key", entry)
	assert.NoError(t, err)

	retrieved, err := cache.Get(ctx, "builder-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
}

func TestCacheChain(t *testing.T) {
	// Create two memory caches
	l1Cache := circleci.NewMemoryCache(10)
	l2Cache := circleci.NewMemoryCache(100)

	// Create chain
	chain := circleci.NewCacheChain(l1Cache, l2Cache)

	ctx := context.Background()
	entry := &circleci.CacheEntry{
		Data:      []byte("chain test"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	// Set should store in both caches
	err := chain.Set(ctx, "chain-key", entry)
	assert.NoError(t, err)

	// Verify both caches have the entry
	assert.True(t, l1Cache.Has(ctx, "chain-key"))
	assert.True(t, l2Cache.Has(ctx, "chain-key"))

	// Delete from L1 only
	err = l1Cache.Delete(ctx, "chain-key")
	assert.NoError(t, err)

	// Get should still work (from L2) and repopulate L1
	retrieved, err := chain.Get(ctx, "chain-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)

	// L1 should have the entry again
	assert.True(t, l1Cache.Has(ctx, "chain-key"))

	// Delete from chain should delete from both
	err = chain.Delete(ctx, "chain-key")
	assert.NoError(t, err)
	assert.False(t, l1Cache.Has(ctx, "chain-key"))
	assert.False(t, l2Cache.Has(ctx, "chain-key"))
}

func TestCacheChain_Miss(t *testing.T) {
	chain := circleci.NewCacheChain(circleci.NewMemoryCache(10), circleci.NewMemoryCache(10))

	_, err := chain.Get(context.Background(), "nowhere")
	require.ErrorIs(t, err, circleci.ErrKeyNotFoundInAnyCache)
}

func TestDefaultCacheConfig(t *testing.T) {
	config := circleci.DefaultCacheConfig()
	assert.Equal(t, circleci.CacheTypeMemory, config.Type)
	assert.NotNil(t, config.Memory)
	assert.Equal(t, 1000, config.Memory.MaxSize)
	assert.Equal(t, "1m", config.Memory.CleanupInterval)
	assert.NotNil(t, config.Options)
}

func TestCacheFactory_InvalidType(t *testing.T) {
	config := &circleci.CacheConfig{
		Type: circleci.CacheType("invalid"),
	}

	cache, err := circleci.NewCacheFromConfig(context.Background(), config)
	require.ErrorIs(t, err, circleci.ErrUnsupportedCacheType)
	assert.Nil(t, cache)
}

func TestCacheFactory_InvalidCleanupInterval(t *testing.T) {
	config := &circleci.CacheConfig{
		Type: circleci.CacheTypeMemory,
		Memory: &circleci.MemoryCacheConfig{
			MaxSize:         10,
			CleanupInterval: "not-a-duration",
		},
	}

	cache, err := circleci.NewCacheFromConfig(context.Background(), config)
	require.Error(t, err)
	assert.Nil(t, cache)
	assert.Contains(t, err.Error(), "cleanup interval")
}

func TestCacheFactory_NilConfig(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, err := circleci.NewCacheFromConfig(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, cache)

	// Should use default config (memory cache)
	entry := &circleci.CacheEntry{
		Data:      []byte("default test"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	err = cache.Set(ctx, "default-key", entry)
	assert.NoError(t, err)

	retrieved, err := cache.Get(ctx, "default-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
}
