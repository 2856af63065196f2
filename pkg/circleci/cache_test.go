package circleci_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	ctx := context.Background()

	entry := &circleci.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
		ETag:      "abc123",
	}

	// Set entry
	err := cache.Set(ctx, "key1", entry)
	require.NoError(t, err)

	// Get entry
	retrieved, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.Equal(t, entry.ETag, retrieved.ETag)
}

func TestMemoryCache_GetNonExistent(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "nonexistent")
	require.ErrorIs(t, err, circleci.ErrCacheKeyNotFound)
}

func TestMemoryCache_GetExpired(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	ctx := context.Background()

	entry := &circleci.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(-1 * time.Hour), // Already expired
		ETag:      "abc123",
	}

	err := cache.Set(ctx, "key1", entry)
	require.NoError(t, err)

	_, err = cache.Get(ctx, "key1")
	require.ErrorIs(t, err, circleci.ErrCacheEntryExpired)

	// Expired entries are dropped on access
	assert.False(t, cache.Has(ctx, "key1"))
}

func TestMemoryCache_Delete(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	ctx := context.Background()

	entry := &circleci.CacheEntry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	// Set and verify
	err := cache.Set(ctx, "key1", entry)
	require.NoError(t, err)
	assert.True(t, cache.Has(ctx, "key1"))

	// Delete
	err = cache.Delete(ctx, "key1")
	require.NoError(t, err)

	// Verify deleted
	assert.False(t, cache.Has(ctx, "key1"))
}

func TestMemoryCache_Clear(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	ctx := context.Background()

	// Add multiple entries
	for i := 0; i < 3; i++ {
		entry := &circleci.CacheEntry{
			Data:      []byte("test data"),
			ExpiresAt: time.Now().Add(1 * time.Hour),
		}
		_ = cache.Set(ctx, string(rune('a'+i)), entry)
	}

	// Verify entries exist
	assert.True(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))
	assert.True(t, cache.Has(ctx, "c"))

	// Clear cache
	err := cache.Clear(ctx)
	require.NoError(t, err)

	// Verify all cleared
	assert.False(t, cache.Has(ctx, "a"))
	assert.False(t, cache.Has(ctx, "b"))
	assert.False(t, cache.Has(ctx, "c"))
}

func TestMemoryCache_MaxSize(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(2)
	ctx := context.Background()

	// Entries expire in insertion order, so "a" is the eviction victim
	for i := 0; i < 3; i++ {
		entry := &circleci.CacheEntry{
			Data:      []byte("test data"),
			ExpiresAt: time.Now().Add(time.Duration(i+1) * time.Hour),
		}
		_ = cache.Set(ctx, string(rune('a'+i)), entry)
	}

	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))
	assert.True(t, cache.Has(ctx, "c"))
}

func TestMemoryCache_Cleanup(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	ctx := context.Background()

	// Add expired and non-expired entries
	expiredEntry := &circleci.CacheEntry{
		Data:      []byte("expired"),
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	}
	validEntry := &circleci.CacheEntry{
		Data:      []byte("valid"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	_ = cache.Set(ctx, "expired", expiredEntry)
	_ = cache.Set(ctx, "valid", validEntry)

	// Run cleanup
	cache.Cleanup()

	// Valid entry should still exist
	assert.True(t, cache.Has(ctx, "valid"))
	// Expired entry should be gone
	assert.False(t, cache.Has(ctx, "expired"))
}

func TestCacheManager_GetCacheKey(t *testing.T) {
	t.Parallel()

	manager := circleci.NewCacheManager(nil, nil)

	// Test with no params
	key1 := manager.GetCacheKey("GET", "/v2/me", nil)
	assert.Equal(t, "GET:/v2/me", key1)

	// Params are appended in sorted order, so the key is deterministic
	params := map[string]string{"page-token": "abc", "org-slug": "gh/acme"}
	key2 := manager.GetCacheKey("GET", "/v2/pipeline", params)
	assert.Equal(t, "GET:/v2/pipeline:org-slug=gh/acme&page-token=abc", key2)
}

func TestCacheManager_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	manager := circleci.NewCacheManager(cache, nil)
	ctx := context.Background()

	data := []byte("test data")
	key := "test-key"

	// Set data
	err := manager.Set(ctx, key, data, 1*time.Hour)
	require.NoError(t, err)

	// Get data
	retrieved, err := manager.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, data, retrieved)

	// Check stats
	stats := manager.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestCacheManager_SetWithETag(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	manager := circleci.NewCacheManager(cache, nil)
	ctx := context.Background()

	data := []byte("test data")
	key := "test-key"
	etag := "abc123"

	// Set data with ETag
	err := manager.SetWithETag(ctx, key, data, etag, 1*time.Hour)
	require.NoError(t, err)

	// The entry keeps its validator
	entry, err := manager.GetEntry(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, data, entry.Data)
	assert.Equal(t, etag, entry.ETag)
}

func TestCacheManager_Miss(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	manager := circleci.NewCacheManager(cache, nil)
	ctx := context.Background()

	// Try to get non-existent key
	_, err := manager.Get(ctx, "nonexistent")
	require.Error(t, err)

	// Check stats
	stats := manager.GetStats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCacheManager_NilCache(t *testing.T) {
	t.Parallel()

	manager := circleci.NewCacheManager(nil, nil)
	ctx := context.Background()

	_, err := manager.Get(ctx, "key")
	require.ErrorIs(t, err, circleci.ErrCacheDisabled)

	err = manager.Set(ctx, "key", []byte("data"), time.Minute)
	require.ErrorIs(t, err, circleci.ErrCacheDisabled)

	// Delete and Invalidate are no-ops without a backend
	require.NoError(t, manager.Delete(ctx, "key"))
	require.NoError(t, manager.Invalidate(ctx, "/v2/project/gh/acme/widget"))
}

func TestCacheManager_MaxValueSize(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	manager := circleci.NewCacheManager(cache, &circleci.CacheOptions{
		DefaultTTL:   time.Hour,
		MaxValueSize: 8,
	})
	ctx := context.Background()

	// Oversized bodies are skipped without error
	err := manager.Set(ctx, "big", []byte("this body is larger than eight bytes"), time.Hour)
	require.NoError(t, err)
	assert.False(t, cache.Has(ctx, "big"))

	// Small bodies still go in
	err = manager.Set(ctx, "small", []byte("tiny"), time.Hour)
	require.NoError(t, err)
	assert.True(t, cache.Has(ctx, "small"))
}

func TestCacheManager_MinTTL(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	manager := circleci.NewCacheManager(cache, &circleci.CacheOptions{
		DefaultTTL: time.Hour,
		MinTTL:     time.Hour,
	})
	ctx := context.Background()

	// A TTL below the floor is raised to it
	err := manager.Set(ctx, "key", []byte("data"), time.Nanosecond)
	require.NoError(t, err)

	entry, err := manager.GetEntry(ctx, "key")
	require.NoError(t, err)
	assert.True(t, entry.ExpiresAt.After(time.Now().Add(30*time.Minute)))
}

func TestCacheManager_Invalidate(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	manager := circleci.NewCacheManager(cache, nil)
	ctx := context.Background()

	entityPath := "/v2/context/ctx-1"
	listPath := "/v2/context"

	entityKey := manager.GetCacheKey(http.MethodGet, entityPath, nil)
	listKey := manager.GetCacheKey(http.MethodGet, listPath, nil)

	require.NoError(t, manager.Set(ctx, entityKey, []byte("entity"), time.Hour))
	require.NoError(t, manager.Set(ctx, listKey, []byte("listing"), time.Hour))

	// Invalidating the entity drops its parent collection too
	require.NoError(t, manager.Invalidate(ctx, entityPath))
	assert.False(t, cache.Has(ctx, entityKey))
	assert.False(t, cache.Has(ctx, listKey))
}

func TestCacheStats_GetHitRate(t *testing.T) {
	t.Parallel()

	stats := &circleci.CacheStats{
		Hits:   75,
		Misses: 25,
	}

	hitRate := stats.GetHitRate()
	assert.InDelta(t, 0.75, hitRate, 0.0001)

	// Test with no requests
	emptyStats := &circleci.CacheStats{}
	assert.InDelta(t, 0.0, emptyStats.GetHitRate(), 0.0001)
}

func TestCachingPolicy_ShouldCache(t *testing.T) {
	t.Parallel()

	policy := circleci.DefaultCachingPolicy()

	// Test GET requests (should cache)
	assert.True(t, policy.ShouldCache("GET", "/project/gh/acme/widget", 200))

	// Test POST requests (should not cache by default)
	assert.False(t, policy.ShouldCache("POST", "/project/gh/acme/widget/pipeline", 201))

	// Test error responses (should not cache by default)
	assert.False(t, policy.ShouldCache("GET", "/project/gh/acme/widget", 404))

	// Volatile status listings are excluded
	assert.False(t, policy.ShouldCache("GET", "/recent-builds", 200))
	assert.False(t, policy.ShouldCache("GET", "/workflow/wf-1/job", 200))

	// Test with custom policy
	customPolicy := &circleci.CachingPolicy{
		CacheGET:     true,
		CachePOST:    true,
		CacheErrors:  true,
		IncludePaths: []string{"/insights"},
	}

	// Only included paths should be cached
	assert.True(t, customPolicy.ShouldCache("GET", "/insights/gh/acme/widget/workflows", 200))
	assert.False(t, customPolicy.ShouldCache("GET", "/project/gh/acme/widget", 200))

	// POST should be cached with custom policy
	assert.True(t, customPolicy.ShouldCache("POST", "/insights/gh/acme/widget", 201))

	// Errors should be cached with custom policy
	assert.True(t, customPolicy.ShouldCache("GET", "/insights/gh/acme/widget", 404))
}

func TestCachedResponse(t *testing.T) {
	t.Parallel()

	body, ok := circleci.CachedResponse(nil)
	assert.False(t, ok)
	assert.Nil(t, body)

	body, ok = circleci.CachedResponse(&circleci.Request{})
	assert.False(t, ok)
	assert.Nil(t, body)
}

func TestCacheInterceptor(t *testing.T) {
	t.Parallel()

	manager := circleci.NewCacheManager(circleci.NewMemoryCache(10), nil)
	requestInterceptor, responseInterceptor := circleci.CacheInterceptor(manager, nil)
	ctx := context.Background()

	makeRequest := func() *circleci.Request {
		return &circleci.Request{
			Method:  http.MethodGet,
			Version: circleci.APIVersionV2,
			Path:    "/project/gh/acme/widget",
		}
	}

	// First pass misses; the response gets stored with its ETag
	req := makeRequest()
	require.NoError(t, requestInterceptor(ctx, req))

	_, hit := circleci.CachedResponse(req)
	assert.False(t, hit)

	headers := http.Header{}
	headers.Set("ETag", "abc123")
	resp := &circleci.Response{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       []byte(`{"slug":"gh/acme/widget"}`),
	}
	require.NoError(t, responseInterceptor(ctx, req, resp))

	// Second pass hits and attaches the cached body
	req2 := makeRequest()
	require.NoError(t, requestInterceptor(ctx, req2))

	body, hit := circleci.CachedResponse(req2)
	assert.True(t, hit)
	assert.Equal(t, resp.Body, body)

	// A 304 revalidation serves the stored body as a fresh 200
	req3 := makeRequest()
	notModified := &circleci.Response{StatusCode: http.StatusNotModified}
	require.NoError(t, responseInterceptor(ctx, req3, notModified))
	assert.Equal(t, http.StatusOK, notModified.StatusCode)
	assert.Equal(t, resp.Body, notModified.Body)
}

func TestConditionalRequestInterceptor(t *testing.T) {
	t.Parallel()

	manager := circleci.NewCacheManager(circleci.NewMemoryCache(10), nil)
	ctx := context.Background()

	req := &circleci.Request{
		Method:  http.MethodGet,
		Version: circleci.APIVersionV2,
		Path:    "/project/gh/acme/widget",
	}

	interceptor := circleci.ConditionalRequestInterceptor(manager)

	// Nothing cached yet, so no validator is added
	require.NoError(t, interceptor(ctx, req))
	assert.Empty(t, req.Headers.Get("If-None-Match"))

	// Store an entry with an ETag under the request's key
	key := manager.GetCacheKey(http.MethodGet, "/v2/project/gh/acme/widget", nil)
	require.NoError(t, manager.SetWithETag(ctx, key, []byte("body"), "abc123", time.Hour))

	require.NoError(t, interceptor(ctx, req))
	assert.Equal(t, "abc123", req.Headers.Get("If-None-Match"))
}

func TestCacheInvalidationInterceptor(t *testing.T) {
	t.Parallel()

	cache := circleci.NewMemoryCache(10)
	manager := circleci.NewCacheManager(cache, nil)
	ctx := context.Background()

	key := manager.GetCacheKey(http.MethodGet, "/v2/context/ctx-1", nil)
	require.NoError(t, manager.Set(ctx, key, []byte("cached"), time.Hour))

	interceptor := circleci.CacheInvalidationInterceptor(manager)

	// A failed mutation leaves the cache alone
	req := &circleci.Request{
		Method:  http.MethodDelete,
		Version: circleci.APIVersionV2,
		Path:    "/context/ctx-1",
	}
	require.NoError(t, interceptor(ctx, req, &circleci.Response{StatusCode: http.StatusConflict}))
	assert.True(t, cache.Has(ctx, key))

	// A successful mutation drops the cached read
	require.NoError(t, interceptor(ctx, req, &circleci.Response{StatusCode: http.StatusOK}))
	assert.False(t, cache.Has(ctx, key))
}

func TestSmartCacheConfig_TTLForPath(t *testing.T) {
	t.Parallel()

	config := circleci.DefaultSmartCacheConfig()

	assert.Equal(t, 15*time.Minute, config.TTLForPath("/insights/gh/acme/widget/workflows"))
	assert.Equal(t, 1*time.Minute, config.TTLForPath("/pipeline/p-1"))
	assert.Equal(t, time.Duration(0), config.TTLForPath("/recent-builds"))
}

func TestCacheWarmer(t *testing.T) {
	t.Parallel()

	mockClient := &MockClient{}
	mockProjects := &MockProjectsClient{}
	mockPipelines := &MockPipelinesClient{}
	mockClient.On("Projects").Return(mockProjects)
	mockClient.On("Pipelines").Return(mockPipelines)

	mockProjects.On("Get", mock.Anything, "gh/acme/widget").
		Return(&circleci.Project{Slug: "gh/acme/widget"}, nil)
	mockPipelines.On("ListForProject", mock.Anything, "gh/acme/widget", (*circleci.QueryParams)(nil)).
		Return(&circleci.ListResponse[circleci.Pipeline]{Items: []circleci.Pipeline{{ID: "p-1"}}}, nil)

	mockProjects.On("Get", mock.Anything, "gh/acme/gadget").
		Return(nil, fmt.Errorf("project not found"))

	manager := circleci.NewCacheManager(circleci.NewMemoryCache(10), nil)
	warmer := circleci.NewCacheWarmer(mockClient, manager)

	// Failures on individual projects are collected, not fatal
	err := warmer.Warm(context.Background(), []string{"gh/acme/widget", "gh/acme/gadget"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warming project gh/acme/gadget")

	mockProjects.AssertExpectations(t)
	mockPipelines.AssertExpectations(t)
}
