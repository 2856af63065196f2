package circleci

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
)

// Static errors returned by cache lookups.
var (
	ErrCacheKeyNotFound  = errors.New("key not found")
	ErrCacheEntryExpired = errors.New("entry expired")
)

// CacheEntry is a stored response body with its expiry and validator.
type CacheEntry struct {
	Data      []byte    `json:"data"           yaml:"data"`
	ExpiresAt time.Time `json:"expires_at"     yaml:"expires_at"`
	ETag      string    `json:"etag,omitempty" yaml:"etag,omitempty"`
}

// Expired reports whether the entry's TTL has passed.
func (e *CacheEntry) Expired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Cache is the backend interface behind the response cache. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// MemoryCache is an in-process Cache with TTL expiry and a max entry count.
// When full, the entry expiring soonest is evicted.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
// Non-positive maxSize selects the default size.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get returns the entry for key, or an error when absent or expired.
// Expired entries are removed on access.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	if entry.Expired() {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return entry, nil
}

// Set stores an entry, evicting the soonest-expiring one when full.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}

	c.entries[key] = entry

	return nil
}

// evictLocked removes the entry with the earliest expiry. Callers hold the
// write lock.
func (c *MemoryCache) evictLocked() {
	var (
		victim   string
		earliest time.Time
	)

	for key, entry := range c.entries {
		if victim == "" || entry.ExpiresAt.Before(earliest) {
			victim = key
			earliest = entry.ExpiresAt
		}
	}

	if victim != "" {
		delete(c.entries, victim)
	}
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)

	return nil
}

// Has reports whether a live entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]

	return ok && !entry.Expired()
}

// Cleanup removes all expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.Expired() {
			delete(c.entries, key)
		}
	}
}

// StartCleanup runs Cleanup on the given interval until ctx is done.
func (c *MemoryCache) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// CacheOptions carries backend-independent cache tuning.
type CacheOptions struct {
	// DefaultTTL applies when an entry is stored without an explicit TTL.
	DefaultTTL time.Duration
	// MinTTL floors the TTL of any stored entry.
	MinTTL time.Duration
	// MaxValueSize skips storing bodies larger than this many bytes; zero
	// disables the check.
	MaxValueSize int
}

// DefaultCacheOptions returns the default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		DefaultTTL:   constants.DefaultCacheTTL,
		MinTTL:       constants.CacheMinTTL,
		MaxValueSize: constants.MaxCacheValueSize,
	}
}

// CacheStats counts cache manager traffic.
type CacheStats struct {
	Hits   int64 `json:"hits"   yaml:"hits"`
	Misses int64 `json:"misses" yaml:"misses"`
	Sets   int64 `json:"sets"   yaml:"sets"`
}

// GetHitRate returns hits as a fraction of all lookups, or 0 when none.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CacheManager fronts a Cache backend with key construction, TTL policy and
// hit/miss accounting.
type CacheManager struct {
	cache   Cache
	options *CacheOptions

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// NewCacheManager creates a cache manager. A nil cache disables storage but
// keeps key construction usable; nil options select the defaults.
func NewCacheManager(cache Cache, options *CacheOptions) *CacheManager {
	if options == nil {
		options = DefaultCacheOptions()
	}

	return &CacheManager{
		cache:   cache,
		options: options,
	}
}

// GetCacheKey builds the canonical cache key "METHOD:path[:params]" with
// params in sorted order.
func (m *CacheManager) GetCacheKey(method, path string, params map[string]string) string {
	if len(params) == 0 {
		return method + ":" + path
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	return method + ":" + path + ":" + strings.Join(pairs, "&")
}

// GetEntry returns the stored entry for key, counting the hit or miss.
func (m *CacheManager) GetEntry(ctx context.Context, key string) (*CacheEntry, error) {
	if m.cache == nil {
		return nil, ErrCacheDisabled
	}

	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		m.misses.Add(1)

		return nil, err
	}

	m.hits.Add(1)

	return entry, nil
}

// Get returns the stored body for key.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := m.GetEntry(ctx, key)
	if err != nil {
		return nil, err
	}

	return entry.Data, nil
}

// Set stores a body under key using the default TTL policy.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.SetWithETag(ctx, key, data, "", ttl)
}

// SetWithETag stores a body along with its ETag validator. Oversized bodies
// are skipped without error; caching is best effort.
func (m *CacheManager) SetWithETag(ctx context.Context, key string, data []byte, etag string, ttl time.Duration) error {
	if m.cache == nil {
		return ErrCacheDisabled
	}

	if m.options.MaxValueSize > 0 && len(data) > m.options.MaxValueSize {
		return nil
	}

	if ttl <= 0 {
		ttl = m.options.DefaultTTL
	}

	if ttl < m.options.MinTTL {
		ttl = m.options.MinTTL
	}

	entry := &CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
		ETag:      etag,
	}

	println("DEBUG SetWithETag key=", key, "ttl=", ttl.String())
	if err := m.cache.Set(ctx, key, entry); err != nil {
		return err
	}

	m.sets.Add(1)

	return nil
}

// Delete removes the entry for key.
func (m *CacheManager) Delete(ctx context.Context, key string) error {
	if m.cache == nil {
		return nil
	}

	return m.cache.Delete(ctx, key)
}

// Invalidate drops the cached GET responses for a mutated path: the entity
// itself and its parent collection listing.
func (m *CacheManager) Invalidate(ctx context.Context, path string) error {
	if m.cache == nil {
		return nil
	}

	if err := m.cache.Delete(ctx, m.GetCacheKey(http.MethodGet, path, nil)); err != nil {
		return err
	}

	if idx := strings.LastIndex(path, "/"); idx > 0 {
		return m.cache.Delete(ctx, m.GetCacheKey(http.MethodGet, path[:idx], nil))
	}

	return nil
}

// GetStats returns a snapshot of the traffic counters.
func (m *CacheManager) GetStats() CacheStats {
	return CacheStats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Sets:   m.sets.Load(),
	}
}

// CachingPolicy decides which exchanges enter the cache.
type CachingPolicy struct {
	// CacheGET enables caching of GET responses.
	CacheGET bool
	// CachePOST enables caching of POST responses.
	CachePOST bool
	// CacheErrors enables caching of non-2xx responses.
	CacheErrors bool
	// IncludePaths, when non-empty, restricts caching to these path
	// prefixes.
	IncludePaths []string
	// ExcludePaths lists path prefixes never cached.
	ExcludePaths []string
	// TTL overrides the manager's default TTL for entries stored under this
	// policy; zero keeps the default.
	TTL time.Duration
}

// DefaultCachingPolicy caches successful GET responses, excluding the
// volatile build and workflow status listings.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{
		CacheGET: true,
		ExcludePaths: []string{
			"/recent-builds",
			"/workflow",
		},
	}
}

// ShouldCache reports whether a response for method/path/status is cacheable
// under this policy.
func (p *CachingPolicy) ShouldCache(method, path string, statusCode int) bool {
	switch method {
	case http.MethodGet:
		if !p.CacheGET {
			return false
		}
	case http.MethodPost:
		if !p.CachePOST {
			return false
		}
	default:
		return false
	}

	if !p.CacheErrors && (statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices) {
		return false
	}

	if len(p.IncludePaths) > 0 {
		for _, include := range p.IncludePaths {
			if strings.HasPrefix(path, include) {
				return true
			}
		}

		return false
	}

	for _, exclude := range p.ExcludePaths {
		if strings.HasPrefix(path, exclude) {
			return false
		}
	}

	return true
}

// cachedBodyKey is the request metadata slot the cache interceptor fills on
// a hit.
const cachedBodyKey = "cached_body"

// CachedResponse returns the body a cache interceptor attached to req, if
// the lookup hit.
func CachedResponse(req *Request) ([]byte, bool) {
	if req == nil || req.Metadata == nil {
		return nil, false
	}

	body, ok := req.Metadata[cachedBodyKey].([]byte)

	return body, ok
}

// cacheKeyForRequest derives the manager key from an intercepted request,
// folding in the API version and query parameters.
func cacheKeyForRequest(manager *CacheManager, req *Request) string {
	var params map[string]string

	if len(req.Query) > 0 {
		params = make(map[string]string, len(req.Query))
		for key, values := range req.Query {
			params[key] = strings.Join(values, ",")
		}
	}

	return manager.GetCacheKey(req.Method, "/"+string(req.Version)+req.Path, params)
}

// CacheInterceptor returns the interceptor pair implementing read-through
// caching: the request side attaches a cached body on a hit, the response
// side stores cacheable responses with their ETag.
func CacheInterceptor(manager *CacheManager, policy *CachingPolicy) (RequestInterceptor, ResponseInterceptor) {
	if policy == nil {
		policy = DefaultCachingPolicy()
	}

	requestInterceptor := func(ctx context.Context, req *Request) error {
		if req.Method != http.MethodGet || !policy.CacheGET {
			return nil
		}

		data, err := manager.Get(ctx, cacheKeyForRequest(manager, req))
		println("DEBUG reqInterceptor key=", cacheKeyForRequest(manager, req), "err=", fmt.Sprint(err))
		if err != nil {
			// Miss or disabled cache; dispatch proceeds normally.
			return nil
		}

		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[cachedBodyKey] = data

		return nil
	}

	responseInterceptor := func(ctx context.Context, req *Request, resp *Response) error {
		if _, hit := CachedResponse(req); hit {
			return nil
		}

		// A 304 means the cached entry is still current; serve it.
		if resp.StatusCode == http.StatusNotModified {
			entry, err := manager.GetEntry(ctx, cacheKeyForRequest(manager, req))
			if err == nil {
				resp.StatusCode = http.StatusOK
				resp.Body = entry.Data
				resp.Error = nil
			}

			return nil
		}

		println("DEBUG respInterceptor path=", req.Path, "status=", resp.StatusCode, "shouldCache=", policy.ShouldCache(req.Method, req.Path, resp.StatusCode))
		if !policy.ShouldCache(req.Method, req.Path, resp.StatusCode) {
			return nil
		}

		etag := ""
		if resp.Headers != nil {
			etag = resp.Headers.Get("ETag")
		}

		return manager.SetWithETag(ctx, cacheKeyForRequest(manager, req), resp.Body, etag, policy.TTL)
	}

	return requestInterceptor, responseInterceptor
}

// ConditionalRequestInterceptor adds If-None-Match to GET requests whose
// cached entry carries an ETag, enabling 304 revalidation.
func ConditionalRequestInterceptor(manager *CacheManager) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Method != http.MethodGet {
			return nil
		}

		entry, err := manager.GetEntry(ctx, cacheKeyForRequest(manager, req))
		if err != nil || entry.ETag == "" {
			return nil
		}

		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Headers.Set("If-None-Match", entry.ETag)

		return nil
	}
}

// CacheInvalidationInterceptor drops cached reads touching a path after a
// successful mutation of it.
func CacheInvalidationInterceptor(manager *CacheManager) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		switch req.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return nil
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return nil
		}

		return manager.Invalidate(ctx, "/"+string(req.Version)+req.Path)
	}
}

// SmartCacheConfig bundles the cache-related interceptors with per-resource
// TTL overrides.
type SmartCacheConfig struct {
	EnableSmartInvalidation   bool
	EnableConditionalRequests bool
	EnableMetrics             bool
	// ResourceTTLs maps path prefixes to the TTL used for entries under
	// them.
	ResourceTTLs map[string]time.Duration
}

// DefaultSmartCacheConfig returns TTLs tuned per resource: slow-changing
// resources cache longer than execution state.
func DefaultSmartCacheConfig() *SmartCacheConfig {
	return &SmartCacheConfig{
		EnableSmartInvalidation:   true,
		EnableConditionalRequests: true,
		EnableMetrics:             true,
		ResourceTTLs: map[string]time.Duration{
			"/me":       10 * time.Minute,
			"/project":  constants.DefaultCacheTTL,
			"/context":  10 * time.Minute,
			"/insights": 15 * time.Minute,
			"/pipeline": 1 * time.Minute,
		},
	}
}

// TTLForPath returns the configured TTL for a path, or zero when none
// matches.
func (c *SmartCacheConfig) TTLForPath(path string) time.Duration {
	for prefix, ttl := range c.ResourceTTLs {
		if strings.HasPrefix(path, prefix) {
			return ttl
		}
	}

	return 0
}

// ConfigureSmartCache wires the caching, conditional request and
// invalidation interceptors into a chain.
func ConfigureSmartCache(chain *InterceptorChain, manager *CacheManager, config *SmartCacheConfig) {
	if config == nil {
		config = DefaultSmartCacheConfig()
	}

	policy := DefaultCachingPolicy()

	requestInterceptor, responseInterceptor := CacheInterceptor(manager, policy)
	chain.AddRequestInterceptor(requestInterceptor)
	chain.AddResponseInterceptor(responseInterceptor)

	if config.EnableConditionalRequests {
		chain.AddRequestInterceptor(ConditionalRequestInterceptor(manager))
	}

	if config.EnableSmartInvalidation {
		chain.AddResponseInterceptor(CacheInvalidationInterceptor(manager))
	}

	if config.EnableMetrics {
		collector := NewMetricsCollector()
		chain.AddRequestInterceptor(MetricsRequestInterceptor(collector))
		chain.AddResponseInterceptor(MetricsResponseInterceptor(collector))
	}
}

// CacheWarmer prefetches slow-changing resources into the cache.
type CacheWarmer struct {
	client  Client
	manager *CacheManager
}

// NewCacheWarmer creates a cache warmer over a client and manager.
func NewCacheWarmer(client Client, manager *CacheManager) *CacheWarmer {
	return &CacheWarmer{
		client:  client,
		manager: manager,
	}
}

// Warm fetches each project and its first pipeline page so subsequent reads
// hit the cache. Failures on individual projects are collected, not fatal.
func (w *CacheWarmer) Warm(ctx context.Context, projectSlugs []string) error {
	if w.client == nil {
		return nil
	}

	var errs []error

	for _, slug := range projectSlugs {
		if _, err := w.client.Projects().Get(ctx, slug); err != nil {
			errs = append(errs, fmt.Errorf("warming project %s: %w", slug, err))

			continue
		}

		if _, err := w.client.Pipelines().ListForProject(ctx, slug, nil); err != nil {
			errs = append(errs, fmt.Errorf("warming pipelines for %s: %w", slug, err))
		}
	}

	return errors.Join(errs...)
}
