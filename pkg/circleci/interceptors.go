package circleci

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
)

// Request represents an API request as interceptors see it, before version
// and base URL are folded into the final URL.
type Request struct {
	Method   string
	Version  APIVersion
	Path     string
	Query    url.Values
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// Response represents an API response as interceptors see it.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor appends a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor appends a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs the request interceptors in order.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(ctx, req); err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs the response interceptors in order.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		if err := interceptor(ctx, req, resp); err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// LoggingInterceptor logs dispatched requests. Only method, version and path
// are logged; headers never are, so the token cannot leak through logging.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method":  req.Method,
			"version": string(req.Version),
			"path":    req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs received responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"version":     string(req.Version),
			"path":        req.Path,
			"status_code": resp.StatusCode,
		}

		if resp.Error != nil {
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// UserAgentInterceptor sets the User-Agent header when the request carries
// none.
func UserAgentInterceptor(userAgent string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		if req.Headers.Get("User-Agent") == "" {
			req.Headers.Set("User-Agent", userAgent)
		}

		return nil
	}
}

// HeaderInterceptor adds fixed headers to every request.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// RateLimitInterceptor throttles dispatch client-side with a token bucket,
// keeping bursty pagination under the server's rate limit.
func RateLimitInterceptor(requestsPerSecond int) RequestInterceptor {
	bucket := make(chan struct{}, requestsPerSecond)

	for i := 0; i < requestsPerSecond; i++ {
		bucket <- struct{}{}
	}

	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(requestsPerSecond))
		defer ticker.Stop()

		for range ticker.C {
			select {
			case bucket <- struct{}{}:
			default:
				// Bucket is full.
			}
		}
	}()

	return func(ctx context.Context, req *Request) error {
		select {
		case <-bucket:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RateLimitState is the server-side rate limit picture assembled from
// response headers.
type RateLimitState struct {
	// Remaining is the last X-RateLimit-Remaining value, -1 before any
	// response carried one.
	Remaining int
	// RetryAfter is the last Retry-After value seen on a 429.
	RetryAfter time.Duration
	// Limited reports whether the last response was a 429.
	Limited bool
}

// RateLimitObserver tracks the server's rate limit headers across responses.
type RateLimitObserver struct {
	mu    sync.Mutex
	state RateLimitState
}

// NewRateLimitObserver creates an observer with no observations yet.
func NewRateLimitObserver() *RateLimitObserver {
	return &RateLimitObserver{
		state: RateLimitState{Remaining: -1},
	}
}

// Snapshot returns the most recent rate limit state.
func (o *RateLimitObserver) Snapshot() RateLimitState {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

// Interceptor returns the response interceptor feeding this observer.
func (o *RateLimitObserver) Interceptor() ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		o.mu.Lock()
		defer o.mu.Unlock()

		o.state.Limited = resp.StatusCode == http.StatusTooManyRequests

		if resp.Headers == nil {
			return nil
		}

		if remaining := resp.Headers.Get("X-RateLimit-Remaining"); remaining != "" {
			if value, err := parseIntHeader(remaining); err == nil {
				o.state.Remaining = value
			}
		}

		if retryAfter := resp.Headers.Get("Retry-After"); retryAfter != "" && o.state.Limited {
			if seconds, err := parseIntHeader(retryAfter); err == nil {
				o.state.RetryAfter = time.Duration(seconds) * time.Second
			}
		}

		return nil
	}
}

// parseIntHeader parses a non-negative integer header value.
func parseIntHeader(value string) (int, error) {
	parsed := 0

	_, err := fmt.Sscanf(value, "%d", &parsed)
	if err != nil {
		return 0, fmt.Errorf("parsing header value %q: %w", value, err)
	}

	return parsed, nil
}

// Metrics aggregates call statistics for one endpoint.
type Metrics struct {
	TotalRequests   int64
	TotalErrors     int64
	TotalLatency    time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time
}

// MetricsCollector aggregates per-endpoint call metrics.
type MetricsCollector struct {
	mu       sync.Mutex
	metrics  map[string]*Metrics
	onChange func(endpoint string, metrics *Metrics)
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metrics),
	}
}

// SetOnChange registers a callback invoked after each update.
func (m *MetricsCollector) SetOnChange(fn func(endpoint string, metrics *Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onChange = fn
}

// GetMetrics returns a copy of the metrics for an endpoint, or nil.
func (m *MetricsCollector) GetMetrics(endpoint string) *Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics, ok := m.metrics[endpoint]
	if !ok {
		return nil
	}

	snapshot := *metrics

	return &snapshot
}

// metricsStartTimeKey is the request metadata slot carrying dispatch start.
const metricsStartTimeKey = "metrics_start_time"

// MetricsRequestInterceptor stamps the request with its dispatch time.
func MetricsRequestInterceptor(collector *MetricsCollector) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[metricsStartTimeKey] = time.Now()

		return nil
	}
}

// MetricsResponseInterceptor folds the response into the endpoint's metrics.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		endpoint := fmt.Sprintf("%s %s", req.Method, req.Path)

		collector.mu.Lock()
		defer collector.mu.Unlock()

		metrics, ok := collector.metrics[endpoint]
		if !ok {
			metrics = &Metrics{}
			collector.metrics[endpoint] = metrics
		}

		metrics.TotalRequests++
		metrics.LastRequestTime = time.Now()

		if req.Metadata != nil {
			if startTime, ok := req.Metadata[metricsStartTimeKey].(time.Time); ok {
				latency := time.Since(startTime)
				metrics.TotalLatency += latency
				metrics.AverageLatency = metrics.TotalLatency / time.Duration(metrics.TotalRequests)
			}
		}

		if resp.Error != nil || resp.StatusCode >= http.StatusBadRequest {
			metrics.TotalErrors++
		}

		if collector.onChange != nil {
			collector.onChange(endpoint, metrics)
		}

		return nil
	}
}

// ErrCircuitBreakerOpen is returned while the breaker rejects dispatch.
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

// Circuit breaker states.
const (
	breakerClosed   = "closed"
	breakerOpen     = "open"
	breakerHalfOpen = "half-open"
)

// CircuitBreakerConfig tunes the circuit breaker.
type CircuitBreakerConfig struct {
	// Threshold is the failure count that opens the breaker.
	Threshold int
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// SuccessThreshold is the probe successes needed to close it.
	SuccessThreshold int
}

// CircuitBreaker rejects dispatch after repeated server failures, giving the
// API room to recover.
type CircuitBreaker struct {
	mu          sync.Mutex
	config      *CircuitBreakerConfig
	failures    int
	successes   int
	state       string
	lastFailure time.Time
}

// NewCircuitBreaker creates a closed breaker; nil config selects the
// defaults.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = &CircuitBreakerConfig{
			Threshold:        constants.CircuitBreakerThreshold,
			Timeout:          constants.CircuitBreakerTimeout,
			SuccessThreshold: constants.CircuitBreakerSuccessThreshold,
		}
	}

	return &CircuitBreaker{
		config: config,
		state:  breakerClosed,
	}
}

// State returns the current breaker state.
func (b *CircuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// CircuitBreakerRequestInterceptor rejects requests while the breaker is
// open, moving to half-open after the timeout.
func CircuitBreakerRequestInterceptor(breaker *CircuitBreaker) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		breaker.mu.Lock()
		defer breaker.mu.Unlock()

		if breaker.state == breakerOpen {
			if time.Since(breaker.lastFailure) > breaker.config.Timeout {
				breaker.state = breakerHalfOpen
				breaker.successes = 0
			} else {
				return ErrCircuitBreakerOpen
			}
		}

		return nil
	}
}

// CircuitBreakerResponseInterceptor updates breaker state from responses.
// Transport errors and 5xx responses count as failures.
func CircuitBreakerResponseInterceptor(breaker *CircuitBreaker) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		breaker.mu.Lock()
		defer breaker.mu.Unlock()

		if resp.Error != nil || resp.StatusCode >= http.StatusInternalServerError {
			breaker.failures++
			breaker.lastFailure = time.Now()

			if breaker.failures >= breaker.config.Threshold || breaker.state == breakerHalfOpen {
				breaker.state = breakerOpen
			}

			return nil
		}

		switch breaker.state {
		case breakerHalfOpen:
			breaker.successes++
			if breaker.successes >= breaker.config.SuccessThreshold {
				breaker.state = breakerClosed
				breaker.failures = 0
			}
		case breakerClosed:
			breaker.failures = 0
		}

		return nil
	}
}
