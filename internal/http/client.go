package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/circleci-client/internal/auth"
	"github.com/fivetwenty-io/circleci-client/internal/constants"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// maxBackoffShift bounds the exponent used for the retry backoff so the
// shift cannot overflow.
const maxBackoffShift = 30

// Request describes a single API call before dispatch. Version selects the
// path prefix; an empty Version defaults to v1.1.
type Request struct {
	Method  string
	Version circleci.APIVersion
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response carries the final status, headers, and fully-read body of a
// dispatched request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client dispatches requests against the CircleCI API. It decorates every
// request with the token, applies the retry policy, and records the last
// exchange for debugging.
type Client struct {
	baseURL      string
	tokens       auth.Provider
	retryClient  *retryablehttp.Client
	logger       circleci.Logger
	debug        bool
	userAgent    string
	captureLimit int
	retryable    map[int]struct{}

	mu   sync.RWMutex
	last *circleci.Exchange
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(logger circleci.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.retryClient.HTTPClient.Timeout = timeout
	}
}

// WithRetryConfig sets the maximum retry count and the backoff bounds.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryClient.RetryMax = maxRetries
		c.retryClient.RetryWaitMin = waitMin
		c.retryClient.RetryWaitMax = waitMax
	}
}

// WithRetryableStatuses replaces the set of response codes that trigger a
// retry.
func WithRetryableStatuses(statuses ...int) Option {
	return func(c *Client) {
		c.retryable = make(map[int]struct{}, len(statuses))
		for _, status := range statuses {
			c.retryable[status] = struct{}{}
		}
	}
}

// WithTLSSkipVerify disables TLS certificate verification for self-hosted
// endpoints with self-signed certificates.
func WithTLSSkipVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}

		transport, ok := c.retryClient.HTTPClient.Transport.(*http.Transport)
		if !ok {
			return
		}

		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // caller opted in
	}
}

// WithCaptureLimit caps the number of body bytes retained in the recorded
// exchange.
func WithCaptureLimit(limit int) Option {
	return func(c *Client) {
		c.captureLimit = limit
	}
}

// NewClient creates an HTTP client for the given API endpoint. A nil token
// provider sends unauthenticated requests, which is useful in tests.
func NewClient(baseURL string, tokens auth.Provider, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	// Surface the final attempt's response instead of the library's
	// "giving up" error, so status handling below sees the real status.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokens:       tokens,
		retryClient:  retryClient,
		userAgent:    constants.DefaultUserAgent,
		captureLimit: constants.DefaultCaptureLimit,
		retryable:    make(map[int]struct{}, len(constants.DefaultRetryableStatuses)),
	}
	for _, status := range constants.DefaultRetryableStatuses {
		client.retryable[status] = struct{}{}
	}

	retryClient.CheckRetry = client.checkRetry
	retryClient.Backoff = exponentialBackoff

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// checkRetry retries on the configured status set. Transport-level errors
// defer to the library's default policy.
func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil || resp == nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	_, retryable := c.retryable[resp.StatusCode]

	return retryable, nil
}

// exponentialBackoff doubles the wait per attempt from the minimum, capped
// at the maximum. The Retry-After header is not consulted.
func exponentialBackoff(waitMin, waitMax time.Duration, attemptNum int, _ *http.Response) time.Duration {
	if attemptNum > maxBackoffShift {
		return waitMax
	}

	wait := waitMin << uint(attemptNum)
	if wait > waitMax || wait < waitMin {
		return waitMax
	}

	return wait
}

// URL joins the base endpoint, API version, and path into a request URL.
func (c *Client) URL(version circleci.APIVersion, path string) string {
	if version == "" {
		version = circleci.APIVersionV1
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + "/" + version.String() + path
}

// Do dispatches a request and returns the final response. Non-2xx statuses
// return both the response and a *circleci.APIError. The final attempt is
// recorded in the last-exchange state regardless of outcome.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.URL(req.Version, req.Path)
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, &circleci.ConfigError{Message: "resolving API token: " + err.Error(), Err: err}
	}

	var payload []byte
	if req.Body != nil {
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	httpReq, err := c.buildRequest(ctx, req, fullURL, token, payload)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	started := time.Now()

	httpResp, err := c.retryClient.Do(httpReq)
	if err != nil {
		transportErr := &circleci.TransportError{Method: req.Method, URL: fullURL, Err: err}
		c.record(httpReq.Request, payload, nil, nil, time.Since(started), transportErr)

		return nil, transportErr
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	elapsed := time.Since(started)

	if err != nil {
		transportErr := &circleci.TransportError{Method: req.Method, URL: fullURL, Err: err}
		c.record(httpReq.Request, payload, httpResp, nil, elapsed, transportErr)

		return nil, transportErr
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
			"status": httpResp.StatusCode,
		})
	}

	response := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if httpResp.StatusCode >= http.StatusOK && httpResp.StatusCode < http.StatusMultipleChoices {
		c.record(httpReq.Request, payload, httpResp, respBody, elapsed, nil)

		return response, nil
	}

	apiErr := circleci.NewAPIError(req.Method, fullURL, httpResp.StatusCode, respBody)
	c.record(httpReq.Request, payload, httpResp, respBody, elapsed, apiErr)

	return response, apiErr
}

// buildRequest assembles the retryable request with auth and standard
// headers applied.
func (c *Client) buildRequest(ctx context.Context, req *Request, fullURL, token string, payload []byte) (*retryablehttp.Request, error) {
	var body interface{}
	if payload != nil {
		body = payload
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")

	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	// The token rides both as basic auth (v1.1 style) and as the
	// Circle-Token header (v2 style).
	if token != "" {
		httpReq.SetBasicAuth(token, "")
		httpReq.Header.Set(constants.TokenHeader, token)
	}

	return httpReq, nil
}

// Get issues a GET request against the given API version.
func (c *Client) Get(ctx context.Context, version circleci.APIVersion, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Version: version, Path: path, Query: query})
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, version circleci.APIVersion, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Version: version, Path: path, Body: body})
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, version circleci.APIVersion, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Version: version, Path: path, Body: body})
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, version circleci.APIVersion, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Version: version, Path: path, Body: body})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, version circleci.APIVersion, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Version: version, Path: path})
}

// Stream issues a GET against an absolute URL and returns the raw body for
// the caller to consume. Artifact downloads use this, since artifacts live
// on hosts outside the API endpoint and can be large.
func (c *Client) Stream(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, &circleci.ConfigError{Message: "resolving API token: " + err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	if token != "" {
		req.SetBasicAuth(token, "")
		req.Header.Set(constants.TokenHeader, token)
	}

	downloadClient := &http.Client{
		Timeout:   constants.DownloadHTTPTimeout,
		Transport: c.retryClient.HTTPClient.Transport,
	}

	resp, err := downloadClient.Do(req)
	if err != nil {
		return nil, &circleci.TransportError{Method: http.MethodGet, URL: rawURL, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, int64(c.captureLimit)))
		_ = resp.Body.Close()

		return nil, circleci.NewAPIError(http.MethodGet, rawURL, resp.StatusCode, body)
	}

	return resp.Body, nil
}

// LastExchange returns the most recent request/response pair, or nil before
// the first request.
func (c *Client) LastExchange() *circleci.Exchange {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.last
}

// LastRequest returns the request half of the most recent exchange.
func (c *Client) LastRequest() *circleci.RequestRecord {
	exchange := c.LastExchange()
	if exchange == nil {
		return nil
	}

	return exchange.Request
}

// LastResponse returns the response half of the most recent exchange.
func (c *Client) LastResponse() *circleci.ResponseRecord {
	exchange := c.LastExchange()
	if exchange == nil {
		return nil
	}

	return exchange.Response
}

// DumpLastExchange writes a readable rendering of the most recent exchange.
func (c *Client) DumpLastExchange(w io.Writer) error {
	return c.LastExchange().Dump(w)
}

// token resolves the current API token. A nil provider means
// unauthenticated requests.
func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}

	return c.tokens.Token(ctx)
}

// record stores the final attempt with credentials masked and bodies capped
// at the capture limit.
func (c *Client) record(req *http.Request, reqBody []byte, resp *http.Response, respBody []byte, elapsed time.Duration, callErr error) {
	exchange := &circleci.Exchange{Duration: elapsed}

	if req != nil {
		body, truncated := capBody(reqBody, c.captureLimit)
		exchange.Request = &circleci.RequestRecord{
			Method:        req.Method,
			URL:           req.URL.String(),
			Headers:       redactHeaders(req.Header),
			Body:          body,
			BodyTruncated: truncated,
		}
	}

	if resp != nil {
		body, truncated := capBody(respBody, c.captureLimit)
		exchange.Response = &circleci.ResponseRecord{
			StatusCode:    resp.StatusCode,
			Status:        resp.Status,
			Headers:       redactHeaders(resp.Header),
			Body:          body,
			BodyTruncated: truncated,
		}
	}

	if callErr != nil {
		exchange.Error = callErr.Error()
	}

	c.mu.Lock()
	c.last = exchange
	c.mu.Unlock()
}

// redactHeaders clones headers with credential values masked.
func redactHeaders(headers http.Header) map[string][]string {
	cloned := make(map[string][]string, len(headers))

	for key, values := range headers {
		if isSensitiveHeader(key) {
			cloned[key] = []string{constants.MaskedSecret}

			continue
		}

		cloned[key] = append([]string(nil), values...)
	}

	return cloned
}

// isSensitiveHeader reports whether a header carries the token.
func isSensitiveHeader(name string) bool {
	switch http.CanonicalHeaderKey(name) {
	case "Authorization", constants.TokenHeader:
		return true
	}

	return false
}

// capBody converts a body to a string bounded by the capture limit.
func capBody(body []byte, limit int) (string, bool) {
	if limit <= 0 || len(body) <= limit {
		return string(body), false
	}

	return string(body[:limit]), true
}
