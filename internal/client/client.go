package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/circleci-client/internal/auth"
	"github.com/fivetwenty-io/circleci-client/internal/constants"
	internalhttp "github.com/fivetwenty-io/circleci-client/internal/http"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// Client implements the circleci.Client interface.
type Client struct {
	httpClient   *internalhttp.Client
	requester    *Requester
	chain        *circleci.InterceptorChain
	cacheManager *circleci.CacheManager
	logger       circleci.Logger
	baseURL      string

	// Resource clients
	users     circleci.UsersClient
	projects  circleci.ProjectsClient
	builds    circleci.BuildsClient
	pipelines circleci.PipelinesClient
	workflows circleci.WorkflowsClient
	jobs      circleci.JobsClient
	insights  circleci.InsightsClient
	contexts  circleci.ContextsClient
	schedules circleci.SchedulesClient
}

// NormalizeEndpoint expands a configured endpoint into a full base URL:
// surrounding whitespace and trailing slashes are trimmed, and a missing
// scheme defaults to https. Empty selects the public endpoint.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return constants.DefaultBaseURL
	}

	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	return strings.TrimRight(endpoint, "/")
}

// buildHTTPOptions builds HTTP client options from config.
func buildHTTPOptions(config *circleci.Config) []internalhttp.Option {
	var httpOpts []internalhttp.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, internalhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, internalhttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, internalhttp.WithTimeout(config.HTTPTimeout))
	}

	if config.SkipTLSVerify {
		httpOpts = append(httpOpts, internalhttp.WithTLSSkipVerify(true))
	}

	if len(config.RetryableStatuses) > 0 {
		httpOpts = append(httpOpts, internalhttp.WithRetryableStatuses(config.RetryableStatuses...))
	}

	retryMax := constants.DefaultRetryMax

	switch {
	case config.RetryMax > 0:
		retryMax = config.RetryMax
	case config.RetryMax < 0:
		retryMax = 0
	}

	retryWaitMin := constants.DefaultRetryWaitMin
	if config.RetryWaitMin > 0 {
		retryWaitMin = config.RetryWaitMin
	}

	retryWaitMax := constants.DefaultRetryWaitMax
	if config.RetryWaitMax > 0 {
		retryWaitMax = config.RetryWaitMax
	}

	httpOpts = append(httpOpts, internalhttp.WithRetryConfig(retryMax, retryWaitMin, retryWaitMax))

	return httpOpts
}

// buildCacheChain wires the caching interceptors into the chain when a cache
// backend is configured, creating the chain if needed.
func buildCacheChain(ctx context.Context, config *circleci.Config, chain *circleci.InterceptorChain) (*circleci.InterceptorChain, *circleci.CacheManager, error) {
	if config.Cache == nil || config.Cache.Type == circleci.CacheTypeNone {
		return chain, nil, nil
	}

	cache, err := circleci.NewCacheFromConfig(ctx, config.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("building cache backend: %w", err)
	}

	manager := circleci.NewCacheManager(cache, config.Cache.Options)

	if chain == nil {
		chain = circleci.NewInterceptorChain()
	}

	circleci.ConfigureSmartCache(chain, manager, circleci.DefaultSmartCacheConfig())

	return chain, manager, nil
}

// New creates a CircleCI API client from configuration. A missing token is a
// configuration error; no request is attempted.
func New(ctx context.Context, config *circleci.Config) (*Client, error) {
	if config == nil {
		return nil, &circleci.ConfigError{Message: "config is required", Err: circleci.ErrConfigRequired}
	}

	if strings.TrimSpace(config.Token) == "" {
		return nil, &circleci.ConfigError{Message: "missing API token", Err: circleci.ErrMissingToken}
	}

	return newClient(ctx, config, auth.NewStatic(config.Token), nil)
}

// NewWithChain creates a client whose requests run through the given
// interceptor chain. Cache interceptors from config are appended to it.
func NewWithChain(ctx context.Context, config *circleci.Config, chain *circleci.InterceptorChain) (*Client, error) {
	if config == nil {
		return nil, &circleci.ConfigError{Message: "config is required", Err: circleci.ErrConfigRequired}
	}

	if strings.TrimSpace(config.Token) == "" {
		return nil, &circleci.ConfigError{Message: "missing API token", Err: circleci.ErrMissingToken}
	}

	return newClient(ctx, config, auth.NewStatic(config.Token), chain)
}

// NewWithProvider creates a client with a custom token provider. The provider
// must resolve a non-empty token at construction time, so a misconfigured
// environment fails here rather than on the first request.
func NewWithProvider(ctx context.Context, config *circleci.Config, provider auth.Provider) (*Client, error) {
	if config == nil {
		return nil, &circleci.ConfigError{Message: "config is required", Err: circleci.ErrConfigRequired}
	}

	if provider == nil {
		return nil, &circleci.ConfigError{Message: "missing API token", Err: circleci.ErrMissingToken}
	}

	token, err := provider.Token(ctx)
	if err != nil {
		return nil, &circleci.ConfigError{Message: "resolving API token: " + err.Error(), Err: err}
	}

	if strings.TrimSpace(token) == "" {
		return nil, &circleci.ConfigError{Message: "missing API token", Err: circleci.ErrMissingToken}
	}

	return newClient(ctx, config, provider, nil)
}

func newClient(ctx context.Context, config *circleci.Config, provider auth.Provider, chain *circleci.InterceptorChain) (*Client, error) {
	baseURL := NormalizeEndpoint(config.BaseURL)

	httpClient := internalhttp.NewClient(baseURL, provider, buildHTTPOptions(config)...)

	chain, cacheManager, err := buildCacheChain(ctx, config, chain)
	if err != nil {
		return nil, err
	}

	if chain != nil && config.Debug && config.Logger != nil {
		// The transport never sees cache-served requests, so debug logging
		// is wired into the chain as well.
		chain.AddRequestInterceptor(circleci.LoggingInterceptor(config.Logger))
		chain.AddResponseInterceptor(circleci.LoggingResponseInterceptor(config.Logger))
	}

	client := &Client{
		httpClient:   httpClient,
		requester:    NewRequester(httpClient, chain),
		chain:        chain,
		cacheManager: cacheManager,
		logger:       config.Logger,
		baseURL:      baseURL,
	}

	client.initializeResourceClients()

	return client, nil
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.users = NewUsersClient(c.requester)
	c.projects = NewProjectsClient(c.requester)
	c.builds = NewBuildsClient(c.requester)
	c.pipelines = NewPipelinesClient(c.requester)
	c.workflows = NewWorkflowsClient(c.requester)
	c.jobs = NewJobsClient(c.requester)
	c.insights = NewInsightsClient(c.requester)
	c.contexts = NewContextsClient(c.requester)
	c.schedules = NewSchedulesClient(c.requester)
}

// Users implements circleci.Client.Users.
func (c *Client) Users() circleci.UsersClient {
	return c.users
}

// Projects implements circleci.Client.Projects.
func (c *Client) Projects() circleci.ProjectsClient {
	return c.projects
}

// Builds implements circleci.Client.Builds.
func (c *Client) Builds() circleci.BuildsClient {
	return c.builds
}

// Pipelines implements circleci.Client.Pipelines.
func (c *Client) Pipelines() circleci.PipelinesClient {
	return c.pipelines
}

// Workflows implements circleci.Client.Workflows.
func (c *Client) Workflows() circleci.WorkflowsClient {
	return c.workflows
}

// Jobs implements circleci.Client.Jobs.
func (c *Client) Jobs() circleci.JobsClient {
	return c.jobs
}

// Insights implements circleci.Client.Insights.
func (c *Client) Insights() circleci.InsightsClient {
	return c.insights
}

// Contexts implements circleci.Client.Contexts.
func (c *Client) Contexts() circleci.ContextsClient {
	return c.contexts
}

// Schedules implements circleci.Client.Schedules.
func (c *Client) Schedules() circleci.SchedulesClient {
	return c.schedules
}

// CacheManager returns the cache manager wired into the client, or nil when
// caching is disabled.
func (c *Client) CacheManager() *circleci.CacheManager {
	return c.cacheManager
}

// Raw implements circleci.Client.Raw.
func (c *Client) Raw(ctx context.Context, method string, version circleci.APIVersion, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	method = strings.ToUpper(strings.TrimSpace(method))

	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead:
	default:
		return nil, fmt.Errorf("%w: %q", circleci.ErrInvalidHTTPMethod, method)
	}

	if version != "" {
		parsed, err := circleci.ParseAPIVersion(version.String())
		if err != nil {
			return nil, err
		}

		version = parsed
	}

	resp, err := c.requester.Do(ctx, &internalhttp.Request{
		Method:  method,
		Version: version,
		Path:    path,
		Query:   query,
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatching %s %s: %w", method, path, err)
	}

	return json.RawMessage(resp.Body), nil
}

// LastExchange implements circleci.Client.LastExchange.
func (c *Client) LastExchange() *circleci.Exchange {
	return c.httpClient.LastExchange()
}

// LastRequest implements circleci.Client.LastRequest.
func (c *Client) LastRequest() *circleci.RequestRecord {
	return c.httpClient.LastRequest()
}

// LastResponse implements circleci.Client.LastResponse.
func (c *Client) LastResponse() *circleci.ResponseRecord {
	return c.httpClient.LastResponse()
}

// DumpLastExchange implements circleci.Client.DumpLastExchange.
func (c *Client) DumpLastExchange(w io.Writer) error {
	return c.httpClient.DumpLastExchange(w)
}
