package circleci

import (
	"time"
)

// AccountClients provides access to user and account resource clients.
type AccountClients interface {
	Users() UsersClient
}

// ProjectClients provides access to project-scoped resource clients.
type ProjectClients interface {
	Projects() ProjectsClient
}

// ExecutionClients provides access to pipeline execution resource clients.
type ExecutionClients interface {
	Pipelines() PipelinesClient
	Workflows() WorkflowsClient
	Jobs() JobsClient
	Builds() BuildsClient
}

// PlatformClients provides access to platform-level resource clients.
type PlatformClients interface {
	Contexts() ContextsClient
	Schedules() SchedulesClient
	Insights() InsightsClient
}

// Client is the top-level CircleCI API client. It composes the resource
// client groups with raw dispatch and introspection.
type Client interface {
	AccountClients
	ProjectClients
	ExecutionClients
	PlatformClients
	RawClient
	Introspector
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a circleci.Client.
//
// # Authentication
//
// Token is required; construction fails with a ConfigError when it is empty.
// Every outgoing request carries the token both as the HTTP Basic username
// with an empty password (the legacy v1.1 style) and as the Circle-Token
// header (the v2 style). The token is never written to logs or introspection
// output.
//
// # Timeouts, retries, and TLS
//
// Per-request deadlines should generally be controlled via the context passed
// to client methods; HTTPTimeout bounds each individual attempt. Retry
// behavior can be tuned via RetryMax/RetryWaitMin/RetryWaitMax and
// RetryableStatuses; zero values select the documented defaults (3 retries,
// exponential backoff from 300ms capped at 10s, statuses 408, 429, 5xx and
// the Cloudflare 52x range). SkipTLSVerify is intended for self-hosted
// installations with private certificates; do not use it against the public
// API.
type Config struct {
	// BaseURL is the API endpoint (e.g., "https://circleci.com/api" or the
	// "/api" path of a self-hosted server). cciclient.New normalizes this
	// value by trimming a trailing slash and adding "https://" if no scheme
	// is present. Empty selects the public endpoint.
	BaseURL string

	// Token is the CircleCI API access token. Required.
	Token string

	// HTTPTimeout bounds each request attempt. Zero selects the default.
	HTTPTimeout time.Duration
	// RetryMax is the maximum number of retries for transient failures.
	// Negative disables retries; zero selects the default.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration
	// RetryableStatuses overrides the set of status codes that trigger a
	// retry. Empty selects the default set.
	RetryableStatuses []int

	// Debug enables verbose HTTP request/response logging when a Logger is
	// provided.
	Debug bool
	// Logger is an optional structured logger used by the HTTP layer.
	Logger Logger
	// SkipTLSVerify disables certificate verification. Only meaningful for
	// self-hosted servers.
	SkipTLSVerify bool
	// UserAgent overrides the default User-Agent header sent by the client.
	UserAgent string

	// Cache optionally enables read-through caching of GET responses.
	Cache *CacheConfig
}
