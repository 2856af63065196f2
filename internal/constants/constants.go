package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// ArtifactFilePerm is the permission for downloaded artifact files.
	ArtifactFilePerm = 0644
)

// API endpoints and versions.
const (
	// ClientVersion is the library release version.
	ClientVersion = "1.0.0"

	// DefaultUserAgent identifies the library on outgoing requests.
	DefaultUserAgent = "circleci-client-go/" + ClientVersion

	// DefaultBaseURL is the public CircleCI API endpoint.
	DefaultBaseURL = "https://circleci.com/api"

	// TokenHeader is the header carrying the API token.
	TokenHeader = "Circle-Token"

	// EnvToken is the environment variable holding the API token.
	EnvToken = "CIRCLE_TOKEN"

	// EnvAPIURL is the environment variable overriding the API endpoint.
	EnvAPIURL = "CIRCLE_API_URL"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second

	// DownloadHTTPTimeout is used for artifact downloads.
	DownloadHTTPTimeout = 5 * time.Minute
)

// Retry limits. The defaults mirror the documented dispatch policy: three
// retries with exponential backoff starting at the minimum wait.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the initial wait between retries.
	DefaultRetryWaitMin = 300 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// DefaultRetryableStatuses are the response codes retried by default:
// request timeout, rate limiting, server errors, and the Cloudflare 52x
// range the API surfaces during incidents.
var DefaultRetryableStatuses = []int{408, 429, 500, 502, 503, 504, 520, 521, 522, 523, 524}

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit limits concurrent batch operations.
	DefaultConcurrencyLimit = 3

	// MaxWorkers is the default number of workers for concurrent operations.
	MaxWorkers = 10

	// BufferSize is the default buffer size for channels.
	BufferSize = 100

	// SmallBufferSize is used for smaller buffers.
	SmallBufferSize = 10
)

// Pagination limits.
const (
	// DefaultBuildLimit is the default number of builds returned by v1.1
	// list endpoints.
	DefaultBuildLimit = 30

	// MaxPerPage caps the per-page parameter on v1.1 list endpoints.
	MaxPerPage = 100

	// MaxPages bounds transparent pagination to prevent infinite loops.
	MaxPages = 50
)

// Introspection limits.
const (
	// DefaultCaptureLimit caps the number of body bytes retained in the
	// last request/response records.
	DefaultCaptureLimit = 64 * 1024

	// StringTruncationLength is the default length for truncating strings.
	StringTruncationLength = 80
)

// Cache sizes and lifetimes.
const (
	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// CacheMinTTL is the minimum cache time-to-live.
	CacheMinTTL = 30 * time.Second

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024

	// DefaultCacheSetTTL is the default TTL when setting cache values.
	DefaultCacheSetTTL = 10 * time.Minute
)

// Formatting constants.
const (
	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// KeyValueSplitParts is the number of parts when splitting key=value strings.
	KeyValueSplitParts = 2

	// ProjectSlugParts is the number of segments in a project slug.
	ProjectSlugParts = 3
)

// Circuit breaker thresholds.
const (
	// CircuitBreakerThreshold is the failure threshold for the circuit breaker.
	CircuitBreakerThreshold = 5

	// CircuitBreakerSuccessThreshold is the success threshold for the circuit breaker.
	CircuitBreakerSuccessThreshold = 2

	// CircuitBreakerTimeout is the timeout for the circuit breaker.
	CircuitBreakerTimeout = 30 * time.Second
)
