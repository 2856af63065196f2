package circleci

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Static errors for validation failures detected before any request is sent.
var (
	ErrMissingToken            = errors.New("missing or empty CircleCI API access token")
	ErrConfigRequired          = errors.New("config is required")
	ErrInvalidProjectSlug      = errors.New("invalid project slug")
	ErrInvalidAPIVersion       = errors.New("invalid CircleCI API version")
	ErrInvalidStatusFilter     = errors.New("invalid status filter")
	ErrInvalidKeyType          = errors.New("invalid checkout key type")
	ErrInvalidOwnerType        = errors.New("invalid owner type")
	ErrInvalidHTTPMethod       = errors.New("invalid HTTP method")
	ErrBranchTagExclusive      = errors.New("branch and tag are mutually exclusive")
	ErrRevisionTagExclusive    = errors.New("revision and tag are mutually exclusive")
	ErrJobsFromFailedExclusive = errors.New("jobs and from-failed are mutually exclusive")
	ErrOwnerRequired           = errors.New("context listing requires an owner slug or owner id")
	ErrNoMoreItems             = errors.New("no more items")
)

// ConfigError reports invalid client configuration. It is fatal and raised
// before any network call is attempted.
type ConfigError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Message != "" {
		return "configuration error: " + e.Message
	}

	return "configuration error: " + e.Err.Error()
}

// Unwrap returns the underlying error, if any.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransportError reports a network-level failure (connection refused,
// timeout) after the retry policy has been exhausted.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx final response from the CircleCI API. It
// carries the status code and raw body so callers can branch or report.
type APIError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Message    string `json:"message"     yaml:"message"`
	Method     string `json:"method"      yaml:"method"`
	URL        string `json:"url"         yaml:"url"`
	Body       []byte `json:"-"           yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s (status: %d)", e.Method, e.URL, e.Message, e.StatusCode)
	}

	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// apiErrorBody is the error envelope the API returns on both versions.
type apiErrorBody struct {
	Message string `json:"message"`
}

// NewAPIError builds an APIError from a response, decoding the standard
// {"message": ...} envelope when present.
func NewAPIError(method, url string, statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Method:     method,
		URL:        url,
		Body:       body,
	}

	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Message = envelope.Message
	}

	return apiErr
}

// ParseError reports a response body that was not valid JSON despite a
// success status.
type ParseError struct {
	Err     error
	Snippet string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("parsing response body: %v (body: %s)", e.Err, e.Snippet)
	}

	return fmt.Sprintf("parsing response body: %v", e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsConfigError checks if the error is a configuration error.
func IsConfigError(err error) bool {
	configErr := &ConfigError{}

	return errors.As(err, &configErr)
}

// IsTransportError checks if the error is a network-level failure.
func IsTransportError(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}

// IsParseError checks if the error is a response parsing failure.
func IsParseError(err error) bool {
	parseErr := &ParseError{}

	return errors.As(err, &parseErr)
}

// IsAPIError checks if the error is a non-2xx API response.
func IsAPIError(err error) bool {
	apiErr := &APIError{}

	return errors.As(err, &apiErr)
}

// statusCodeOf extracts the status code from an APIError, or 0.
func statusCodeOf(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404 API response.
func IsNotFound(err error) bool {
	return statusCodeOf(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401 API response.
func IsUnauthorized(err error) bool {
	return statusCodeOf(err) == http.StatusUnauthorized
}

// IsForbidden checks if the error is a 403 API response.
func IsForbidden(err error) bool {
	return statusCodeOf(err) == http.StatusForbidden
}

// IsRateLimited checks if the error is a 429 API response.
func IsRateLimited(err error) bool {
	return statusCodeOf(err) == http.StatusTooManyRequests
}

// IsServerError checks if the error is a 5xx API response.
func IsServerError(err error) bool {
	return statusCodeOf(err) >= http.StatusInternalServerError
}
