package circleci

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError_Error(t *testing.T) {
	t.Run("with message", func(t *testing.T) {
		err := &ConfigError{Message: "missing API token", Err: ErrMissingToken}
		assert.Equal(t, "configuration error: missing API token", err.Error())
	})

	t.Run("without message", func(t *testing.T) {
		err := &ConfigError{Err: ErrMissingToken}
		assert.Equal(t, "configuration error: "+ErrMissingToken.Error(), err.Error())
	})

	t.Run("unwraps the sentinel", func(t *testing.T) {
		err := &ConfigError{Message: "missing API token", Err: ErrMissingToken}
		assert.True(t, errors.Is(err, ErrMissingToken))
	})
}

func TestTransportError_Error(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Method: "GET", URL: "https://circleci.com/api/v2/me", Err: cause}

	assert.Equal(t, "GET https://circleci.com/api/v2/me: connection refused", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestAPIError_Error(t *testing.T) {
	t.Run("with message", func(t *testing.T) {
		err := &APIError{
			StatusCode: 404,
			Message:    "Project not found",
			Method:     "GET",
			URL:        "https://circleci.com/api/v2/project/gh/acme/widgets",
		}

		assert.Equal(t, "GET https://circleci.com/api/v2/project/gh/acme/widgets: Project not found (status: 404)", err.Error())
	})

	t.Run("without message", func(t *testing.T) {
		err := &APIError{
			StatusCode: 500,
			Method:     "POST",
			URL:        "https://circleci.com/api/v2/pipeline/continue",
		}

		assert.Equal(t, "POST https://circleci.com/api/v2/pipeline/continue: unexpected status 500", err.Error())
	})
}

func TestNewAPIError(t *testing.T) {
	t.Run("decodes the message envelope", func(t *testing.T) {
		err := NewAPIError("GET", "https://circleci.com/api/v2/me", 404, []byte(`{"message": "Not found"}`))

		assert.Equal(t, 404, err.StatusCode)
		assert.Equal(t, "Not found", err.Message)
		assert.Equal(t, []byte(`{"message": "Not found"}`), err.Body)
	})

	t.Run("keeps a non-JSON body without a message", func(t *testing.T) {
		err := NewAPIError("GET", "https://circleci.com/api/v2/me", 502, []byte("Bad Gateway"))

		assert.Empty(t, err.Message)
		assert.Equal(t, []byte("Bad Gateway"), err.Body)
	})
}

func TestParseError_Error(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")

	t.Run("with snippet", func(t *testing.T) {
		err := &ParseError{Err: cause, Snippet: `{"truncated`}
		assert.Equal(t, `parsing response body: unexpected end of JSON input (body: {"truncated)`, err.Error())
	})

	t.Run("without snippet", func(t *testing.T) {
		err := &ParseError{Err: cause}
		assert.Equal(t, "parsing response body: unexpected end of JSON input", err.Error())
	})

	t.Run("unwraps the decode error", func(t *testing.T) {
		err := &ParseError{Err: cause}
		assert.True(t, errors.Is(err, cause))
	})
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		config    bool
		transport bool
		parse     bool
		api       bool
	}{
		{
			name:   "config error",
			err:    &ConfigError{Message: "missing API token"},
			config: true,
		},
		{
			name:      "transport error",
			err:       &TransportError{Method: "GET", URL: "u", Err: errors.New("timeout")},
			transport: true,
		},
		{
			name:  "parse error",
			err:   &ParseError{Err: errors.New("bad json")},
			parse: true,
		},
		{
			name: "api error",
			err:  &APIError{StatusCode: 404},
			api:  true,
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("getting project: %w", &APIError{StatusCode: 404}),
			api:  true,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.config, IsConfigError(tt.err))
			assert.Equal(t, tt.transport, IsTransportError(tt.err))
			assert.Equal(t, tt.parse, IsParseError(tt.err))
			assert.Equal(t, tt.api, IsAPIError(tt.err))
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		notFound     bool
		unauthorized bool
		forbidden    bool
		rateLimited  bool
		serverError  bool
	}{
		{
			name:     "not found",
			err:      &APIError{StatusCode: 404},
			notFound: true,
		},
		{
			name:         "unauthorized",
			err:          &APIError{StatusCode: 401},
			unauthorized: true,
		},
		{
			name:      "forbidden",
			err:       &APIError{StatusCode: 403},
			forbidden: true,
		},
		{
			name:        "rate limited",
			err:         &APIError{StatusCode: 429},
			rateLimited: true,
		},
		{
			name:        "server error",
			err:         &APIError{StatusCode: 503},
			serverError: true,
		},
		{
			name:     "wrapped not found",
			err:      fmt.Errorf("getting project: %w", &APIError{StatusCode: 404}),
			notFound: true,
		},
		{
			name: "non-API error",
			err:  errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.unauthorized, IsUnauthorized(tt.err))
			assert.Equal(t, tt.forbidden, IsForbidden(tt.err))
			assert.Equal(t, tt.rateLimited, IsRateLimited(tt.err))
			assert.Equal(t, tt.serverError, IsServerError(tt.err))
		})
	}
}

func TestAPIError_AsTarget(t *testing.T) {
	wrapped := fmt.Errorf("getting project: %w", &APIError{StatusCode: 404, Message: "Not found"})

	apiErr := &APIError{}
	require.True(t, errors.As(wrapped, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "Not found", apiErr.Message)
}
