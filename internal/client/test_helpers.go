package client

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	internalhttp "github.com/fivetwenty-io/circleci-client/internal/http"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// NewTestClient creates a client against a test server, with no token
// provider and no interceptor chain.
func NewTestClient(baseURL string) *Client {
	httpClient := internalhttp.NewClient(baseURL, nil)

	client := &Client{
		httpClient: httpClient,
		requester:  NewRequester(httpClient, nil),
		baseURL:    baseURL,
	}

	client.initializeResourceClients()

	return client
}

// NewTestClientWithChain creates a client whose requests run through the
// given interceptor chain, against a test server.
func NewTestClientWithChain(baseURL string, chain *circleci.InterceptorChain) *Client {
	httpClient := internalhttp.NewClient(baseURL, nil)

	client := &Client{
		httpClient: httpClient,
		requester:  NewRequester(httpClient, chain),
		chain:      chain,
		baseURL:    baseURL,
	}

	client.initializeResourceClients()

	return client
}

// JSONHandler builds a handler that asserts the expected method and path and
// replies with the payload encoded as JSON. A nil payload sends no body.
func JSONHandler(t *testing.T, method, path string, status int, payload interface{}) http.HandlerFunc {
	t.Helper()

	return func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, method, request.Method)
		assert.Equal(t, path, request.URL.Path)

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)

		if payload != nil {
			_ = json.NewEncoder(writer).Encode(payload)
		}
	}
}

// DecodeRequestBody decodes the JSON request body into v, failing the test
// on malformed payloads.
func DecodeRequestBody(t *testing.T, request *http.Request, v interface{}) {
	t.Helper()

	err := json.NewDecoder(request.Body).Decode(v)
	assert.NoError(t, err)
}

// FailHandler builds a handler that fails the test when reached. It backs
// tests asserting that invalid input is rejected before a request is made.
func FailHandler(t *testing.T) http.HandlerFunc {
	t.Helper()

	return func(writer http.ResponseWriter, request *http.Request) {
		t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		writer.WriteHeader(http.StatusInternalServerError)
	}
}
