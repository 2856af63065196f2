//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/circleci-client/pkg/cciclient"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// The library journeys below run against a local stub server, so they need
// no credentials and exercise the full client stack: dispatch, dual
// authentication, retries, pagination, error mapping, and introspection.

const testToken = "test-token-0123456789abcdef"

func newTestClient(t *testing.T, serverURL string) circleci.Client {
	t.Helper()

	client, err := cciclient.New(context.Background(), &circleci.Config{
		BaseURL:      serverURL,
		Token:        testToken,
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// TestClientJourney_AuthenticationHeaders verifies both authentication
// schemes ride on every request
func TestClientJourney_AuthenticationHeaders(t *testing.T) {
	var (
		gotAuthorization string
		gotCircleToken   string
		gotAccept        string
		gotUserAgent     string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthorization = r.Header.Get("Authorization")
		gotCircleToken = r.Header.Get("Circle-Token")
		gotAccept = r.Header.Get("Accept")
		gotUserAgent = r.Header.Get("User-Agent")
		writeJSON(w, http.StatusOK, `{"id": "user-1", "login": "alice", "name": "Alice"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	user, err := client.Users().Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)

	wantBasic := "Basic " + base64.StdEncoding.EncodeToString([]byte(testToken+":"))
	assert.Equal(t, wantBasic, gotAuthorization)
	assert.Equal(t, testToken, gotCircleToken)
	assert.Equal(t, "application/json", gotAccept)
	assert.Contains(t, gotUserAgent, "circleci-client-go/")
}

// TestClientJourney_VersionRouting verifies v2 and v1.1 operations hit their
// own path prefixes on the same endpoint
func TestClientJourney_VersionRouting(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.1/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id": "user-1", "login": "alice"}`)
	})
	mux.HandleFunc("/v1.1/recent-builds", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"build_num": 42, "username": "acme", "reponame": "widget", "status": "success"}]`)
	})
	mux.HandleFunc("/v2/pipeline/pipeline-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id": "pipeline-1", "number": 7, "state": "created"}`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	user, err := client.Users().Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)

	builds, err := client.Builds().Recent(ctx, nil)
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, 42, builds[0].BuildNum)
	assert.Equal(t, "success", builds[0].Status)

	pipeline, err := client.Pipelines().Get(ctx, "pipeline-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), pipeline.Number)
	assert.Equal(t, "created", pipeline.State)
}

// TestClientJourney_RetryOnServerError verifies transient server errors are
// retried and only the final attempt is reported
func TestClientJourney_RetryOnServerError(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, `{"message": "upstream unavailable"}`)

			return
		}

		writeJSON(w, http.StatusOK, `{"id": "user-1", "login": "alice"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	user, err := client.Users().Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
	assert.Equal(t, int32(2), attempts.Load())

	// Introspection reflects the attempt that succeeded
	response := client.LastResponse()
	require.NotNil(t, response)
	assert.Equal(t, http.StatusOK, response.StatusCode)
}

// TestClientJourney_Pagination verifies token pagination walks every page
func TestClientJourney_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/project/gh/acme/widget/pipeline", r.URL.Path)

		if r.URL.Query().Get("page-token") == "page-2" {
			writeJSON(w, http.StatusOK, `{"items": [{"id": "pipeline-2", "number": 2}], "next_page_token": ""}`)

			return
		}

		writeJSON(w, http.StatusOK, `{"items": [{"id": "pipeline-1", "number": 1}], "next_page_token": "page-2"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	pipelines, err := client.Pipelines().ListForProjectAll(context.Background(), "gh/acme/widget", nil, nil)
	require.NoError(t, err)
	require.Len(t, pipelines, 2)
	assert.Equal(t, "pipeline-1", pipelines[0].ID)
	assert.Equal(t, "pipeline-2", pipelines[1].ID)
}

// TestClientJourney_ErrorMapping verifies API failures come back as typed
// errors carrying the server's message
func TestClientJourney_ErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message": "Project not found"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Projects().Get(context.Background(), "gh/acme/missing")
	require.Error(t, err)

	var apiErr *circleci.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Project not found", apiErr.Message)
	assert.Equal(t, http.MethodGet, apiErr.Method)

	// The failing exchange is still recorded
	response := client.LastResponse()
	require.NotNil(t, response)
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}

// TestClientJourney_Introspection verifies the last exchange is captured
// with credentials redacted
func TestClientJourney_Introspection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id": "user-1", "login": "alice"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Nothing recorded before the first request
	require.Nil(t, client.LastExchange())

	var before bytes.Buffer
	require.NoError(t, client.DumpLastExchange(&before))
	assert.Contains(t, before.String(), "no requests recorded")

	_, err := client.Users().Me(context.Background())
	require.NoError(t, err)

	request := client.LastRequest()
	require.NotNil(t, request)
	assert.Equal(t, http.MethodGet, request.Method)
	assert.Contains(t, request.URL, "/v1.1/me")

	response := client.LastResponse()
	require.NotNil(t, response)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, response.Body, "alice")

	var dump bytes.Buffer
	require.NoError(t, client.DumpLastExchange(&dump))
	output := dump.String()
	assert.Contains(t, output, "> GET")
	assert.Contains(t, output, "Circle-Token: ***")
	assert.Contains(t, output, "Authorization: ***")
	assert.Contains(t, output, "< 200 OK")
	assert.NotContains(t, output, testToken, "Dumps must never leak the token")
}

// TestClientJourney_RawAccess verifies arbitrary endpoints are reachable
// through the raw dispatcher
func TestClientJourney_RawAccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id": "user-1", "login": "alice"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	raw, err := client.Raw(context.Background(), http.MethodGet, circleci.APIVersionV2, "/me", nil, nil)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "alice", payload["login"])
}
