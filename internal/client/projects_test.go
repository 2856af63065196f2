package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/fivetwenty-io/circleci-client/internal/client"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

func TestProjectsClient_Get(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "GET", "/v2/project/gh/acme/widgets", http.StatusOK, map[string]string{
		"id":   "project-id",
		"slug": "gh/acme/widgets",
		"name": "widgets",
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	project, err := client.Projects().Get(context.Background(), "gh/acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, "project-id", project.ID)
	assert.Equal(t, "widgets", project.Name)
}

func TestProjectsClient_Get_InvalidSlug(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(FailHandler(t))
	defer server.Close()

	client := NewTestClient(server.URL)

	project, err := client.Projects().Get(context.Background(), "gh/acme")
	require.Error(t, err)
	assert.Nil(t, project)
	assert.True(t, errors.Is(err, circleci.ErrInvalidProjectSlug))
}

func TestProjectsClient_List(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "GET", "/v1.1/projects", http.StatusOK, []map[string]interface{}{
		{"username": "acme", "reponame": "widgets", "followed": true},
		{"username": "acme", "reponame": "gadgets"},
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	projects, err := client.Projects().List(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "widgets", projects[0].Reponame)
	assert.True(t, projects[0].Followed)
	assert.Equal(t, "gadgets", projects[1].Reponame)
}

func TestProjectsClient_Follow(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "POST", "/v1.1/project/github/acme/widgets/follow", http.StatusOK, map[string]interface{}{
		"followed":    true,
		"first_build": map[string]interface{}{"build_num": 1},
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	result, err := client.Projects().Follow(context.Background(), "github", "acme", "widgets")
	require.NoError(t, err)
	assert.True(t, result.Followed)
	require.NotNil(t, result.FirstBuild)
	assert.Equal(t, 1, result.FirstBuild.BuildNum)
}

func TestProjectsClient_BuildSummary(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "GET", request.Method)
		assert.Equal(t, "/v1.1/project/github/acme/widgets/tree/main", request.URL.Path)
		assert.Equal(t, "5", request.URL.Query().Get("limit"))
		assert.Equal(t, "10", request.URL.Query().Get("offset"))
		assert.Equal(t, "completed", request.URL.Query().Get("filter"))
		assert.Equal(t, "true", request.URL.Query().Get("shallow"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`[{"build_num": 42, "status": "success", "branch": "main"}]`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	builds, err := client.Projects().BuildSummary(context.Background(), "github", "acme", "widgets", &circleci.BuildSummaryOptions{
		Branch:  "main",
		Limit:   5,
		Offset:  10,
		Filter:  circleci.StatusFilterCompleted,
		Shallow: true,
	})
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, 42, builds[0].BuildNum)
	assert.Equal(t, "success", builds[0].Status)
}

func TestProjectsClient_BuildSummary_EscapesBranch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/v1.1/project/github/acme/widgets/tree/feature%2Flogin", request.URL.EscapedPath())

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	_, err := client.Projects().BuildSummary(context.Background(), "github", "acme", "widgets", &circleci.BuildSummaryOptions{
		Branch: "feature/login",
	})
	require.NoError(t, err)
}

func TestProjectsClient_BuildSummary_InvalidFilter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(FailHandler(t))
	defer server.Close()

	client := NewTestClient(server.URL)

	builds, err := client.Projects().BuildSummary(context.Background(), "github", "acme", "widgets", &circleci.BuildSummaryOptions{
		Filter: "bogus",
	})
	require.Error(t, err)
	assert.Nil(t, builds)
	assert.True(t, errors.Is(err, circleci.ErrInvalidStatusFilter))
}

func TestProjectsClient_Settings(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "GET", "/v1.1/project/github/acme/widgets/settings", http.StatusOK, map[string]interface{}{
		"default_branch": "main",
		"following":      true,
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	settings, err := client.Projects().Settings(context.Background(), "github", "acme", "widgets")
	require.NoError(t, err)
	assert.Equal(t, "main", settings.DefaultBranch)
	assert.True(t, settings.Following)
}

func TestProjectsClient_UpdateSettings(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "PUT", request.Method)
		assert.Equal(t, "/v1.1/project/github/acme/widgets/settings", request.URL.Path)

		var body map[string]interface{}

		DecodeRequestBody(t, request, &body)
		assert.Equal(t, map[string]interface{}{"feature_flags": map[string]interface{}{"oss": true}}, body)

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"feature_flags": {"oss": true}}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	settings, err := client.Projects().UpdateSettings(context.Background(), "github", "acme", "widgets", map[string]interface{}{
		"feature_flags": map[string]interface{}{"oss": true},
	})
	require.NoError(t, err)
	assert.Equal(t, true, settings.FeatureFlags["oss"])
}

func TestProjectsClient_AddSSHKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "POST", request.Method)
		assert.Equal(t, "/v1.1/project/github/acme/widgets/ssh-key", request.URL.Path)

		var body map[string]string

		DecodeRequestBody(t, request, &body)
		assert.Equal(t, "deploy.example.com", body["hostname"])
		assert.Equal(t, "private-key-material", body["private_key"])

		writer.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	err := client.Projects().AddSSHKey(context.Background(), "github", "acme", "widgets", "deploy.example.com", "private-key-material")
	require.NoError(t, err)
}

func TestProjectsClient_ListCheckoutKeys(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "GET", "/v1.1/project/github/acme/widgets/checkout-key", http.StatusOK, []map[string]interface{}{
		{"type": "deploy-key", "fingerprint": "a1:b2:c3", "preferred": true},
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	keys, err := client.Projects().ListCheckoutKeys(context.Background(), "github", "acme", "widgets")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, circleci.CheckoutKeyDeploy, keys[0].Type)
	assert.True(t, keys[0].Preferred)
}

func TestProjectsClient_CreateCheckoutKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "POST", request.Method)
		assert.Equal(t, "/v1.1/project/github/acme/widgets/checkout-key", request.URL.Path)

		var body map[string]string

		DecodeRequestBody(t, request, &body)
		assert.Equal(t, "deploy-key", body["type"])

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusCreated)
		_, _ = writer.Write([]byte(`{"type": "deploy-key", "fingerprint": "a1:b2:c3"}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	key, err := client.Projects().CreateCheckoutKey(context.Background(), "github", "acme", "widgets", circleci.CheckoutKeyDeploy)
	require.NoError(t, err)
	assert.Equal(t, "a1:b2:c3", key.Fingerprint)
}

func TestProjectsClient_CreateCheckoutKey_InvalidType(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(FailHandler(t))
	defer server.Close()

	client := NewTestClient(server.URL)

	key, err := client.Projects().CreateCheckoutKey(context.Background(), "github", "acme", "widgets", "rsa")
	require.Error(t, err)
	assert.Nil(t, key)
	assert.True(t, errors.Is(err, circleci.ErrInvalidKeyType))
}

func TestProjectsClient_GetCheckoutKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "GET", "/v1.1/project/github/acme/widgets/checkout-key/a1:b2:c3", http.StatusOK, map[string]string{
		"type":        "deploy-key",
		"fingerprint": "a1:b2:c3",
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	key, err := client.Projects().GetCheckoutKey(context.Background(), "github", "acme", "widgets", "a1:b2:c3")
	require.NoError(t, err)
	assert.Equal(t, "a1:b2:c3", key.Fingerprint)
}

func TestProjectsClient_DeleteCheckoutKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "DELETE", "/v1.1/project/github/acme/widgets/checkout-key/a1:b2:c3", http.StatusOK, map[string]string{
		"message": "ok",
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	message, err := client.Projects().DeleteCheckoutKey(context.Background(), "github", "acme", "widgets", "a1:b2:c3")
	require.NoError(t, err)
	assert.Equal(t, "ok", message.Message)
}

func TestProjectsClient_ListEnvVars(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "GET", "/v1.1/project/github/acme/widgets/envvar", http.StatusOK, []map[string]string{
		{"name": "API_KEY", "value": "xxxx1234"},
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	envVars, err := client.Projects().ListEnvVars(context.Background(), "github", "acme", "widgets")
	require.NoError(t, err)
	require.Len(t, envVars, 1)
	assert.Equal(t, "API_KEY", envVars[0].Name)
	assert.Equal(t, "xxxx1234", envVars[0].Value)
}

func TestProjectsClient_AddEnvVar(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "POST", request.Method)
		assert.Equal(t, "/v1.1/project/github/acme/widgets/envvar", request.URL.Path)

		var body map[string]string

		DecodeRequestBody(t, request, &body)
		assert.Equal(t, "API_KEY", body["name"])
		assert.Equal(t, "secret", body["value"])

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusCreated)
		_, _ = writer.Write([]byte(`{"name": "API_KEY", "value": "xxxxcret"}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	envVar, err := client.Projects().AddEnvVar(context.Background(), "github", "acme", "widgets", "API_KEY", "secret")
	require.NoError(t, err)
	assert.Equal(t, "API_KEY", envVar.Name)
	assert.Equal(t, "xxxxcret", envVar.Value)
}

func TestProjectsClient_DeleteEnvVar(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(JSONHandler(t, "DELETE", "/v1.1/project/github/acme/widgets/envvar/API_KEY", http.StatusOK, map[string]string{
		"message": "ok",
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	message, err := client.Projects().DeleteEnvVar(context.Background(), "github", "acme", "widgets", "API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "ok", message.Message)
}
