package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// ProjectsClient implements circleci.ProjectsClient
type ProjectsClient struct {
	requester *Requester
}

// NewProjectsClient creates a new projects client
func NewProjectsClient(requester *Requester) *ProjectsClient {
	return &ProjectsClient{
		requester: requester,
	}
}

// projectPath builds the v1.1 path prefix for a project, escaping each slug
// component so branch names and org names with special characters survive.
func projectPath(vcsType, org, repo string) string {
	return fmt.Sprintf("/project/%s/%s/%s",
		circleci.EscapePathSegment(vcsType),
		circleci.EscapePathSegment(org),
		circleci.EscapePathSegment(repo))
}

// Get implements circleci.ProjectsClient.Get
func (c *ProjectsClient) Get(ctx context.Context, projectSlug string) (*circleci.Project, error) {
	slug, err := circleci.EscapeProjectSlug(projectSlug)
	if err != nil {
		return nil, err
	}

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, "/project/"+slug, nil)
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}

	var project circleci.Project
	if err := decode(resp.Body, &project); err != nil {
		return nil, fmt.Errorf("parsing project response: %w", err)
	}

	return &project, nil
}

// List implements circleci.ProjectsClient.List
func (c *ProjectsClient) List(ctx context.Context) ([]circleci.ProjectSummary, error) {
	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, "/projects", nil)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	var projects []circleci.ProjectSummary
	if err := decode(resp.Body, &projects); err != nil {
		return nil, fmt.Errorf("parsing projects response: %w", err)
	}

	return projects, nil
}

// Follow implements circleci.ProjectsClient.Follow
func (c *ProjectsClient) Follow(ctx context.Context, vcsType, org, repo string) (*circleci.FollowResult, error) {
	path := projectPath(vcsType, org, repo) + "/follow"

	resp, err := c.requester.Post(ctx, circleci.APIVersionV1, path, nil)
	if err != nil {
		return nil, fmt.Errorf("following project: %w", err)
	}

	var result circleci.FollowResult
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing follow response: %w", err)
	}

	return &result, nil
}

// BuildSummary implements circleci.ProjectsClient.BuildSummary
func (c *ProjectsClient) BuildSummary(ctx context.Context, vcsType, org, repo string, opts *circleci.BuildSummaryOptions) ([]circleci.Build, error) {
	path := projectPath(vcsType, org, repo)
	query := url.Values{}

	if opts != nil {
		if err := circleci.ValidateStatusFilter(opts.Filter); err != nil {
			return nil, err
		}

		if opts.Branch != "" {
			path += "/tree/" + circleci.EscapePathSegment(opts.Branch)
		}

		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}

		if opts.Offset > 0 {
			query.Set("offset", strconv.Itoa(opts.Offset))
		}

		if opts.Filter != "" {
			query.Set("filter", opts.Filter)
		}

		if opts.Shallow {
			query.Set("shallow", "true")
		}
	}

	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, path, query)
	if err != nil {
		return nil, fmt.Errorf("getting build summary: %w", err)
	}

	var builds []circleci.Build
	if err := decode(resp.Body, &builds); err != nil {
		return nil, fmt.Errorf("parsing build summary response: %w", err)
	}

	return builds, nil
}

// Settings implements circleci.ProjectsClient.Settings
func (c *ProjectsClient) Settings(ctx context.Context, vcsType, org, repo string) (*circleci.ProjectSettings, error) {
	path := projectPath(vcsType, org, repo) + "/settings"

	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting project settings: %w", err)
	}

	var settings circleci.ProjectSettings
	if err := decode(resp.Body, &settings); err != nil {
		return nil, fmt.Errorf("parsing project settings response: %w", err)
	}

	return &settings, nil
}

// UpdateSettings implements circleci.ProjectsClient.UpdateSettings
func (c *ProjectsClient) UpdateSettings(ctx context.Context, vcsType, org, repo string, settings map[string]interface{}) (*circleci.ProjectSettings, error) {
	path := projectPath(vcsType, org, repo) + "/settings"

	resp, err := c.requester.Put(ctx, circleci.APIVersionV1, path, settings)
	if err != nil {
		return nil, fmt.Errorf("updating project settings: %w", err)
	}

	var updated circleci.ProjectSettings
	if err := decode(resp.Body, &updated); err != nil {
		return nil, fmt.Errorf("parsing project settings response: %w", err)
	}

	return &updated, nil
}

// AddSSHKey implements circleci.ProjectsClient.AddSSHKey
func (c *ProjectsClient) AddSSHKey(ctx context.Context, vcsType, org, repo, hostname, privateKey string) error {
	path := projectPath(vcsType, org, repo) + "/ssh-key"

	body := map[string]string{
		"hostname":    hostname,
		"private_key": privateKey,
	}

	if _, err := c.requester.Post(ctx, circleci.APIVersionV1, path, body); err != nil {
		return fmt.Errorf("adding ssh key: %w", err)
	}

	return nil
}

// ListCheckoutKeys implements circleci.ProjectsClient.ListCheckoutKeys
func (c *ProjectsClient) ListCheckoutKeys(ctx context.Context, vcsType, org, repo string) ([]circleci.CheckoutKey, error) {
	path := projectPath(vcsType, org, repo) + "/checkout-key"

	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing checkout keys: %w", err)
	}

	var keys []circleci.CheckoutKey
	if err := decode(resp.Body, &keys); err != nil {
		return nil, fmt.Errorf("parsing checkout keys response: %w", err)
	}

	return keys, nil
}

// CreateCheckoutKey implements circleci.ProjectsClient.CreateCheckoutKey
func (c *ProjectsClient) CreateCheckoutKey(ctx context.Context, vcsType, org, repo, keyType string) (*circleci.CheckoutKey, error) {
	if err := circleci.ValidateCheckoutKeyType(keyType); err != nil {
		return nil, err
	}

	path := projectPath(vcsType, org, repo) + "/checkout-key"

	resp, err := c.requester.Post(ctx, circleci.APIVersionV1, path, map[string]string{"type": keyType})
	if err != nil {
		return nil, fmt.Errorf("creating checkout key: %w", err)
	}

	var key circleci.CheckoutKey
	if err := decode(resp.Body, &key); err != nil {
		return nil, fmt.Errorf("parsing checkout key response: %w", err)
	}

	return &key, nil
}

// GetCheckoutKey implements circleci.ProjectsClient.GetCheckoutKey
func (c *ProjectsClient) GetCheckoutKey(ctx context.Context, vcsType, org, repo, fingerprint string) (*circleci.CheckoutKey, error) {
	path := projectPath(vcsType, org, repo) + "/checkout-key/" + circleci.EscapePathSegment(fingerprint)

	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting checkout key: %w", err)
	}

	var key circleci.CheckoutKey
	if err := decode(resp.Body, &key); err != nil {
		return nil, fmt.Errorf("parsing checkout key response: %w", err)
	}

	return &key, nil
}

// DeleteCheckoutKey implements circleci.ProjectsClient.DeleteCheckoutKey
func (c *ProjectsClient) DeleteCheckoutKey(ctx context.Context, vcsType, org, repo, fingerprint string) (*circleci.MessageResponse, error) {
	path := projectPath(vcsType, org, repo) + "/checkout-key/" + circleci.EscapePathSegment(fingerprint)

	resp, err := c.requester.Delete(ctx, circleci.APIVersionV1, path)
	if err != nil {
		return nil, fmt.Errorf("deleting checkout key: %w", err)
	}

	var message circleci.MessageResponse
	if err := decode(resp.Body, &message); err != nil {
		return nil, fmt.Errorf("parsing delete response: %w", err)
	}

	return &message, nil
}

// ListEnvVars implements circleci.ProjectsClient.ListEnvVars
func (c *ProjectsClient) ListEnvVars(ctx context.Context, vcsType, org, repo string) ([]circleci.EnvVar, error) {
	path := projectPath(vcsType, org, repo) + "/envvar"

	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing environment variables: %w", err)
	}

	var envVars []circleci.EnvVar
	if err := decode(resp.Body, &envVars); err != nil {
		return nil, fmt.Errorf("parsing environment variables response: %w", err)
	}

	return envVars, nil
}

// AddEnvVar implements circleci.ProjectsClient.AddEnvVar
func (c *ProjectsClient) AddEnvVar(ctx context.Context, vcsType, org, repo, name, value string) (*circleci.EnvVar, error) {
	path := projectPath(vcsType, org, repo) + "/envvar"

	body := map[string]string{
		"name":  name,
		"value": value,
	}

	resp, err := c.requester.Post(ctx, circleci.APIVersionV1, path, body)
	if err != nil {
		return nil, fmt.Errorf("adding environment variable: %w", err)
	}

	var envVar circleci.EnvVar
	if err := decode(resp.Body, &envVar); err != nil {
		return nil, fmt.Errorf("parsing environment variable response: %w", err)
	}

	return &envVar, nil
}

// GetEnvVar implements circleci.ProjectsClient.GetEnvVar
func (c *ProjectsClient) GetEnvVar(ctx context.Context, vcsType, org, repo, name string) (*circleci.EnvVar, error) {
	path := projectPath(vcsType, org, repo) + "/envvar/" + circleci.EscapePathSegment(name)

	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting environment variable: %w", err)
	}

	var envVar circleci.EnvVar
	if err := decode(resp.Body, &envVar); err != nil {
		return nil, fmt.Errorf("parsing environment variable response: %w", err)
	}

	return &envVar, nil
}

// DeleteEnvVar implements circleci.ProjectsClient.DeleteEnvVar
func (c *ProjectsClient) DeleteEnvVar(ctx context.Context, vcsType, org, repo, name string) (*circleci.MessageResponse, error) {
	path := projectPath(vcsType, org, repo) + "/envvar/" + circleci.EscapePathSegment(name)

	resp, err := c.requester.Delete(ctx, circleci.APIVersionV1, path)
	if err != nil {
		return nil, fmt.Errorf("deleting environment variable: %w", err)
	}

	var message circleci.MessageResponse
	if err := decode(resp.Body, &message); err != nil {
		return nil, fmt.Errorf("parsing delete response: %w", err)
	}

	return &message, nil
}
