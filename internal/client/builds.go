package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// BuildsClient implements circleci.BuildsClient
type BuildsClient struct {
	requester *Requester
}

// NewBuildsClient creates a new builds client
func NewBuildsClient(requester *Requester) *BuildsClient {
	return &BuildsClient{
		requester: requester,
	}
}

// buildPath builds the v1.1 path for a single build.
func buildPath(vcsType, org, repo string, buildNum int) string {
	return fmt.Sprintf("%s/%d", projectPath(vcsType, org, repo), buildNum)
}

// Recent implements circleci.BuildsClient.Recent
func (c *BuildsClient) Recent(ctx context.Context, opts *circleci.RecentBuildsOptions) ([]circleci.Build, error) {
	limit := constants.DefaultBuildLimit
	offset := 0

	if opts != nil {
		if opts.Limit > 0 {
			limit = opts.Limit
		}

		offset = opts.Offset
	}

	return circleci.FetchAllOffset(ctx, func(ctx context.Context, page, perPage int) ([]circleci.Build, error) {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(perPage))

		pageOffset := offset + (page-1)*perPage
		if pageOffset > 0 {
			query.Set("offset", strconv.Itoa(pageOffset))
		}

		resp, err := c.requester.Get(ctx, circleci.APIVersionV1, "/recent-builds", query)
		if err != nil {
			return nil, fmt.Errorf("listing recent builds: %w", err)
		}

		var builds []circleci.Build
		if err := decode(resp.Body, &builds); err != nil {
			return nil, fmt.Errorf("parsing recent builds response: %w", err)
		}

		return builds, nil
	}, limit)
}

// Get implements circleci.BuildsClient.Get
func (c *BuildsClient) Get(ctx context.Context, vcsType, org, repo string, buildNum int) (*circleci.Build, error) {
	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, buildPath(vcsType, org, repo, buildNum), nil)
	if err != nil {
		return nil, fmt.Errorf("getting build: %w", err)
	}

	var build circleci.Build
	if err := decode(resp.Body, &build); err != nil {
		return nil, fmt.Errorf("parsing build response: %w", err)
	}

	return &build, nil
}

// Retry implements circleci.BuildsClient.Retry
func (c *BuildsClient) Retry(ctx context.Context, vcsType, org, repo string, buildNum int, ssh bool) (*circleci.Build, error) {
	action := "retry"
	if ssh {
		action = "ssh"
	}

	path := buildPath(vcsType, org, repo, buildNum) + "/" + action

	resp, err := c.requester.Post(ctx, circleci.APIVersionV1, path, nil)
	if err != nil {
		return nil, fmt.Errorf("retrying build: %w", err)
	}

	var build circleci.Build
	if err := decode(resp.Body, &build); err != nil {
		return nil, fmt.Errorf("parsing build response: %w", err)
	}

	return &build, nil
}

// Cancel implements circleci.BuildsClient.Cancel
func (c *BuildsClient) Cancel(ctx context.Context, vcsType, org, repo string, buildNum int) (*circleci.Build, error) {
	path := buildPath(vcsType, org, repo, buildNum) + "/cancel"

	resp, err := c.requester.Post(ctx, circleci.APIVersionV1, path, nil)
	if err != nil {
		return nil, fmt.Errorf("canceling build: %w", err)
	}

	var build circleci.Build
	if err := decode(resp.Body, &build); err != nil {
		return nil, fmt.Errorf("parsing build response: %w", err)
	}

	return &build, nil
}

// AddSSHUser implements circleci.BuildsClient.AddSSHUser
func (c *BuildsClient) AddSSHUser(ctx context.Context, vcsType, org, repo string, buildNum int) (*circleci.Build, error) {
	path := buildPath(vcsType, org, repo, buildNum) + "/ssh-users"

	resp, err := c.requester.Post(ctx, circleci.APIVersionV1, path, nil)
	if err != nil {
		return nil, fmt.Errorf("adding ssh user: %w", err)
	}

	var build circleci.Build
	if err := decode(resp.Body, &build); err != nil {
		return nil, fmt.Errorf("parsing build response: %w", err)
	}

	return &build, nil
}

// Trigger implements circleci.BuildsClient.Trigger
func (c *BuildsClient) Trigger(ctx context.Context, vcsType, org, repo, branch string, req *circleci.TriggerBuildRequest) (*circleci.Build, error) {
	body := map[string]interface{}{}

	if req != nil {
		if req.Revision != "" && req.Tag != "" {
			return nil, circleci.ErrRevisionTagExclusive
		}

		if req.Revision != "" {
			body["revision"] = req.Revision
		}

		if req.Tag != "" {
			body["tag"] = req.Tag
		}

		if req.Parallel > 0 {
			body["parallel"] = req.Parallel
		}

		for key, value := range req.BuildParameters {
			body[key] = value
		}
	}

	path := projectPath(vcsType, org, repo) + "/tree/" + circleci.EscapePathSegment(branch)

	resp, err := c.requester.Post(ctx, circleci.APIVersionV1, path, body)
	if err != nil {
		return nil, fmt.Errorf("triggering build: %w", err)
	}

	var build circleci.Build
	if err := decode(resp.Body, &build); err != nil {
		return nil, fmt.Errorf("parsing build response: %w", err)
	}

	return &build, nil
}

// Artifacts implements circleci.BuildsClient.Artifacts
func (c *BuildsClient) Artifacts(ctx context.Context, vcsType, org, repo string, buildNum int) ([]circleci.Artifact, error) {
	path := buildPath(vcsType, org, repo, buildNum) + "/artifacts"

	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}

	var artifacts []circleci.Artifact
	if err := decode(resp.Body, &artifacts); err != nil {
		return nil, fmt.Errorf("parsing artifacts response: %w", err)
	}

	return artifacts, nil
}

// LatestArtifacts implements circleci.BuildsClient.LatestArtifacts
func (c *BuildsClient) LatestArtifacts(ctx context.Context, vcsType, org, repo string, opts *circleci.LatestArtifactsOptions) ([]circleci.Artifact, error) {
	query := url.Values{}

	if opts != nil {
		if opts.Filter != "" {
			if err := circleci.ValidateArtifactFilter(opts.Filter); err != nil {
				return nil, err
			}

			query.Set("filter", opts.Filter)
		}

		if opts.Branch != "" {
			query.Set("branch", opts.Branch)
		}
	}

	path := projectPath(vcsType, org, repo) + "/latest/artifacts"

	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing latest artifacts: %w", err)
	}

	var artifacts []circleci.Artifact
	if err := decode(resp.Body, &artifacts); err != nil {
		return nil, fmt.Errorf("parsing artifacts response: %w", err)
	}

	return artifacts, nil
}

// TestMetadata implements circleci.BuildsClient.TestMetadata
func (c *BuildsClient) TestMetadata(ctx context.Context, vcsType, org, repo string, buildNum int) ([]circleci.TestMetadata, error) {
	path := buildPath(vcsType, org, repo, buildNum) + "/tests"

	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting test metadata: %w", err)
	}

	// The endpoint wraps the results in a "tests" envelope.
	var envelope struct {
		Tests []circleci.TestMetadata `json:"tests"`
	}

	if err := decode(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing test metadata response: %w", err)
	}

	return envelope.Tests, nil
}

// DownloadArtifact implements circleci.BuildsClient.DownloadArtifact
func (c *BuildsClient) DownloadArtifact(ctx context.Context, artifactURL, destDir, filename string) (string, error) {
	reader, err := c.requester.Stream(ctx, artifactURL)
	if err != nil {
		return "", fmt.Errorf("downloading artifact: %w", err)
	}

	defer func() {
		_ = reader.Close()
	}()

	if filename == "" {
		filename = artifactFilename(artifactURL)
	}

	if err := os.MkdirAll(destDir, constants.ConfigDirPerm); err != nil {
		return "", fmt.Errorf("creating destination directory: %w", err)
	}

	dest := filepath.Join(destDir, filename)

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.ArtifactFilePerm)
	if err != nil {
		return "", fmt.Errorf("creating artifact file: %w", err)
	}

	if _, err := io.Copy(out, reader); err != nil {
		_ = out.Close()

		return "", fmt.Errorf("writing artifact: %w", err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}

	return dest, nil
}

// artifactFilename derives a filename from the last path segment of the
// artifact URL.
func artifactFilename(artifactURL string) string {
	parsed, err := url.Parse(artifactURL)
	if err != nil {
		return "artifact"
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return "artifact"
	}

	return name
}
