package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// JobsClient implements circleci.JobsClient
type JobsClient struct {
	requester *Requester
}

// NewJobsClient creates a new jobs client
func NewJobsClient(requester *Requester) *JobsClient {
	return &JobsClient{
		requester: requester,
	}
}

// Get implements circleci.JobsClient.Get
func (c *JobsClient) Get(ctx context.Context, projectSlug string, jobNumber int) (*circleci.Job, error) {
	slug, err := circleci.EscapeProjectSlug(projectSlug)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/project/%s/job/%d", slug, jobNumber)

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}

	var job circleci.Job
	if err := decode(resp.Body, &job); err != nil {
		return nil, fmt.Errorf("parsing job response: %w", err)
	}

	return &job, nil
}

// Cancel implements circleci.JobsClient.Cancel
func (c *JobsClient) Cancel(ctx context.Context, projectSlug string, jobNumber int) (*circleci.MessageResponse, error) {
	slug, err := circleci.EscapeProjectSlug(projectSlug)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/project/%s/job/%d/cancel", slug, jobNumber)

	resp, err := c.requester.Post(ctx, circleci.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("canceling job: %w", err)
	}

	var message circleci.MessageResponse
	if err := decode(resp.Body, &message); err != nil {
		return nil, fmt.Errorf("parsing cancel response: %w", err)
	}

	return &message, nil
}
