package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// WorkflowsClient implements circleci.WorkflowsClient
type WorkflowsClient struct {
	requester *Requester
}

// NewWorkflowsClient creates a new workflows client
func NewWorkflowsClient(requester *Requester) *WorkflowsClient {
	return &WorkflowsClient{
		requester: requester,
	}
}

// Get implements circleci.WorkflowsClient.Get
func (c *WorkflowsClient) Get(ctx context.Context, workflowID string) (*circleci.Workflow, error) {
	path := fmt.Sprintf("/workflow/%s", circleci.EscapePathSegment(workflowID))

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting workflow: %w", err)
	}

	var workflow circleci.Workflow
	if err := decode(resp.Body, &workflow); err != nil {
		return nil, fmt.Errorf("parsing workflow response: %w", err)
	}

	return &workflow, nil
}

// Jobs implements circleci.WorkflowsClient.Jobs
func (c *WorkflowsClient) Jobs(ctx context.Context, workflowID string, params *circleci.QueryParams) (*circleci.ListResponse[circleci.WorkflowJob], error) {
	path := fmt.Sprintf("/workflow/%s/job", circleci.EscapePathSegment(workflowID))

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing workflow jobs: %w", err)
	}

	var result circleci.ListResponse[circleci.WorkflowJob]
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing workflow jobs response: %w", err)
	}

	return &result, nil
}

// JobsAll implements circleci.WorkflowsClient.JobsAll
func (c *WorkflowsClient) JobsAll(ctx context.Context, workflowID string, opts *circleci.PageOptions) ([]circleci.WorkflowJob, error) {
	path := fmt.Sprintf("/workflow/%s/job", circleci.EscapePathSegment(workflowID))

	return circleci.FetchAll(ctx, func(ctx context.Context, pageToken string) (*circleci.ListResponse[circleci.WorkflowJob], error) {
		resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, pageQuery(nil, pageToken))
		if err != nil {
			return nil, fmt.Errorf("listing workflow jobs: %w", err)
		}

		var result circleci.ListResponse[circleci.WorkflowJob]
		if err := decode(resp.Body, &result); err != nil {
			return nil, fmt.Errorf("parsing workflow jobs response: %w", err)
		}

		return &result, nil
	}, opts)
}

// Cancel implements circleci.WorkflowsClient.Cancel
func (c *WorkflowsClient) Cancel(ctx context.Context, workflowID string) (*circleci.MessageResponse, error) {
	path := fmt.Sprintf("/workflow/%s/cancel", circleci.EscapePathSegment(workflowID))

	resp, err := c.requester.Post(ctx, circleci.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("canceling workflow: %w", err)
	}

	var message circleci.MessageResponse
	if err := decode(resp.Body, &message); err != nil {
		return nil, fmt.Errorf("parsing cancel response: %w", err)
	}

	return &message, nil
}

// Rerun implements circleci.WorkflowsClient.Rerun
func (c *WorkflowsClient) Rerun(ctx context.Context, workflowID string, req *circleci.RerunWorkflowRequest) (*circleci.RerunWorkflowResponse, error) {
	if req != nil && len(req.Jobs) > 0 && req.FromFailed {
		return nil, circleci.ErrJobsFromFailedExclusive
	}

	path := fmt.Sprintf("/workflow/%s/rerun", circleci.EscapePathSegment(workflowID))

	resp, err := c.requester.Post(ctx, circleci.APIVersionV2, path, req)
	if err != nil {
		return nil, fmt.Errorf("rerunning workflow: %w", err)
	}

	var result circleci.RerunWorkflowResponse
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing rerun response: %w", err)
	}

	return &result, nil
}

// ApproveJob implements circleci.WorkflowsClient.ApproveJob
func (c *WorkflowsClient) ApproveJob(ctx context.Context, workflowID, approvalRequestID string) (*circleci.MessageResponse, error) {
	path := fmt.Sprintf("/workflow/%s/approve/%s",
		circleci.EscapePathSegment(workflowID),
		circleci.EscapePathSegment(approvalRequestID))

	resp, err := c.requester.Post(ctx, circleci.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("approving job: %w", err)
	}

	var message circleci.MessageResponse
	if err := decode(resp.Body, &message); err != nil {
		return nil, fmt.Errorf("parsing approve response: %w", err)
	}

	return &message, nil
}
