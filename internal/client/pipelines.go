package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// PipelinesClient implements circleci.PipelinesClient
type PipelinesClient struct {
	requester *Requester
}

// NewPipelinesClient creates a new pipelines client
func NewPipelinesClient(requester *Requester) *PipelinesClient {
	return &PipelinesClient{
		requester: requester,
	}
}

// pageQuery renders query params with the continuation token applied.
func pageQuery(params *circleci.QueryParams, token string) url.Values {
	values := params.ToValues()
	if token != "" {
		values.Set("page-token", token)
	}

	return values
}

// Trigger implements circleci.PipelinesClient.Trigger
func (c *PipelinesClient) Trigger(ctx context.Context, projectSlug string, req *circleci.TriggerPipelineRequest) (*circleci.Pipeline, error) {
	if req != nil && req.Branch != "" && req.Tag != "" {
		return nil, circleci.ErrBranchTagExclusive
	}

	slug, err := circleci.EscapeProjectSlug(projectSlug)
	if err != nil {
		return nil, err
	}

	resp, err := c.requester.Post(ctx, circleci.APIVersionV2, "/project/"+slug+"/pipeline", req)
	if err != nil {
		return nil, fmt.Errorf("triggering pipeline: %w", err)
	}

	var pipeline circleci.Pipeline
	if err := decode(resp.Body, &pipeline); err != nil {
		return nil, fmt.Errorf("parsing pipeline response: %w", err)
	}

	return &pipeline, nil
}

// ListForProject implements circleci.PipelinesClient.ListForProject
func (c *PipelinesClient) ListForProject(ctx context.Context, projectSlug string, params *circleci.QueryParams) (*circleci.ListResponse[circleci.Pipeline], error) {
	slug, err := circleci.EscapeProjectSlug(projectSlug)
	if err != nil {
		return nil, err
	}

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, "/project/"+slug+"/pipeline", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing pipelines: %w", err)
	}

	var result circleci.ListResponse[circleci.Pipeline]
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing pipelines list response: %w", err)
	}

	return &result, nil
}

// ListForProjectAll implements circleci.PipelinesClient.ListForProjectAll
func (c *PipelinesClient) ListForProjectAll(ctx context.Context, projectSlug string, params *circleci.QueryParams, opts *circleci.PageOptions) ([]circleci.Pipeline, error) {
	slug, err := circleci.EscapeProjectSlug(projectSlug)
	if err != nil {
		return nil, err
	}

	return circleci.FetchAll(ctx, func(ctx context.Context, pageToken string) (*circleci.ListResponse[circleci.Pipeline], error) {
		resp, err := c.requester.Get(ctx, circleci.APIVersionV2, "/project/"+slug+"/pipeline", pageQuery(params, pageToken))
		if err != nil {
			return nil, fmt.Errorf("listing pipelines: %w", err)
		}

		var result circleci.ListResponse[circleci.Pipeline]
		if err := decode(resp.Body, &result); err != nil {
			return nil, fmt.Errorf("parsing pipelines list response: %w", err)
		}

		return &result, nil
	}, opts)
}

// GetByNumber implements circleci.PipelinesClient.GetByNumber
func (c *PipelinesClient) GetByNumber(ctx context.Context, projectSlug string, number int) (*circleci.Pipeline, error) {
	slug, err := circleci.EscapeProjectSlug(projectSlug)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/project/%s/pipeline/%d", slug, number)

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting pipeline: %w", err)
	}

	var pipeline circleci.Pipeline
	if err := decode(resp.Body, &pipeline); err != nil {
		return nil, fmt.Errorf("parsing pipeline response: %w", err)
	}

	return &pipeline, nil
}

// List implements circleci.PipelinesClient.List
func (c *PipelinesClient) List(ctx context.Context, params *circleci.QueryParams) (*circleci.ListResponse[circleci.Pipeline], error) {
	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, "/pipeline", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing pipelines: %w", err)
	}

	var result circleci.ListResponse[circleci.Pipeline]
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing pipelines list response: %w", err)
	}

	return &result, nil
}

// Get implements circleci.PipelinesClient.Get
func (c *PipelinesClient) Get(ctx context.Context, pipelineID string) (*circleci.Pipeline, error) {
	path := fmt.Sprintf("/pipeline/%s", circleci.EscapePathSegment(pipelineID))

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting pipeline: %w", err)
	}

	var pipeline circleci.Pipeline
	if err := decode(resp.Body, &pipeline); err != nil {
		return nil, fmt.Errorf("parsing pipeline response: %w", err)
	}

	return &pipeline, nil
}

// Config implements circleci.PipelinesClient.Config
func (c *PipelinesClient) Config(ctx context.Context, pipelineID string) (*circleci.PipelineConfig, error) {
	path := fmt.Sprintf("/pipeline/%s/config", circleci.EscapePathSegment(pipelineID))

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting pipeline config: %w", err)
	}

	var config circleci.PipelineConfig
	if err := decode(resp.Body, &config); err != nil {
		return nil, fmt.Errorf("parsing pipeline config response: %w", err)
	}

	return &config, nil
}

// Workflows implements circleci.PipelinesClient.Workflows
func (c *PipelinesClient) Workflows(ctx context.Context, pipelineID string, params *circleci.QueryParams) (*circleci.ListResponse[circleci.Workflow], error) {
	path := fmt.Sprintf("/pipeline/%s/workflow", circleci.EscapePathSegment(pipelineID))

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing pipeline workflows: %w", err)
	}

	var result circleci.ListResponse[circleci.Workflow]
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing workflows list response: %w", err)
	}

	return &result, nil
}

// WorkflowsAll implements circleci.PipelinesClient.WorkflowsAll
func (c *PipelinesClient) WorkflowsAll(ctx context.Context, pipelineID string, opts *circleci.PageOptions) ([]circleci.Workflow, error) {
	path := fmt.Sprintf("/pipeline/%s/workflow", circleci.EscapePathSegment(pipelineID))

	return circleci.FetchAll(ctx, func(ctx context.Context, pageToken string) (*circleci.ListResponse[circleci.Workflow], error) {
		resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, pageQuery(nil, pageToken))
		if err != nil {
			return nil, fmt.Errorf("listing pipeline workflows: %w", err)
		}

		var result circleci.ListResponse[circleci.Workflow]
		if err := decode(resp.Body, &result); err != nil {
			return nil, fmt.Errorf("parsing workflows list response: %w", err)
		}

		return &result, nil
	}, opts)
}

// Continue implements circleci.PipelinesClient.Continue
func (c *PipelinesClient) Continue(ctx context.Context, req *circleci.ContinuePipelineRequest) (*circleci.MessageResponse, error) {
	resp, err := c.requester.Post(ctx, circleci.APIVersionV2, "/pipeline/continue", req)
	if err != nil {
		return nil, fmt.Errorf("continuing pipeline: %w", err)
	}

	var message circleci.MessageResponse
	if err := decode(resp.Body, &message); err != nil {
		return nil, fmt.Errorf("parsing continue response: %w", err)
	}

	return &message, nil
}
