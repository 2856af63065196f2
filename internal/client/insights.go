package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// InsightsClient implements circleci.InsightsClient
type InsightsClient struct {
	requester *Requester
}

// NewInsightsClient creates a new insights client
func NewInsightsClient(requester *Requester) *InsightsClient {
	return &InsightsClient{
		requester: requester,
	}
}

// insightsPath builds the base insights path for a project slug.
func insightsPath(projectSlug string) (string, error) {
	slug, err := circleci.EscapeProjectSlug(projectSlug)
	if err != nil {
		return "", err
	}

	return "/insights/" + slug, nil
}

// Branches implements circleci.InsightsClient.Branches
func (c *InsightsClient) Branches(ctx context.Context, projectSlug string, params *circleci.QueryParams) (*circleci.InsightsBranches, error) {
	base, err := insightsPath(projectSlug)
	if err != nil {
		return nil, err
	}

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, base+"/branches", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("getting insights branches: %w", err)
	}

	var branches circleci.InsightsBranches
	if err := decode(resp.Body, &branches); err != nil {
		return nil, fmt.Errorf("parsing insights branches response: %w", err)
	}

	return &branches, nil
}

// WorkflowMetrics implements circleci.InsightsClient.WorkflowMetrics
func (c *InsightsClient) WorkflowMetrics(ctx context.Context, projectSlug string, params *circleci.QueryParams) (*circleci.ListResponse[circleci.WorkflowMetricsSummary], error) {
	base, err := insightsPath(projectSlug)
	if err != nil {
		return nil, err
	}

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, base+"/workflows", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("getting workflow metrics: %w", err)
	}

	var result circleci.ListResponse[circleci.WorkflowMetricsSummary]
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing workflow metrics response: %w", err)
	}

	return &result, nil
}

// WorkflowMetricsAll implements circleci.InsightsClient.WorkflowMetricsAll
func (c *InsightsClient) WorkflowMetricsAll(ctx context.Context, projectSlug string, params *circleci.QueryParams, opts *circleci.PageOptions) ([]circleci.WorkflowMetricsSummary, error) {
	base, err := insightsPath(projectSlug)
	if err != nil {
		return nil, err
	}

	return circleci.FetchAll(ctx, func(ctx context.Context, pageToken string) (*circleci.ListResponse[circleci.WorkflowMetricsSummary], error) {
		resp, err := c.requester.Get(ctx, circleci.APIVersionV2, base+"/workflows", pageQuery(params, pageToken))
		if err != nil {
			return nil, fmt.Errorf("getting workflow metrics: %w", err)
		}

		var result circleci.ListResponse[circleci.WorkflowMetricsSummary]
		if err := decode(resp.Body, &result); err != nil {
			return nil, fmt.Errorf("parsing workflow metrics response: %w", err)
		}

		return &result, nil
	}, opts)
}

// WorkflowRuns implements circleci.InsightsClient.WorkflowRuns
func (c *InsightsClient) WorkflowRuns(ctx context.Context, projectSlug, workflowName string, params *circleci.QueryParams) (*circleci.ListResponse[circleci.WorkflowRun], error) {
	base, err := insightsPath(projectSlug)
	if err != nil {
		return nil, err
	}

	path := base + "/workflows/" + circleci.EscapePathSegment(workflowName)

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("getting workflow runs: %w", err)
	}

	var result circleci.ListResponse[circleci.WorkflowRun]
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing workflow runs response: %w", err)
	}

	return &result, nil
}

// WorkflowTestMetrics implements circleci.InsightsClient.WorkflowTestMetrics
func (c *InsightsClient) WorkflowTestMetrics(ctx context.Context, projectSlug, workflowName string, params *circleci.QueryParams) (*circleci.TestMetricsReport, error) {
	base, err := insightsPath(projectSlug)
	if err != nil {
		return nil, err
	}

	path := base + "/workflows/" + circleci.EscapePathSegment(workflowName) + "/test-metrics"

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("getting test metrics: %w", err)
	}

	var report circleci.TestMetricsReport
	if err := decode(resp.Body, &report); err != nil {
		return nil, fmt.Errorf("parsing test metrics response: %w", err)
	}

	return &report, nil
}

// JobMetrics implements circleci.InsightsClient.JobMetrics
func (c *InsightsClient) JobMetrics(ctx context.Context, projectSlug, workflowName string, params *circleci.QueryParams) (*circleci.ListResponse[circleci.JobMetricsSummary], error) {
	base, err := insightsPath(projectSlug)
	if err != nil {
		return nil, err
	}

	path := base + "/workflows/" + circleci.EscapePathSegment(workflowName) + "/jobs"

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("getting job metrics: %w", err)
	}

	var result circleci.ListResponse[circleci.JobMetricsSummary]
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing job metrics response: %w", err)
	}

	return &result, nil
}

// JobRuns implements circleci.InsightsClient.JobRuns
func (c *InsightsClient) JobRuns(ctx context.Context, projectSlug, workflowName, jobName string, params *circleci.QueryParams) (*circleci.ListResponse[circleci.JobRun], error) {
	base, err := insightsPath(projectSlug)
	if err != nil {
		return nil, err
	}

	path := base + "/workflows/" + circleci.EscapePathSegment(workflowName) +
		"/jobs/" + circleci.EscapePathSegment(jobName)

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("getting job runs: %w", err)
	}

	var result circleci.ListResponse[circleci.JobRun]
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing job runs response: %w", err)
	}

	return &result, nil
}
