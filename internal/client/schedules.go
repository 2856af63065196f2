package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// SchedulesClient implements circleci.SchedulesClient
type SchedulesClient struct {
	requester *Requester
}

// NewSchedulesClient creates a new schedules client
func NewSchedulesClient(requester *Requester) *SchedulesClient {
	return &SchedulesClient{
		requester: requester,
	}
}

// List implements circleci.SchedulesClient.List
func (c *SchedulesClient) List(ctx context.Context, projectSlug string, params *circleci.QueryParams) (*circleci.ListResponse[circleci.Schedule], error) {
	slug, err := circleci.EscapeProjectSlug(projectSlug)
	if err != nil {
		return nil, err
	}

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, "/project/"+slug+"/schedule", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}

	var result circleci.ListResponse[circleci.Schedule]
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing schedules list response: %w", err)
	}

	return &result, nil
}

// ListAll implements circleci.SchedulesClient.ListAll
func (c *SchedulesClient) ListAll(ctx context.Context, projectSlug string, opts *circleci.PageOptions) ([]circleci.Schedule, error) {
	slug, err := circleci.EscapeProjectSlug(projectSlug)
	if err != nil {
		return nil, err
	}

	return circleci.FetchAll(ctx, func(ctx context.Context, pageToken string) (*circleci.ListResponse[circleci.Schedule], error) {
		resp, err := c.requester.Get(ctx, circleci.APIVersionV2, "/project/"+slug+"/schedule", pageQuery(nil, pageToken))
		if err != nil {
			return nil, fmt.Errorf("listing schedules: %w", err)
		}

		var result circleci.ListResponse[circleci.Schedule]
		if err := decode(resp.Body, &result); err != nil {
			return nil, fmt.Errorf("parsing schedules list response: %w", err)
		}

		return &result, nil
	}, opts)
}

// Get implements circleci.SchedulesClient.Get
func (c *SchedulesClient) Get(ctx context.Context, scheduleID string) (*circleci.Schedule, error) {
	path := fmt.Sprintf("/schedule/%s", circleci.EscapePathSegment(scheduleID))

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting schedule: %w", err)
	}

	var schedule circleci.Schedule
	if err := decode(resp.Body, &schedule); err != nil {
		return nil, fmt.Errorf("parsing schedule response: %w", err)
	}

	return &schedule, nil
}

// Create implements circleci.SchedulesClient.Create
func (c *SchedulesClient) Create(ctx context.Context, projectSlug string, req *circleci.CreateScheduleRequest) (*circleci.Schedule, error) {
	slug, err := circleci.EscapeProjectSlug(projectSlug)
	if err != nil {
		return nil, err
	}

	resp, err := c.requester.Post(ctx, circleci.APIVersionV2, "/project/"+slug+"/schedule", req)
	if err != nil {
		return nil, fmt.Errorf("creating schedule: %w", err)
	}

	var schedule circleci.Schedule
	if err := decode(resp.Body, &schedule); err != nil {
		return nil, fmt.Errorf("parsing schedule response: %w", err)
	}

	return &schedule, nil
}

// Update implements circleci.SchedulesClient.Update
func (c *SchedulesClient) Update(ctx context.Context, scheduleID string, req *circleci.UpdateScheduleRequest) (*circleci.Schedule, error) {
	path := fmt.Sprintf("/schedule/%s", circleci.EscapePathSegment(scheduleID))

	resp, err := c.requester.Patch(ctx, circleci.APIVersionV2, path, req)
	if err != nil {
		return nil, fmt.Errorf("updating schedule: %w", err)
	}

	var schedule circleci.Schedule
	if err := decode(resp.Body, &schedule); err != nil {
		return nil, fmt.Errorf("parsing schedule response: %w", err)
	}

	return &schedule, nil
}

// Delete implements circleci.SchedulesClient.Delete
func (c *SchedulesClient) Delete(ctx context.Context, scheduleID string) (*circleci.MessageResponse, error) {
	path := fmt.Sprintf("/schedule/%s", circleci.EscapePathSegment(scheduleID))

	resp, err := c.requester.Delete(ctx, circleci.APIVersionV2, path)
	if err != nil {
		return nil, fmt.Errorf("deleting schedule: %w", err)
	}

	var message circleci.MessageResponse
	if err := decode(resp.Body, &message); err != nil {
		return nil, fmt.Errorf("parsing delete response: %w", err)
	}

	return &message, nil
}
