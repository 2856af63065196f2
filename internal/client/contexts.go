package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// ContextsClient implements circleci.ContextsClient
type ContextsClient struct {
	requester *Requester
}

// NewContextsClient creates a new contexts client
func NewContextsClient(requester *Requester) *ContextsClient {
	return &ContextsClient{
		requester: requester,
	}
}

// requireOwner checks that a context listing carries an owner filter, since
// the API rejects listings without one.
func requireOwner(params *circleci.QueryParams) error {
	if params == nil || (params.OwnerSlug == "" && params.OwnerID == "") {
		return circleci.ErrOwnerRequired
	}

	return nil
}

// List implements circleci.ContextsClient.List
func (c *ContextsClient) List(ctx context.Context, params *circleci.QueryParams) (*circleci.ListResponse[circleci.Context], error) {
	if err := requireOwner(params); err != nil {
		return nil, err
	}

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, "/context", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing contexts: %w", err)
	}

	var result circleci.ListResponse[circleci.Context]
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing contexts list response: %w", err)
	}

	return &result, nil
}

// ListAll implements circleci.ContextsClient.ListAll
func (c *ContextsClient) ListAll(ctx context.Context, params *circleci.QueryParams, opts *circleci.PageOptions) ([]circleci.Context, error) {
	if err := requireOwner(params); err != nil {
		return nil, err
	}

	return circleci.FetchAll(ctx, func(ctx context.Context, pageToken string) (*circleci.ListResponse[circleci.Context], error) {
		resp, err := c.requester.Get(ctx, circleci.APIVersionV2, "/context", pageQuery(params, pageToken))
		if err != nil {
			return nil, fmt.Errorf("listing contexts: %w", err)
		}

		var result circleci.ListResponse[circleci.Context]
		if err := decode(resp.Body, &result); err != nil {
			return nil, fmt.Errorf("parsing contexts list response: %w", err)
		}

		return &result, nil
	}, opts)
}

// Get implements circleci.ContextsClient.Get
func (c *ContextsClient) Get(ctx context.Context, contextID string) (*circleci.Context, error) {
	path := fmt.Sprintf("/context/%s", circleci.EscapePathSegment(contextID))

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting context: %w", err)
	}

	var result circleci.Context
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing context response: %w", err)
	}

	return &result, nil
}

// Create implements circleci.ContextsClient.Create
func (c *ContextsClient) Create(ctx context.Context, req *circleci.CreateContextRequest) (*circleci.Context, error) {
	if req != nil && req.Owner.Type != "" {
		if err := circleci.ValidateOwnerType(req.Owner.Type); err != nil {
			return nil, err
		}
	}

	resp, err := c.requester.Post(ctx, circleci.APIVersionV2, "/context", req)
	if err != nil {
		return nil, fmt.Errorf("creating context: %w", err)
	}

	var result circleci.Context
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing context response: %w", err)
	}

	return &result, nil
}

// Delete implements circleci.ContextsClient.Delete
func (c *ContextsClient) Delete(ctx context.Context, contextID string) (*circleci.MessageResponse, error) {
	path := fmt.Sprintf("/context/%s", circleci.EscapePathSegment(contextID))

	resp, err := c.requester.Delete(ctx, circleci.APIVersionV2, path)
	if err != nil {
		return nil, fmt.Errorf("deleting context: %w", err)
	}

	var message circleci.MessageResponse
	if err := decode(resp.Body, &message); err != nil {
		return nil, fmt.Errorf("parsing delete response: %w", err)
	}

	return &message, nil
}

// ListEnvVars implements circleci.ContextsClient.ListEnvVars
func (c *ContextsClient) ListEnvVars(ctx context.Context, contextID string, params *circleci.QueryParams) (*circleci.ListResponse[circleci.ContextEnvVar], error) {
	path := fmt.Sprintf("/context/%s/environment-variable", circleci.EscapePathSegment(contextID))

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing context environment variables: %w", err)
	}

	var result circleci.ListResponse[circleci.ContextEnvVar]
	if err := decode(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing context environment variables response: %w", err)
	}

	return &result, nil
}

// AddEnvVar implements circleci.ContextsClient.AddEnvVar
func (c *ContextsClient) AddEnvVar(ctx context.Context, contextID, name, value string) (*circleci.ContextEnvVar, error) {
	path := fmt.Sprintf("/context/%s/environment-variable/%s",
		circleci.EscapePathSegment(contextID),
		circleci.EscapePathSegment(name))

	resp, err := c.requester.Put(ctx, circleci.APIVersionV2, path, map[string]string{"value": value})
	if err != nil {
		return nil, fmt.Errorf("adding context environment variable: %w", err)
	}

	var envVar circleci.ContextEnvVar
	if err := decode(resp.Body, &envVar); err != nil {
		return nil, fmt.Errorf("parsing context environment variable response: %w", err)
	}

	return &envVar, nil
}

// DeleteEnvVar implements circleci.ContextsClient.DeleteEnvVar
func (c *ContextsClient) DeleteEnvVar(ctx context.Context, contextID, name string) (*circleci.MessageResponse, error) {
	path := fmt.Sprintf("/context/%s/environment-variable/%s",
		circleci.EscapePathSegment(contextID),
		circleci.EscapePathSegment(name))

	resp, err := c.requester.Delete(ctx, circleci.APIVersionV2, path)
	if err != nil {
		return nil, fmt.Errorf("deleting context environment variable: %w", err)
	}

	var message circleci.MessageResponse
	if err := decode(resp.Body, &message); err != nil {
		return nil, fmt.Errorf("parsing delete response: %w", err)
	}

	return &message, nil
}
