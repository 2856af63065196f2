package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// UsersClient implements circleci.UsersClient
type UsersClient struct {
	requester *Requester
}

// NewUsersClient creates a new users client
func NewUsersClient(requester *Requester) *UsersClient {
	return &UsersClient{
		requester: requester,
	}
}

// Me implements circleci.UsersClient.Me
func (c *UsersClient) Me(ctx context.Context) (*circleci.User, error) {
	resp, err := c.requester.Get(ctx, circleci.APIVersionV1, "/me", nil)
	if err != nil {
		return nil, fmt.Errorf("getting user info: %w", err)
	}

	var user circleci.User
	if err := decode(resp.Body, &user); err != nil {
		return nil, fmt.Errorf("parsing user response: %w", err)
	}

	return &user, nil
}

// Get implements circleci.UsersClient.Get
func (c *UsersClient) Get(ctx context.Context, userID string) (*circleci.User, error) {
	path := fmt.Sprintf("/user/%s", circleci.EscapePathSegment(userID))

	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	var user circleci.User
	if err := decode(resp.Body, &user); err != nil {
		return nil, fmt.Errorf("parsing user response: %w", err)
	}

	return &user, nil
}

// Collaborations implements circleci.UsersClient.Collaborations
func (c *UsersClient) Collaborations(ctx context.Context) ([]circleci.Collaboration, error) {
	resp, err := c.requester.Get(ctx, circleci.APIVersionV2, "/me/collaborations", nil)
	if err != nil {
		return nil, fmt.Errorf("getting collaborations: %w", err)
	}

	var collaborations []circleci.Collaboration
	if err := decode(resp.Body, &collaborations); err != nil {
		return nil, fmt.Errorf("parsing collaborations response: %w", err)
	}

	return collaborations, nil
}

// Repos implements circleci.UsersClient.Repos
func (c *UsersClient) Repos(ctx context.Context, vcsType string, opts *circleci.PageOptions) ([]circleci.Repo, error) {
	path := fmt.Sprintf("/user/repos/%s", circleci.EscapePathSegment(vcsType))

	limit := 0
	if opts != nil {
		limit = opts.Limit
	}

	return circleci.FetchAllOffset(ctx, func(ctx context.Context, page, perPage int) ([]circleci.Repo, error) {
		query := url.Values{}
		query.Set("per-page", strconv.Itoa(perPage))

		// The first page is implicit; only follow-up requests carry the
		// page parameter.
		if page > 1 {
			query.Set("page", strconv.Itoa(page))
		}

		resp, err := c.requester.Get(ctx, circleci.APIVersionV1, path, query)
		if err != nil {
			return nil, fmt.Errorf("listing repos: %w", err)
		}

		var repos []circleci.Repo
		if err := decode(resp.Body, &repos); err != nil {
			return nil, fmt.Errorf("parsing repos response: %w", err)
		}

		return repos, nil
	}, limit)
}
