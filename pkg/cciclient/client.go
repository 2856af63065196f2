// Package cciclient provides the main entry point for creating CircleCI API clients
package cciclient

import (
	"context"
	"fmt"
	"os"

	"github.com/fivetwenty-io/circleci-client/internal/auth"
	"github.com/fivetwenty-io/circleci-client/internal/client"
	"github.com/fivetwenty-io/circleci-client/internal/constants"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// New creates a new CircleCI API client from the given configuration.
//
// The endpoint in config.BaseURL is normalized before use: surrounding
// whitespace and trailing slashes are trimmed, and "https://" is prepended
// when no scheme is present. An empty BaseURL selects the public
// https://circleci.com/api endpoint. A missing token fails immediately with
// a circleci.ConfigError; no network call is attempted.
func New(ctx context.Context, config *circleci.Config) (circleci.Client, error) {
	if config == nil {
		return nil, &circleci.ConfigError{Message: "config is required", Err: circleci.ErrConfigRequired}
	}

	cli, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return cli, nil
}

// NewWithToken creates a new client for the given endpoint and personal API
// token. An empty endpoint selects the public CircleCI API.
func NewWithToken(ctx context.Context, endpoint, token string) (circleci.Client, error) {
	return New(ctx, &circleci.Config{
		BaseURL: endpoint,
		Token:   token,
	})
}

// NewFromEnv creates a new client configured from the process environment.
// The token is read from CIRCLE_TOKEN and the endpoint from CIRCLE_API_URL;
// an unset endpoint selects the public CircleCI API. The token variable is
// re-read on every request, so long-lived processes pick up rotated tokens
// without a restart.
func NewFromEnv(ctx context.Context) (circleci.Client, error) {
	config := &circleci.Config{
		BaseURL: os.Getenv(constants.EnvAPIURL),
	}

	cli, err := client.NewWithProvider(ctx, config, auth.NewEnv(constants.EnvToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create client from environment: %w", err)
	}

	return cli, nil
}

// NewWithInterceptors creates a new client whose requests and responses run
// through the given interceptor chain before and after dispatch. Cache
// interceptors configured via config.Cache are appended to the same chain.
func NewWithInterceptors(ctx context.Context, config *circleci.Config, chain *circleci.InterceptorChain) (circleci.Client, error) {
	if config == nil {
		return nil, &circleci.ConfigError{Message: "config is required", Err: circleci.ErrConfigRequired}
	}

	cli, err := client.NewWithChain(ctx, config, chain)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return cli, nil
}
