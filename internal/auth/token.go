package auth

import (
	"context"
	"os"
	"strings"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
)

// Provider supplies the API token attached to outgoing requests.
// Implementations must be safe for concurrent use.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// Static provides a fixed personal API token.
type Static struct {
	token string
}

// NewStatic creates a provider that always returns the given token.
// Surrounding whitespace is trimmed, matching how tokens are usually pasted
// from the CircleCI UI.
func NewStatic(token string) *Static {
	return &Static{token: strings.TrimSpace(token)}
}

// Token implements Provider.
func (p *Static) Token(_ context.Context) (string, error) {
	return p.token, nil
}

// Env reads the token from an environment variable on every call, so
// long-lived processes pick up rotated tokens without a restart.
type Env struct {
	key string
}

// NewEnv creates a provider backed by the given environment variable. An
// empty key falls back to CIRCLE_TOKEN.
func NewEnv(key string) *Env {
	if key == "" {
		key = constants.EnvToken
	}

	return &Env{key: key}
}

// Token implements Provider.
func (p *Env) Token(_ context.Context) (string, error) {
	return strings.TrimSpace(os.Getenv(p.key)), nil
}
