package auth_test

import (
	"context"
	"testing"

	"github.com/fivetwenty-io/circleci-client/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_Token(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{
			name:     "plain token",
			token:    "test-token",
			expected: "test-token",
		},
		{
			name:     "token with surrounding whitespace",
			token:    "  test-token\n",
			expected: "test-token",
		},
		{
			name:     "empty token",
			token:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider := auth.NewStatic(tt.token)
			token, err := provider.Token(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}

func TestEnv_Token(t *testing.T) {
	t.Run("reads configured variable", func(t *testing.T) {
		t.Setenv("TEST_CIRCLE_TOKEN", "env-token")

		provider := auth.NewEnv("TEST_CIRCLE_TOKEN")
		token, err := provider.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "env-token", token)
	})

	t.Run("defaults to CIRCLE_TOKEN", func(t *testing.T) {
		t.Setenv("CIRCLE_TOKEN", "default-env-token")

		provider := auth.NewEnv("")
		token, err := provider.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "default-env-token", token)
	})

	t.Run("unset variable yields empty token", func(t *testing.T) {
		t.Setenv("TEST_CIRCLE_TOKEN", "")

		provider := auth.NewEnv("TEST_CIRCLE_TOKEN")
		token, err := provider.Token(context.Background())
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("follows rotation between calls", func(t *testing.T) {
		t.Setenv("TEST_CIRCLE_TOKEN", "first-token")

		provider := auth.NewEnv("TEST_CIRCLE_TOKEN")
		token, err := provider.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "first-token", token)

		t.Setenv("TEST_CIRCLE_TOKEN", "second-token")

		token, err = provider.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "second-token", token)
	})
}
