//nolint:testpackage // Need access to internal types
package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProject(t *testing.T) {
	t.Run("org/repo uses default VCS", func(t *testing.T) {
		vcsType, org, repo, err := resolveProject("acme/widget")
		require.NoError(t, err)
		assert.Equal(t, circleci.VCSGitHub, vcsType)
		assert.Equal(t, "acme", org)
		assert.Equal(t, "widget", repo)
	})

	t.Run("org/repo uses configured VCS", func(t *testing.T) {
		previous := viper.GetString("vcs")
		viper.Set("vcs", circleci.VCSBitbucket)
		t.Cleanup(func() { viper.Set("vcs", previous) })

		vcsType, _, _, err := resolveProject("acme/widget")
		require.NoError(t, err)
		assert.Equal(t, circleci.VCSBitbucket, vcsType)
	})

	t.Run("full slug passes through", func(t *testing.T) {
		vcsType, org, repo, err := resolveProject("gh/acme/widget")
		require.NoError(t, err)
		assert.Equal(t, "gh", vcsType)
		assert.Equal(t, "acme", org)
		assert.Equal(t, "widget", repo)
	})

	t.Run("invalid argument", func(t *testing.T) {
		_, _, _, err := resolveProject("just-a-name")
		assert.ErrorIs(t, err, circleci.ErrInvalidProjectSlug)
	})
}

func TestResolveProjectSlug(t *testing.T) {
	slug, err := resolveProjectSlug("acme/widget")
	require.NoError(t, err)
	assert.Equal(t, "github/acme/widget", slug)

	slug, err = resolveProjectSlug("bitbucket/acme/widget")
	require.NoError(t, err)
	assert.Equal(t, "bitbucket/acme/widget", slug)
}

func TestParseKeyValues(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		params, err := parseKeyValues(nil)
		require.NoError(t, err)
		assert.Nil(t, params)
	})

	t.Run("typed values", func(t *testing.T) {
		params, err := parseKeyValues([]string{"deploy=true", "workers=4", "env=staging"})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"deploy":  true,
			"workers": 4,
			"env":     "staging",
		}, params)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := parseKeyValues([]string{"no-separator"})
		assert.ErrorIs(t, err, constants.ErrKeyValueFormat)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := parseKeyValues([]string{"=value"})
		assert.ErrorIs(t, err, constants.ErrKeyValueFormat)
	})

	t.Run("empty value stays a string", func(t *testing.T) {
		params, err := parseKeyValues([]string{"flag="})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"flag": ""}, params)
	})
}

func TestCoerceValue(t *testing.T) {
	assert.Equal(t, true, coerceValue("true"))
	assert.Equal(t, false, coerceValue("false"))
	assert.Equal(t, 42, coerceValue("42"))
	assert.Equal(t, -7, coerceValue("-7"))
	assert.Equal(t, "staging", coerceValue("staging"))
	assert.Equal(t, "3.14", coerceValue("3.14"))

	// strconv.ParseBool wins over Atoi for 0 and 1
	assert.Equal(t, true, coerceValue("1"))
	assert.Equal(t, false, coerceValue("0"))
}

func TestReadFileArgument(t *testing.T) {
	t.Run("reads a regular file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "key.pem")
		require.NoError(t, os.WriteFile(path, []byte("secret key material"), 0o600))

		data, err := readFileArgument(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("secret key material"), data)
	})

	t.Run("rejects traversal", func(t *testing.T) {
		_, err := readFileArgument("../etc/passwd")
		assert.ErrorIs(t, err, constants.ErrDirectoryTraversalDetected)
	})

	t.Run("rejects directories", func(t *testing.T) {
		_, err := readFileArgument(t.TempDir())
		assert.ErrorIs(t, err, constants.ErrNotRegularFile)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readFileArgument(filepath.Join(t.TempDir(), "absent"))
		assert.Error(t, err)
	})
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, NotAvailable, formatTime(nil))

	zero := time.Time{}
	assert.Equal(t, NotAvailable, formatTime(&zero))

	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15 10:30", formatTime(&ts))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, NotAvailable, formatDate(time.Time{}))
	assert.Equal(t, "2024-03-15", formatDate(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)))
}

func TestFormatDurationSeconds(t *testing.T) {
	assert.Equal(t, NotAvailable, formatDurationSeconds(0))
	assert.Equal(t, NotAvailable, formatDurationSeconds(-1))
	assert.Equal(t, "45s", formatDurationSeconds(45))
	assert.Equal(t, "1m30s", formatDurationSeconds(90))
}

func TestFormatDurationMillis(t *testing.T) {
	assert.Equal(t, NotAvailable, formatDurationMillis(0))
	assert.Equal(t, "1s", formatDurationMillis(1000))
	assert.Equal(t, "2m5s", formatDurationMillis(125300))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefghij", 8))
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "abcdefghij", truncate("abcdefghij", 10))
}

func TestOrNA(t *testing.T) {
	assert.Equal(t, NotAvailable, orNA(""))
	assert.Equal(t, "value", orNA("value"))
}

func TestCreateClientWithoutToken(t *testing.T) {
	previous := viper.GetString("token")
	viper.Set("token", "")
	t.Cleanup(func() { viper.Set("token", previous) })

	_, err := CreateClient(context.Background())
	assert.ErrorIs(t, err, constants.ErrNoTokenConfigured)
}

func TestCreateClientWithToken(t *testing.T) {
	previous := viper.GetString("token")
	viper.Set("token", "test-token")
	t.Cleanup(func() { viper.Set("token", previous) })

	client, err := CreateClient(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, client)
}
