package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
	"github.com/fivetwenty-io/circleci-client/pkg/cciclient"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Display formatting.
	timestampFormat = "2006-01-02 15:04"
	dateFormat      = "2006-01-02"
)

// StandardJSONRenderer writes data to stdout as indented JSON.
func StandardJSONRenderer[T any](data T) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes data to stdout as YAML.
func StandardYAMLRenderer[T any](data T) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}

// renderOutput dispatches on the configured output format, falling back to
// the given table renderer.
func renderOutput[T any](data T, renderTable func() error) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		return StandardJSONRenderer(data)
	case constants.FormatYAML:
		return StandardYAMLRenderer(data)
	default:
		return renderTable()
	}
}

// stderrLogger adapts the verbose flag to the client's structured logger.
type stderrLogger struct{}

func (stderrLogger) log(level, msg string, fields map[string]interface{}) {
	var sb strings.Builder

	sb.WriteString(level)
	sb.WriteString(" ")
	sb.WriteString(msg)

	for key, value := range fields {
		fmt.Fprintf(&sb, " %s=%v", key, value)
	}

	fmt.Fprintln(os.Stderr, sb.String())
}

func (l stderrLogger) Debug(msg string, fields map[string]interface{}) { l.log("DEBUG", msg, fields) }
func (l stderrLogger) Info(msg string, fields map[string]interface{})  { l.log("INFO", msg, fields) }
func (l stderrLogger) Warn(msg string, fields map[string]interface{})  { l.log("WARN", msg, fields) }
func (l stderrLogger) Error(msg string, fields map[string]interface{}) { l.log("ERROR", msg, fields) }

// CreateClient builds an API client from the resolved configuration. A
// missing token is reported with a pointer at login rather than the raw
// configuration error.
func CreateClient(ctx context.Context) (circleci.Client, error) {
	token := strings.TrimSpace(viper.GetString("token"))
	if token == "" {
		return nil, constants.ErrNoTokenConfigured
	}

	config := &circleci.Config{
		BaseURL: viper.GetString("api_url"),
		Token:   token,
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = stderrLogger{}
	}

	client, err := cciclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// resolveProject splits a PROJECT argument into vcs-type, org, and repo.
// Both "org/repo" (using the configured default VCS) and full
// "vcs-type/org/repo" slugs are accepted.
func resolveProject(arg string) (string, string, string, error) {
	parts := strings.Split(arg, "/")

	const orgRepoParts = 2
	if len(parts) == orgRepoParts && parts[0] != "" && parts[1] != "" {
		vcsType := viper.GetString("vcs")
		if vcsType == "" {
			vcsType = circleci.VCSGitHub
		}

		return vcsType, parts[0], parts[1], nil
	}

	return circleci.SplitProjectSlug(arg)
}

// resolveProjectSlug returns the full vcs-type/org/repo slug for a PROJECT
// argument.
func resolveProjectSlug(arg string) (string, error) {
	vcsType, org, repo, err := resolveProject(arg)
	if err != nil {
		return "", err
	}

	return circleci.ProjectSlug(vcsType, org, repo), nil
}

// parseKeyValues parses repeated key=value flags into a parameter map.
// Values that look like booleans or integers are converted, since pipeline
// parameters are typed.
func parseKeyValues(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(map[string]interface{}, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrKeyValueFormat, pair)
		}

		params[key] = coerceValue(value)
	}

	return params, nil
}

// coerceValue converts flag strings to the closest JSON type.
func coerceValue(value string) interface{} {
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed
	}

	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}

	return value
}

// readFileArgument reads a file passed on the command line, rejecting
// suspicious paths.
func readFileArgument(path string) ([]byte, error) {
	if strings.Contains(path, "..") {
		return nil, fmt.Errorf("%w: %q", constants.ErrDirectoryTraversalDetected, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %q", constants.ErrNotRegularFile, path)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// formatTime formats an optional timestamp for table cells.
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}

	return t.Format(timestampFormat)
}

// formatDate formats a timestamp as a date for table cells.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}

	return t.Format(dateFormat)
}

// formatDurationSeconds renders a duration reported in seconds.
func formatDurationSeconds(seconds int64) string {
	if seconds <= 0 {
		return NotAvailable
	}

	return (time.Duration(seconds) * time.Second).String()
}

// formatDurationMillis renders a duration reported in milliseconds.
func formatDurationMillis(millis int64) string {
	if millis <= 0 {
		return NotAvailable
	}

	return (time.Duration(millis) * time.Millisecond).Round(time.Second).String()
}

// truncate shortens long cell values so tables stay readable.
func truncate(s string, limit int) string {
	if limit <= 3 || len(s) <= limit {
		return s
	}

	return s[:limit-3] + "..."
}

// orNA substitutes N/A for empty cell values.
func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}

	return s
}
