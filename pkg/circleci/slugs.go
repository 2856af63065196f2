package circleci

import (
	"fmt"
	"net/url"
	"strings"
)

// projectSlugParts is the number of segments in a project slug.
const projectSlugParts = 3

// ProjectSlug builds a project slug from its components, formatted as
// "vcs-type/org/repo".
func ProjectSlug(vcsType, org, repo string) string {
	return vcsType + "/" + org + "/" + repo
}

// OwnerSlug builds an owner slug from its components, formatted as
// "vcs-type/org".
func OwnerSlug(vcsType, org string) string {
	return vcsType + "/" + org
}

// SplitProjectSlug splits a project slug into its vcs-type, org, and repo
// components, validating the shape.
func SplitProjectSlug(slug string) (string, string, string, error) {
	parts := strings.Split(slug, "/")
	if len(parts) != projectSlugParts || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("%w: %q (expected vcs-type/org/repo)", ErrInvalidProjectSlug, slug)
	}

	return parts[0], parts[1], parts[2], nil
}

// EscapeProjectSlug percent-encodes the individual slug components for use
// in a request path. The separating slashes stay literal so the slug
// round-trips without double-encoding.
func EscapeProjectSlug(slug string) (string, error) {
	vcsType, org, repo, err := SplitProjectSlug(slug)
	if err != nil {
		return "", err
	}

	return url.PathEscape(vcsType) + "/" + url.PathEscape(org) + "/" + url.PathEscape(repo), nil
}

// EscapePathSegment percent-encodes a single path segment such as a branch
// name, fingerprint, or environment variable name.
func EscapePathSegment(segment string) string {
	return url.PathEscape(segment)
}
