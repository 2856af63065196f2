package circleci

import (
	"fmt"
	"strings"
)

// APIVersion selects the path prefix for a request, either the legacy v1.1
// API or the current v2 API.
type APIVersion string

const (
	// APIVersionV1 is the legacy v1.1 API.
	APIVersionV1 APIVersion = "v1.1"

	// APIVersionV2 is the current v2 API.
	APIVersionV2 APIVersion = "v2"
)

// String returns the version as it appears in request paths.
func (v APIVersion) String() string {
	return string(v)
}

// ParseAPIVersion normalizes a version value. The empty string defaults to
// v1.1. Accepted v1.1 spellings are "v1.1", "v1", "1.1", "1", and "1.0";
// accepted v2 spellings are "v2", "2", and "2.0".
func ParseAPIVersion(value string) (APIVersion, error) {
	switch strings.ToLower(value) {
	case "", "v1.1", "v1", "1.1", "1", "1.0":
		return APIVersionV1, nil
	case "v2", "2", "2.0":
		return APIVersionV2, nil
	default:
		return "", fmt.Errorf("%w: %q (valid values: %s, %s)", ErrInvalidAPIVersion, value, APIVersionV1, APIVersionV2)
	}
}

// VCS provider identifiers used in project and owner slugs.
const (
	// VCSGitHub identifies GitHub-hosted projects.
	VCSGitHub = "github"

	// VCSBitbucket identifies Bitbucket-hosted projects.
	VCSBitbucket = "bitbucket"

	// VCSGitHubShort is the abbreviated GitHub slug prefix.
	VCSGitHubShort = "gh"

	// VCSBitbucketShort is the abbreviated Bitbucket slug prefix.
	VCSBitbucketShort = "bb"
)

// Context owner types accepted by the v2 context endpoints.
const (
	// OwnerTypeOrganization scopes a context to an organization.
	OwnerTypeOrganization = "organization"

	// OwnerTypeAccount scopes a context to an account.
	OwnerTypeAccount = "account"
)

// ValidateOwnerType checks a context owner type value.
func ValidateOwnerType(ownerType string) error {
	switch ownerType {
	case OwnerTypeOrganization, OwnerTypeAccount:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid values: %s, %s)",
			ErrInvalidOwnerType, ownerType, OwnerTypeOrganization, OwnerTypeAccount)
	}
}

// Build status filters accepted by the v1.1 build summary endpoint.
const (
	StatusFilterCompleted  = "completed"
	StatusFilterSuccessful = "successful"
	StatusFilterFailed     = "failed"
	StatusFilterRunning    = "running"
)

// ValidateStatusFilter checks a build summary status filter. The empty
// string means no filtering.
func ValidateStatusFilter(filter string) error {
	switch filter {
	case "", StatusFilterCompleted, StatusFilterSuccessful, StatusFilterFailed, StatusFilterRunning:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid values: %s, %s, %s, %s)", ErrInvalidStatusFilter, filter,
			StatusFilterCompleted, StatusFilterSuccessful, StatusFilterFailed, StatusFilterRunning)
	}
}

// ValidateArtifactFilter checks the latest-artifacts status filter, which
// does not accept "running".
func ValidateArtifactFilter(filter string) error {
	switch filter {
	case StatusFilterCompleted, StatusFilterSuccessful, StatusFilterFailed:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid values: %s, %s, %s)", ErrInvalidStatusFilter, filter,
			StatusFilterCompleted, StatusFilterSuccessful, StatusFilterFailed)
	}
}

// Checkout key types accepted by the v1.1 checkout key endpoints.
const (
	// CheckoutKeyDeploy is a per-project deploy key.
	CheckoutKeyDeploy = "deploy-key"

	// CheckoutKeyGithubUser is a GitHub user key.
	CheckoutKeyGithubUser = "github-user-key"
)

// ValidateCheckoutKeyType checks a checkout key type value.
func ValidateCheckoutKeyType(keyType string) error {
	switch keyType {
	case CheckoutKeyDeploy, CheckoutKeyGithubUser:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid values: %s, %s)",
			ErrInvalidKeyType, keyType, CheckoutKeyDeploy, CheckoutKeyGithubUser)
	}
}
