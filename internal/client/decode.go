package client

import (
	"encoding/json"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
)

// decode unmarshals a JSON response body into v. Failures carry a short
// body snippet so the offending payload shows up in error messages.
func decode(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &circleci.ParseError{Err: err, Snippet: bodySnippet(body)}
	}

	return nil
}

// bodySnippet truncates a body for inclusion in an error message.
func bodySnippet(body []byte) string {
	if len(body) > constants.StringTruncationLength {
		return string(body[:constants.StringTruncationLength]) + "..."
	}

	return string(body)
}
