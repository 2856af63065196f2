package constants

import "errors"

// Configuration errors.
var (
	ErrNoTokenConfigured = errors.New("no API token configured, set CIRCLE_TOKEN or run 'cci login'")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
	ErrTokenCannotUnset  = errors.New("token cannot be unset via config command, use 'cci config set token \"\"'")
	ErrInvalidOutput     = errors.New("invalid output format, valid values are: json, yaml, table")
)

// Validation errors.
var (
	ErrArtifactURLRequired = errors.New("artifact URL is required")
	ErrEmptyArtifactName   = errors.New("could not derive a file name from the artifact URL")
	ErrKeyValueFormat      = errors.New("expected key=value format")
)

// File system errors.
var (
	ErrNotRegularFile             = errors.New("path is not a regular file")
	ErrDirectoryTraversalDetected = errors.New("directory traversal detected in file path")
)
