//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	APIEndpoint string
	Token       string
	ProjectSlug string
	CciPath     string
	Verbose     bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint: os.Getenv("CIRCLE_API_URL"),
		Token:       os.Getenv("CIRCLE_TOKEN"),
		ProjectSlug: os.Getenv("CCI_TEST_PROJECT"),
		CciPath:     getCciPath(),
		Verbose:     os.Getenv("CCI_VERBOSE") == "true",
	}
}

// getCciPath determines the path to the cci binary
func getCciPath() string {
	if path := os.Getenv("CCI_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../cci",
		"./cci",
		"../cci",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "cci" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	if config.Token == "" {
		t.Skip("CIRCLE_TOKEN not set, skipping integration test")
	}

	if _, err := os.Stat(config.CciPath); os.IsNotExist(err) {
		t.Skipf("cci binary not found at %s, skipping integration test", config.CciPath)
	}
}

// SkipIfMissingProject skips test if no test project slug is configured
func (config *TestConfig) SkipIfMissingProject(t *testing.T) {
	if config.ProjectSlug == "" {
		t.Skip("CCI_TEST_PROJECT not set, skipping project-scoped integration test")
	}
}

// CommandRunner provides utilities for running cci commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// globalArgs returns flags applied to every invocation. The token itself is
// inherited through the CIRCLE_TOKEN environment variable so it never shows
// up in process listings.
func (runner *CommandRunner) globalArgs() []string {
	var args []string
	if runner.config.APIEndpoint != "" {
		args = append(args, "--api-url", runner.config.APIEndpoint)
	}

	return args
}

// Run executes a cci command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	full := append(runner.globalArgs(), args...)
	cmd := exec.Command(runner.config.CciPath, full...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.CciPath, strings.Join(full, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunWithInput executes a cci command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	full := append(runner.globalArgs(), args...)
	cmd := exec.Command(runner.config.CciPath, full...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running with input: %s %s", runner.config.CciPath, strings.Join(full, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

// CleanupResource attempts to delete a test resource
func (runner *CommandRunner) CleanupResource(resourceType string, identifiers ...string) {
	var args []string
	switch resourceType {
	case "schedule":
		args = []string{"schedules", "delete"}
	case "env-var":
		args = []string{"projects", "env", "delete"}
	case "context":
		args = []string{"contexts", "delete"}
	default:
		runner.t.Logf("Unknown resource type for cleanup: %s", resourceType)
		return
	}

	args = append(args, identifiers...)

	stdout, stderr, err := runner.Run(args...)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %v: %s\nStderr: %s", resourceType, identifiers, stdout, stderr)
	}
}

// WaitForCondition waits for a condition to be met with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	// Basic JSON validation
	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

// AssertYAMLOutput verifies command output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	// Basic YAML validation
	output = strings.TrimSpace(output)
	if strings.Contains(output, "---") || strings.Contains(output, ":") {
		return // Looks like YAML
	}
	t.Errorf("Output does not appear to be YAML: %s", output)
}
