package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInsightsCommand(t *testing.T) {
	cmd := NewInsightsCommand()
	assert.Equal(t, "insights", cmd.Use)
	assert.Equal(t, "View project insights", cmd.Short)

	// Check subcommands are added
	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 6)

	var commandNames []string
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "branches")
	assert.Contains(t, commandNames, "workflows")
	assert.Contains(t, commandNames, "workflow-runs")
	assert.Contains(t, commandNames, "jobs")
	assert.Contains(t, commandNames, "job-runs")
	assert.Contains(t, commandNames, "test-metrics")
}

func TestInsightsWorkflowsCommand(t *testing.T) {
	cmd := newInsightsWorkflowsCommand()
	assert.Equal(t, "workflows PROJECT", cmd.Use)
	assert.Equal(t, "Show workflow metrics", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	// Check flags
	flags := []string{"branch", "all-branches", "reporting-window", "all"}
	for _, flagName := range flags {
		flag := cmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "Flag %s should exist", flagName)
	}
}

func TestInsightsWorkflowRunsCommand(t *testing.T) {
	cmd := newInsightsWorkflowRunsCommand()
	assert.Equal(t, "workflow-runs PROJECT WORKFLOW", cmd.Use)
	assert.Equal(t, "List recent workflow runs", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("branch"))
	assert.NotNil(t, cmd.Flags().Lookup("start"))
	assert.NotNil(t, cmd.Flags().Lookup("end"))
}

func TestInsightsJobRunsCommand(t *testing.T) {
	cmd := newInsightsJobRunsCommand()
	assert.Equal(t, "job-runs PROJECT WORKFLOW JOB", cmd.Use)
	assert.Equal(t, "List recent job runs", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestInsightsTestMetricsCommand(t *testing.T) {
	cmd := newInsightsTestMetricsCommand()
	assert.Equal(t, "test-metrics PROJECT WORKFLOW", cmd.Use)
	assert.Equal(t, "Show test metrics", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
	assert.NotNil(t, cmd.Flags().Lookup("branch"))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "92.5%", formatPercent(0.925))
	assert.Equal(t, "0.0%", formatPercent(0))
	assert.Equal(t, "100.0%", formatPercent(1))
}
