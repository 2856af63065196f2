package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWorkflowsCommand(t *testing.T) {
	cmd := NewWorkflowsCommand()
	assert.Equal(t, "workflows", cmd.Use)
	assert.Equal(t, []string{"workflow"}, cmd.Aliases)
	assert.Equal(t, "Manage workflows", cmd.Short)

	// Check subcommands are added
	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 5)

	var commandNames []string
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "jobs")
	assert.Contains(t, commandNames, "cancel")
	assert.Contains(t, commandNames, "rerun")
	assert.Contains(t, commandNames, "approve")
}

func TestWorkflowsGetCommand(t *testing.T) {
	cmd := newWorkflowsGetCommand()
	assert.Equal(t, "get WORKFLOW_ID", cmd.Use)
	assert.Equal(t, "Get workflow details", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestWorkflowsJobsCommand(t *testing.T) {
	cmd := newWorkflowsJobsCommand()
	assert.Equal(t, "jobs WORKFLOW_ID", cmd.Use)
	assert.Equal(t, "List workflow jobs", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	allFlag := cmd.Flags().Lookup("all")
	assert.NotNil(t, allFlag)
	assert.Equal(t, "false", allFlag.DefValue)
}

func TestWorkflowsRerunCommand(t *testing.T) {
	cmd := newWorkflowsRerunCommand()
	assert.Equal(t, "rerun WORKFLOW_ID", cmd.Use)
	assert.Equal(t, "Rerun a workflow", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	// Check flags
	flags := []string{"from-failed", "job", "sparse-tree", "enable-ssh"}
	for _, flagName := range flags {
		flag := cmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "Flag %s should exist", flagName)
	}
}

func TestWorkflowsApproveCommand(t *testing.T) {
	cmd := newWorkflowsApproveCommand()
	assert.Equal(t, "approve WORKFLOW_ID APPROVAL_REQUEST_ID", cmd.Use)
	assert.Equal(t, "Approve a workflow job", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}
