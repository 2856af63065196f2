package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewJobsCommand(t *testing.T) {
	cmd := NewJobsCommand()
	assert.Equal(t, "jobs", cmd.Use)
	assert.Equal(t, []string{"job"}, cmd.Aliases)
	assert.Equal(t, "Manage jobs", cmd.Short)

	// Check subcommands are added
	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 2)

	var commandNames []string
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "cancel")
}

func TestJobsGetCommand(t *testing.T) {
	cmd := newJobsGetCommand()
	assert.Equal(t, "get PROJECT JOB_NUM", cmd.Use)
	assert.Equal(t, "Get job details", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestJobsCancelCommand(t *testing.T) {
	cmd := newJobsCancelCommand()
	assert.Equal(t, "cancel PROJECT JOB_NUM", cmd.Use)
	assert.Equal(t, "Cancel a job", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestResolveJobArgs(t *testing.T) {
	slug, jobNumber, err := resolveJobArgs([]string{"my-org/my-repo", "42"})
	assert.NoError(t, err)
	assert.Equal(t, "github/my-org/my-repo", slug)
	assert.Equal(t, 42, jobNumber)

	_, _, err = resolveJobArgs([]string{"my-org/my-repo", "not-a-number"})
	assert.Error(t, err)

	_, _, err = resolveJobArgs([]string{"not-a-slug", "42"})
	assert.Error(t, err)
}
