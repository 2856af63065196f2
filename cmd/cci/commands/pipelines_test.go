package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/circleci-client/cmd/cci/commands"
	"github.com/stretchr/testify/assert"
)

func TestNewPipelinesCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewPipelinesCommand()
	assert.Equal(t, "pipelines", cmd.Use)
	assert.Equal(t, []string{"pipeline"}, cmd.Aliases)
	assert.Equal(t, "Manage pipelines", cmd.Short)

	// Check subcommands are added
	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 7)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "org")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "trigger")
	assert.Contains(t, commandNames, "config")
	assert.Contains(t, commandNames, "workflows")
	assert.Contains(t, commandNames, "continue")
}

func TestPipelinesListCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewPipelinesCommand()
	cmd := findSubcommand(root, "list")
	assert.Equal(t, "list PROJECT", cmd.Use)
	assert.Equal(t, "List project pipelines", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("branch"))
	assert.NotNil(t, cmd.Flags().Lookup("all"))
	assert.NotNil(t, cmd.Flags().Lookup("limit"))

	allFlag := cmd.Flags().Lookup("all")
	assert.Equal(t, "false", allFlag.DefValue)
}

func TestPipelinesGetCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewPipelinesCommand()
	cmd := findSubcommand(root, "get")
	assert.Equal(t, "get PIPELINE_ID_OR_NUMBER", cmd.Use)
	assert.Equal(t, "Get pipeline details", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
	assert.NotNil(t, cmd.Flags().Lookup("project"))
}

func TestPipelinesTriggerCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewPipelinesCommand()
	cmd := findSubcommand(root, "trigger")
	assert.Equal(t, "trigger PROJECT", cmd.Use)
	assert.Equal(t, "Trigger a pipeline", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("branch"))
	assert.NotNil(t, cmd.Flags().Lookup("tag"))
	assert.NotNil(t, cmd.Flags().Lookup("param"))
}

func TestPipelinesConfigCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewPipelinesCommand()
	cmd := findSubcommand(root, "config")
	assert.Equal(t, "config PIPELINE_ID", cmd.Use)
	assert.Equal(t, "Show pipeline configuration", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	compiledFlag := cmd.Flags().Lookup("compiled")
	assert.NotNil(t, compiledFlag)
	assert.Equal(t, "false", compiledFlag.DefValue)
}

func TestPipelinesContinueCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewPipelinesCommand()
	cmd := findSubcommand(root, "continue")
	assert.Equal(t, "continue", cmd.Use)
	assert.Equal(t, "Continue a setup pipeline", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("continuation-key"))
	assert.NotNil(t, cmd.Flags().Lookup("config-file"))
	assert.NotNil(t, cmd.Flags().Lookup("param"))
}
