package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/circleci-client/cmd/cci/commands"
	"github.com/stretchr/testify/assert"
)

func TestNewContextsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewContextsCommand()
	assert.Equal(t, "contexts", cmd.Use)
	assert.Equal(t, []string{"context"}, cmd.Aliases)
	assert.Equal(t, "Manage contexts", cmd.Short)
	assert.Equal(t, "List, create, and delete contexts and their environment variables", cmd.Long)

	// Check subcommands are added
	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 5)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "create")
	assert.Contains(t, commandNames, "delete")
	assert.Contains(t, commandNames, "env")
}

func TestContextsListCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewContextsCommand()
	cmd := findSubcommand(root, "list")
	assert.Equal(t, "list", cmd.Use)
	assert.Equal(t, "List contexts", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	for _, flagName := range []string{"owner-slug", "owner-id", "owner-type", "all"} {
		flag := cmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "Flag %s should exist", flagName)
	}
}

func TestContextsCreateCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewContextsCommand()
	cmd := findSubcommand(root, "create")
	assert.Equal(t, "create NAME", cmd.Use)
	assert.Equal(t, "Create a context", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("owner-slug"))
	assert.NotNil(t, cmd.Flags().Lookup("owner-id"))
	assert.NotNil(t, cmd.Flags().Lookup("owner-type"))
}

func TestContextsEnvCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewContextsCommand()
	cmd := findSubcommand(root, "env")
	assert.Equal(t, "env", cmd.Use)
	assert.Equal(t, "Manage context environment variables", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 3)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "set")
	assert.Contains(t, commandNames, "delete")

	set := findSubcommand(cmd, "set")
	assert.Equal(t, "set CONTEXT_ID NAME [VALUE]", set.Use)
	assert.NotNil(t, set.Args)
}
