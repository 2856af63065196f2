package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewContextsCommand creates the contexts command group.
func NewContextsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contexts",
		Aliases: []string{"context"},
		Short:   "Manage contexts",
		Long:    "List, create, and delete contexts and their environment variables",
	}

	cmd.AddCommand(newContextsListCommand())
	cmd.AddCommand(newContextsGetCommand())
	cmd.AddCommand(newContextsCreateCommand())
	cmd.AddCommand(newContextsDeleteCommand())
	cmd.AddCommand(newContextsEnvCommand())

	return cmd
}

// ownerParams builds the owner query shared by context listings.
func ownerParams(ownerSlug, ownerID, ownerType string) (*circleci.QueryParams, error) {
	if ownerSlug == "" && ownerID == "" {
		return nil, circleci.ErrOwnerRequired
	}

	params := circleci.NewQueryParams()

	if ownerSlug != "" {
		params.WithOwnerSlug(ownerSlug)
	}

	if ownerID != "" {
		params.WithOwnerID(ownerID)
	}

	if ownerType != "" {
		if err := circleci.ValidateOwnerType(ownerType); err != nil {
			return nil, err
		}

		params.WithOwnerType(ownerType)
	}

	return params, nil
}

func newContextsListCommand() *cobra.Command {
	var (
		ownerSlug string
		ownerID   string
		ownerType string
		allPages  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contexts",
		Long:  "List the contexts owned by an organization or account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			params, err := ownerParams(ownerSlug, ownerID, ownerType)
			if err != nil {
				return err
			}

			ctx := context.Background()

			if allPages {
				contexts, err := client.Contexts().ListAll(ctx, params, nil)
				if err != nil {
					return fmt.Errorf("failed to list contexts: %w", err)
				}

				return outputContexts(contexts, "")
			}

			page, err := client.Contexts().List(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to list contexts: %w", err)
			}

			return outputContexts(page.Items, page.NextPageToken)
		},
	}

	cmd.Flags().StringVar(&ownerSlug, "owner-slug", "", "owner slug, e.g. github/my-org")
	cmd.Flags().StringVar(&ownerID, "owner-id", "", "owner UUID")
	cmd.Flags().StringVar(&ownerType, "owner-type", "", "owner type (organization or account)")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func outputContexts(contexts []circleci.Context, nextPageToken string) error {
	return renderOutput(contexts, func() error {
		if len(contexts) == 0 {
			_, _ = os.Stdout.WriteString("No contexts found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Name", "ID", "Created")

		for _, circleContext := range contexts {
			_ = table.Append(circleContext.Name, circleContext.ID, formatDate(circleContext.CreatedAt))
		}

		_ = table.Render()

		if nextPageToken != "" {
			_, _ = fmt.Fprintf(os.Stdout, "\nMore results available. Use --all to fetch all pages.\n")
		}

		return nil
	})
}

func newContextsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get CONTEXT_ID",
		Short: "Get context details",
		Long:  "Display a context by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			circleContext, err := client.Contexts().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get context: %w", err)
			}

			return outputContexts([]circleci.Context{*circleContext}, "")
		},
	}
}

func newContextsCreateCommand() *cobra.Command {
	var (
		ownerSlug string
		ownerID   string
		ownerType string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a context",
		Long:  "Create a context owned by an organization or account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			if ownerSlug == "" && ownerID == "" {
				return circleci.ErrOwnerRequired
			}

			if ownerType != "" {
				if err := circleci.ValidateOwnerType(ownerType); err != nil {
					return err
				}
			}

			circleContext, err := client.Contexts().Create(context.Background(), &circleci.CreateContextRequest{
				Name: args[0],
				Owner: circleci.ContextOwner{
					ID:   ownerID,
					Slug: ownerSlug,
					Type: ownerType,
				},
			})
			if err != nil {
				return fmt.Errorf("failed to create context: %w", err)
			}

			fmt.Printf("Created context %s (%s)\n", circleContext.Name, circleContext.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&ownerSlug, "owner-slug", "", "owner slug, e.g. github/my-org")
	cmd.Flags().StringVar(&ownerID, "owner-id", "", "owner UUID")
	cmd.Flags().StringVar(&ownerType, "owner-type", "", "owner type (organization or account)")

	return cmd
}

func newContextsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete CONTEXT_ID",
		Short: "Delete a context",
		Long:  "Delete a context and all of its environment variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			message, err := client.Contexts().Delete(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete context: %w", err)
			}

			fmt.Println(message.Message)

			return nil
		},
	}
}

func newContextsEnvCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage context environment variables",
		Long:  "List, set, and remove environment variables stored in a context",
	}

	cmd.AddCommand(newContextsEnvListCommand())
	cmd.AddCommand(newContextsEnvSetCommand())
	cmd.AddCommand(newContextsEnvDeleteCommand())

	return cmd
}

func newContextsEnvListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list CONTEXT_ID",
		Short: "List environment variables",
		Long:  "List the environment variables stored in a context (values are never returned)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			page, err := client.Contexts().ListEnvVars(context.Background(), args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to list environment variables: %w", err)
			}

			return renderOutput(page.Items, func() error {
				if len(page.Items) == 0 {
					_, _ = os.Stdout.WriteString("No environment variables found\n")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Variable", "Created", "Updated")

				for _, envVar := range page.Items {
					_ = table.Append(envVar.Variable, formatTime(envVar.CreatedAt), formatTime(envVar.UpdatedAt))
				}

				_ = table.Render()

				return nil
			})
		},
	}
}

func newContextsEnvSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set CONTEXT_ID NAME [VALUE]",
		Short: "Set an environment variable",
		Long:  "Create or replace an environment variable in a context; the value is prompted for when omitted",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			var value string
			if len(args) == 3 {
				value = args[2]
			} else {
				// Prompting keeps the secret out of shell history
				fmt.Printf("Value for %s: ", args[1])

				byteValue, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read value: %w", err)
				}

				value = strings.TrimSpace(string(byteValue))

				fmt.Println()
			}

			envVar, err := client.Contexts().AddEnvVar(context.Background(), args[0], args[1], value)
			if err != nil {
				return fmt.Errorf("failed to set environment variable: %w", err)
			}

			fmt.Printf("Set %s\n", envVar.Variable)

			return nil
		},
	}
}

func newContextsEnvDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete CONTEXT_ID NAME",
		Short: "Delete an environment variable",
		Long:  "Remove an environment variable from a context",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			message, err := client.Contexts().DeleteEnvVar(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to delete environment variable: %w", err)
			}

			fmt.Println(message.Message)

			return nil
		},
	}
}
