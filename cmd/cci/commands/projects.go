package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage projects",
		Long:    "List and manage CircleCI projects, their settings, environment variables, and checkout keys",
	}

	cmd.AddCommand(newProjectsListCommand())
	cmd.AddCommand(newProjectsGetCommand())
	cmd.AddCommand(newProjectsFollowCommand())
	cmd.AddCommand(newProjectsSettingsCommand())
	cmd.AddCommand(newProjectsAddSSHKeyCommand())
	cmd.AddCommand(newProjectsEnvCommand())
	cmd.AddCommand(newProjectsCheckoutKeysCommand())

	return cmd
}

func newProjectsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List followed projects",
		Long:  "List the projects the authenticated user follows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			projects, err := client.Projects().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			return outputProjectSummaries(projects)
		},
	}
}

func outputProjectSummaries(projects []circleci.ProjectSummary) error {
	return renderOutput(projects, func() error {
		if len(projects) == 0 {
			_, _ = os.Stdout.WriteString("No projects found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Project", "VCS", "Default Branch", "Language")

		for _, project := range projects {
			_ = table.Append(
				project.Username+"/"+project.Reponame,
				orNA(project.VCSType),
				orNA(project.DefaultBranch),
				orNA(project.Language),
			)
		}

		_ = table.Render()

		return nil
	})
}

func newProjectsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT",
		Short: "Get project details",
		Long:  "Display detailed information about a project by slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			slug, err := resolveProjectSlug(args[0])
			if err != nil {
				return err
			}

			project, err := client.Projects().Get(context.Background(), slug)
			if err != nil {
				return fmt.Errorf("failed to get project: %w", err)
			}

			return outputProjectDetails(project)
		},
	}
}

func outputProjectDetails(project *circleci.Project) error {
	return renderOutput(project, func() error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")
		_ = table.Append("Name", project.Name)
		_ = table.Append("Slug", project.Slug)
		_ = table.Append("Organization", orNA(project.OrganizationName))
		_ = table.Append("ID", orNA(project.ID))

		if project.VCSInfo != nil {
			_ = table.Append("VCS URL", project.VCSInfo.VCSURL)
			_ = table.Append("Default Branch", project.VCSInfo.DefaultBranch)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

func newProjectsFollowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "follow PROJECT",
		Short: "Follow a project",
		Long:  "Start following a project so it appears in listings and recent builds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, err := resolveProject(args[0])
			if err != nil {
				return err
			}

			result, err := client.Projects().Follow(context.Background(), vcsType, org, repo)
			if err != nil {
				return fmt.Errorf("failed to follow project: %w", err)
			}

			if result.Followed {
				fmt.Printf("Following %s\n", circleci.ProjectSlug(vcsType, org, repo))
			} else {
				fmt.Printf("Could not follow %s\n", circleci.ProjectSlug(vcsType, org, repo))
			}

			return nil
		},
	}
}

func newProjectsSettingsCommand() *cobra.Command {
	var setPairs []string

	cmd := &cobra.Command{
		Use:   "settings PROJECT",
		Short: "Show or update project settings",
		Long:  "Display the advanced settings of a project, or update them with repeated --set flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, err := resolveProject(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()

			if len(setPairs) > 0 {
				updates, err := parseKeyValues(setPairs)
				if err != nil {
					return err
				}

				settings, err := client.Projects().UpdateSettings(ctx, vcsType, org, repo, map[string]interface{}{
					"feature_flags": updates,
				})
				if err != nil {
					return fmt.Errorf("failed to update settings: %w", err)
				}

				return outputProjectSettings(settings)
			}

			settings, err := client.Projects().Settings(ctx, vcsType, org, repo)
			if err != nil {
				return fmt.Errorf("failed to get settings: %w", err)
			}

			return outputProjectSettings(settings)
		},
	}

	cmd.Flags().StringArrayVar(&setPairs, "set", nil, "feature flag to update, as flag=value (repeatable)")

	return cmd
}

func outputProjectSettings(settings *circleci.ProjectSettings) error {
	return renderOutput(settings, func() error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Setting", "Value")
		_ = table.Append("VCS URL", orNA(settings.VCSURL))
		_ = table.Append("Default Branch", orNA(settings.DefaultBranch))
		_ = table.Append("Following", strconv.FormatBool(settings.Following))

		for flag, value := range settings.FeatureFlags {
			_ = table.Append(flag, fmt.Sprintf("%v", value))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

func newProjectsAddSSHKeyCommand() *cobra.Command {
	var (
		hostname string
		keyFile  string
	)

	cmd := &cobra.Command{
		Use:   "add-ssh-key PROJECT",
		Short: "Add an SSH key to a project",
		Long:  "Add a private SSH key to a project for use during builds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, err := resolveProject(args[0])
			if err != nil {
				return err
			}

			key, err := readFileArgument(keyFile)
			if err != nil {
				return err
			}

			err = client.Projects().AddSSHKey(context.Background(), vcsType, org, repo, hostname, string(key))
			if err != nil {
				return fmt.Errorf("failed to add SSH key: %w", err)
			}

			fmt.Printf("Added SSH key to %s\n", circleci.ProjectSlug(vcsType, org, repo))

			return nil
		},
	}

	cmd.Flags().StringVar(&hostname, "hostname", "", "hostname the key applies to")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "file containing the private key")
	_ = cmd.MarkFlagRequired("key-file")

	return cmd
}

func newProjectsEnvCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage project environment variables",
		Long:  "List, add, and delete project environment variables",
	}

	cmd.AddCommand(newProjectsEnvListCommand())
	cmd.AddCommand(newProjectsEnvGetCommand())
	cmd.AddCommand(newProjectsEnvSetCommand())
	cmd.AddCommand(newProjectsEnvDeleteCommand())

	return cmd
}

func newProjectsEnvListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List environment variables",
		Long:  "List the environment variables of a project with masked values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, err := resolveProject(args[0])
			if err != nil {
				return err
			}

			envVars, err := client.Projects().ListEnvVars(context.Background(), vcsType, org, repo)
			if err != nil {
				return fmt.Errorf("failed to list environment variables: %w", err)
			}

			return outputEnvVars(envVars)
		},
	}
}

func outputEnvVars(envVars []circleci.EnvVar) error {
	return renderOutput(envVars, func() error {
		if len(envVars) == 0 {
			_, _ = os.Stdout.WriteString("No environment variables found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Name", "Value")

		for _, envVar := range envVars {
			_ = table.Append(envVar.Name, envVar.Value)
		}

		_ = table.Render()

		return nil
	})
}

func newProjectsEnvGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT NAME",
		Short: "Get an environment variable",
		Long:  "Display a single project environment variable with a masked value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, err := resolveProject(args[0])
			if err != nil {
				return err
			}

			envVar, err := client.Projects().GetEnvVar(context.Background(), vcsType, org, repo, args[1])
			if err != nil {
				return fmt.Errorf("failed to get environment variable: %w", err)
			}

			return outputEnvVars([]circleci.EnvVar{*envVar})
		},
	}
}

func newProjectsEnvSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set PROJECT NAME VALUE",
		Short: "Set an environment variable",
		Long:  "Create or replace a project environment variable",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, err := resolveProject(args[0])
			if err != nil {
				return err
			}

			envVar, err := client.Projects().AddEnvVar(context.Background(), vcsType, org, repo, args[1], args[2])
			if err != nil {
				return fmt.Errorf("failed to set environment variable: %w", err)
			}

			fmt.Printf("Set %s on %s\n", envVar.Name, circleci.ProjectSlug(vcsType, org, repo))

			return nil
		},
	}
}

func newProjectsEnvDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete PROJECT NAME",
		Short: "Delete an environment variable",
		Long:  "Delete an environment variable from a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, err := resolveProject(args[0])
			if err != nil {
				return err
			}

			_, err = client.Projects().DeleteEnvVar(context.Background(), vcsType, org, repo, args[1])
			if err != nil {
				return fmt.Errorf("failed to delete environment variable: %w", err)
			}

			fmt.Printf("Deleted %s from %s\n", args[1], circleci.ProjectSlug(vcsType, org, repo))

			return nil
		},
	}
}

func newProjectsCheckoutKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "checkout-keys",
		Aliases: []string{"checkout-key"},
		Short:   "Manage project checkout keys",
		Long:    "List, create, and delete the checkout keys of a project",
	}

	cmd.AddCommand(newCheckoutKeysListCommand())
	cmd.AddCommand(newCheckoutKeysCreateCommand())
	cmd.AddCommand(newCheckoutKeysGetCommand())
	cmd.AddCommand(newCheckoutKeysDeleteCommand())

	return cmd
}

func newCheckoutKeysListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT",
		Short: "List checkout keys",
		Long:  "List the checkout keys of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, err := resolveProject(args[0])
			if err != nil {
				return err
			}

			keys, err := client.Projects().ListCheckoutKeys(context.Background(), vcsType, org, repo)
			if err != nil {
				return fmt.Errorf("failed to list checkout keys: %w", err)
			}

			return outputCheckoutKeys(keys)
		},
	}
}

func outputCheckoutKeys(keys []circleci.CheckoutKey) error {
	return renderOutput(keys, func() error {
		if len(keys) == 0 {
			_, _ = os.Stdout.WriteString("No checkout keys found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Fingerprint", "Type", "Preferred", "Created")

		for _, key := range keys {
			_ = table.Append(key.Fingerprint, key.Type, strconv.FormatBool(key.Preferred), formatTime(key.Time))
		}

		_ = table.Render()

		return nil
	})
}

func newCheckoutKeysCreateCommand() *cobra.Command {
	var keyType string

	cmd := &cobra.Command{
		Use:   "create PROJECT",
		Short: "Create a checkout key",
		Long:  "Create a new checkout key on a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, err := resolveProject(args[0])
			if err != nil {
				return err
			}

			key, err := client.Projects().CreateCheckoutKey(context.Background(), vcsType, org, repo, keyType)
			if err != nil {
				return fmt.Errorf("failed to create checkout key: %w", err)
			}

			fmt.Printf("Created %s key %s\n", key.Type, key.Fingerprint)

			return nil
		},
	}

	cmd.Flags().StringVar(&keyType, "type", "deploy-key", "key type (deploy-key or github-user-key)")

	return cmd
}

func newCheckoutKeysGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT FINGERPRINT",
		Short: "Get a checkout key",
		Long:  "Display a single checkout key by fingerprint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, err := resolveProject(args[0])
			if err != nil {
				return err
			}

			key, err := client.Projects().GetCheckoutKey(context.Background(), vcsType, org, repo, args[1])
			if err != nil {
				return fmt.Errorf("failed to get checkout key: %w", err)
			}

			return outputCheckoutKeys([]circleci.CheckoutKey{*key})
		},
	}
}

func newCheckoutKeysDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete PROJECT FINGERPRINT",
		Short: "Delete a checkout key",
		Long:  "Delete a checkout key from a project by fingerprint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, err := resolveProject(args[0])
			if err != nil {
				return err
			}

			_, err = client.Projects().DeleteCheckoutKey(context.Background(), vcsType, org, repo, args[1])
			if err != nil {
				return fmt.Errorf("failed to delete checkout key: %w", err)
			}

			fmt.Printf("Deleted checkout key %s\n", args[1])

			return nil
		},
	}
}
