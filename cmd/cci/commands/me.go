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

// NewMeCommand creates the me command
func NewMeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated user",
		Long:  "Display details about the user the API token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			user, err := client.Users().Me(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			return outputUser(user)
		},
	}

	cmd.AddCommand(newMeCollaborationsCommand())
	cmd.AddCommand(newMeReposCommand())

	return cmd
}

func outputUser(user *circleci.User) error {
	return renderOutput(user, func() error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")
		_ = table.Append("Login", orNA(user.Login))
		_ = table.Append("Name", orNA(user.Name))
		_ = table.Append("Email", orNA(user.SelectedEmail))
		_ = table.Append("ID", orNA(user.ID))
		_ = table.Append("Sign-ins", strconv.Itoa(user.SignInCount))
		_ = table.Append("Created", formatTime(user.CreatedAt))

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

func newMeCollaborationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "collaborations",
		Short: "List collaborations",
		Long:  "List the organizations the authenticated user can collaborate on",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			collaborations, err := client.Users().Collaborations(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list collaborations: %w", err)
			}

			return outputCollaborations(collaborations)
		},
	}
}

func outputCollaborations(collaborations []circleci.Collaboration) error {
	return renderOutput(collaborations, func() error {
		if len(collaborations) == 0 {
			_, _ = os.Stdout.WriteString("No collaborations found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Name", "Slug", "VCS Type", "ID")

		for _, collaboration := range collaborations {
			_ = table.Append(collaboration.Name, collaboration.Slug, collaboration.VCSType, collaboration.ID)
		}

		_ = table.Render()

		return nil
	})
}

func newMeReposCommand() *cobra.Command {
	var (
		vcsType string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List accessible repositories",
		Long:  "List the repositories the authenticated user can access on a VCS provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			var opts *circleci.PageOptions
			if limit > 0 {
				opts = &circleci.PageOptions{Limit: limit}
			}

			repos, err := client.Users().Repos(context.Background(), vcsType, opts)
			if err != nil {
				return fmt.Errorf("failed to list repositories: %w", err)
			}

			return outputRepos(repos)
		},
	}

	cmd.Flags().StringVar(&vcsType, "vcs-type", circleci.VCSGitHub, "VCS provider to list repositories for")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of repositories to return")

	return cmd
}

func outputRepos(repos []circleci.Repo) error {
	return renderOutput(repos, func() error {
		if len(repos) == 0 {
			_, _ = os.Stdout.WriteString("No repositories found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Name", "Account", "Default Branch", "URL")

		for _, repo := range repos {
			_ = table.Append(repo.Name, repo.Username, orNA(repo.DefaultBranch), repo.VCSURL)
		}

		_ = table.Render()

		return nil
	})
}
