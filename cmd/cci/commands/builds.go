package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fivetwenty-io/circleci-client/internal/constants"
	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewBuildsCommand creates the builds command group.
func NewBuildsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "builds",
		Aliases: []string{"build"},
		Short:   "Manage builds",
		Long:    "List, inspect, trigger, retry, and cancel legacy v1.1 builds, and work with their artifacts",
	}

	cmd.AddCommand(newBuildsRecentCommand())
	cmd.AddCommand(newBuildsListCommand())
	cmd.AddCommand(newBuildsGetCommand())
	cmd.AddCommand(newBuildsTriggerCommand())
	cmd.AddCommand(newBuildsRetryCommand())
	cmd.AddCommand(newBuildsCancelCommand())
	cmd.AddCommand(newBuildsAddSSHUserCommand())
	cmd.AddCommand(newBuildsTestsCommand())
	cmd.AddCommand(newBuildsArtifactsCommand())
	cmd.AddCommand(newBuildsLatestArtifactsCommand())
	cmd.AddCommand(newBuildsDownloadArtifactCommand())

	return cmd
}

func newBuildsRecentCommand() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recent builds",
		Long:  "List recently built jobs across all followed projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			builds, err := client.Builds().Recent(context.Background(), &circleci.RecentBuildsOptions{
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return fmt.Errorf("failed to list recent builds: %w", err)
			}

			return outputBuilds(builds)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", constants.DefaultBuildLimit, "maximum number of builds to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of builds to skip")

	return cmd
}

func newBuildsListCommand() *cobra.Command {
	var (
		branch  string
		limit   int
		offset  int
		filter  string
		shallow bool
	)

	cmd := &cobra.Command{
		Use:   "list PROJECT",
		Short: "List project builds",
		Long:  "List recent builds of a project, optionally scoped to a branch",
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

			builds, err := client.Projects().BuildSummary(context.Background(), vcsType, org, repo, &circleci.BuildSummaryOptions{
				Branch:  branch,
				Limit:   limit,
				Offset:  offset,
				Filter:  filter,
				Shallow: shallow,
			})
			if err != nil {
				return fmt.Errorf("failed to list builds: %w", err)
			}

			return outputBuilds(builds)
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "only list builds of this branch")
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultBuildLimit, "maximum number of builds to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of builds to skip")
	cmd.Flags().StringVar(&filter, "filter", "", "restrict by outcome (completed, successful, failed, running)")
	cmd.Flags().BoolVar(&shallow, "shallow", false, "request the abbreviated payload")

	return cmd
}

func outputBuilds(builds []circleci.Build) error {
	return renderOutput(builds, func() error {
		if len(builds) == 0 {
			_, _ = os.Stdout.WriteString("No builds found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Build", "Project", "Branch", "Status", "Subject", "Duration")

		for _, build := range builds {
			_ = table.Append(
				strconv.Itoa(build.BuildNum),
				build.Username+"/"+build.Reponame,
				orNA(build.Branch),
				orNA(build.Status),
				truncate(build.Subject, constants.StringTruncationLength),
				formatDurationMillis(build.BuildTimeMillis),
			)
		}

		_ = table.Render()

		return nil
	})
}

func newBuildsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT BUILD_NUM",
		Short: "Get build details",
		Long:  "Display detailed information about a single build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, buildNum, err := resolveBuildArgs(args)
			if err != nil {
				return err
			}

			build, err := client.Builds().Get(context.Background(), vcsType, org, repo, buildNum)
			if err != nil {
				return fmt.Errorf("failed to get build: %w", err)
			}

			return outputBuildDetails(build)
		},
	}
}

// resolveBuildArgs parses the common PROJECT BUILD_NUM argument pair.
func resolveBuildArgs(args []string) (string, string, string, int, error) {
	vcsType, org, repo, err := resolveProject(args[0])
	if err != nil {
		return "", "", "", 0, err
	}

	buildNum, err := strconv.Atoi(args[1])
	if err != nil {
		return "", "", "", 0, fmt.Errorf("parsing build number %q: %w", args[1], err)
	}

	return vcsType, org, repo, buildNum, nil
}

func outputBuildDetails(build *circleci.Build) error {
	return renderOutput(build, func() error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")
		_ = table.Append("Build", strconv.Itoa(build.BuildNum))
		_ = table.Append("Project", build.Username+"/"+build.Reponame)
		_ = table.Append("Branch", orNA(build.Branch))
		_ = table.Append("Status", orNA(build.Status))
		_ = table.Append("Outcome", orNA(build.Outcome))
		_ = table.Append("Lifecycle", orNA(build.Lifecycle))
		_ = table.Append("Subject", orNA(build.Subject))
		_ = table.Append("Committer", orNA(build.CommitterName))
		_ = table.Append("Revision", orNA(build.VCSRevision))
		_ = table.Append("Queued", formatTime(build.QueuedAt))
		_ = table.Append("Started", formatTime(build.StartTime))
		_ = table.Append("Stopped", formatTime(build.StopTime))
		_ = table.Append("Duration", formatDurationMillis(build.BuildTimeMillis))

		if build.Workflows != nil {
			_ = table.Append("Workflow", build.Workflows.WorkflowName)
			_ = table.Append("Job", build.Workflows.JobName)
		}

		_ = table.Append("URL", orNA(build.BuildURL))

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

func newBuildsTriggerCommand() *cobra.Command {
	var (
		branch   string
		revision string
		tag      string
		params   []string
	)

	cmd := &cobra.Command{
		Use:   "trigger PROJECT",
		Short: "Trigger a build",
		Long:  "Trigger a new v1.1 build of a branch",
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

			buildParams, err := parseKeyValues(params)
			if err != nil {
				return err
			}

			build, err := client.Builds().Trigger(context.Background(), vcsType, org, repo, branch, &circleci.TriggerBuildRequest{
				Revision:        revision,
				Tag:             tag,
				BuildParameters: buildParams,
			})
			if err != nil {
				return fmt.Errorf("failed to trigger build: %w", err)
			}

			fmt.Printf("Triggered build %d on %s\n", build.BuildNum, circleci.ProjectSlug(vcsType, org, repo))

			if build.BuildURL != "" {
				fmt.Println(build.BuildURL)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "master", "branch to build")
	cmd.Flags().StringVar(&revision, "revision", "", "git revision to build")
	cmd.Flags().StringVar(&tag, "tag", "", "git tag to build (mutually exclusive with --revision)")
	cmd.Flags().StringArrayVar(&params, "param", nil, "build parameter, as name=value (repeatable)")

	return cmd
}

func newBuildsRetryCommand() *cobra.Command {
	var ssh bool

	cmd := &cobra.Command{
		Use:   "retry PROJECT BUILD_NUM",
		Short: "Retry a build",
		Long:  "Retry a build, optionally keeping an SSH connection open",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, buildNum, err := resolveBuildArgs(args)
			if err != nil {
				return err
			}

			build, err := client.Builds().Retry(context.Background(), vcsType, org, repo, buildNum, ssh)
			if err != nil {
				return fmt.Errorf("failed to retry build: %w", err)
			}

			fmt.Printf("Retrying build %d as build %d\n", buildNum, build.BuildNum)

			return nil
		},
	}

	cmd.Flags().BoolVar(&ssh, "ssh", false, "retry with SSH access enabled")

	return cmd
}

func newBuildsCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel PROJECT BUILD_NUM",
		Short: "Cancel a build",
		Long:  "Cancel a running build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, buildNum, err := resolveBuildArgs(args)
			if err != nil {
				return err
			}

			build, err := client.Builds().Cancel(context.Background(), vcsType, org, repo, buildNum)
			if err != nil {
				return fmt.Errorf("failed to cancel build: %w", err)
			}

			fmt.Printf("Canceled build %d (%s)\n", build.BuildNum, orNA(build.Status))

			return nil
		},
	}
}

func newBuildsAddSSHUserCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-ssh-user PROJECT BUILD_NUM",
		Short: "Add your SSH key to a build",
		Long:  "Add the authenticated user's SSH key to a running build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, buildNum, err := resolveBuildArgs(args)
			if err != nil {
				return err
			}

			_, err = client.Builds().AddSSHUser(context.Background(), vcsType, org, repo, buildNum)
			if err != nil {
				return fmt.Errorf("failed to add SSH user: %w", err)
			}

			fmt.Printf("Added SSH user to build %d\n", buildNum)

			return nil
		},
	}
}

func newBuildsTestsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tests PROJECT BUILD_NUM",
		Short: "Show build test results",
		Long:  "Display the test results recorded for a build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, buildNum, err := resolveBuildArgs(args)
			if err != nil {
				return err
			}

			tests, err := client.Builds().TestMetadata(context.Background(), vcsType, org, repo, buildNum)
			if err != nil {
				return fmt.Errorf("failed to get test metadata: %w", err)
			}

			return outputTestMetadata(tests)
		},
	}
}

func outputTestMetadata(tests []circleci.TestMetadata) error {
	return renderOutput(tests, func() error {
		if len(tests) == 0 {
			_, _ = os.Stdout.WriteString("No test results found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Result", "Name", "Class", "Time (s)")

		for _, test := range tests {
			_ = table.Append(
				test.Result,
				truncate(test.Name, constants.StringTruncationLength),
				truncate(test.Classname, constants.StringTruncationLength),
				strconv.FormatFloat(test.RunTime, 'f', 2, 64),
			)
		}

		_ = table.Render()

		return nil
	})
}

func newBuildsArtifactsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts PROJECT BUILD_NUM",
		Short: "List build artifacts",
		Long:  "List the artifacts produced by a build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			vcsType, org, repo, buildNum, err := resolveBuildArgs(args)
			if err != nil {
				return err
			}

			artifacts, err := client.Builds().Artifacts(context.Background(), vcsType, org, repo, buildNum)
			if err != nil {
				return fmt.Errorf("failed to list artifacts: %w", err)
			}

			return outputArtifacts(artifacts)
		},
	}
}

func outputArtifacts(artifacts []circleci.Artifact) error {
	return renderOutput(artifacts, func() error {
		if len(artifacts) == 0 {
			_, _ = os.Stdout.WriteString("No artifacts found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Path", "Node", "URL")

		for _, artifact := range artifacts {
			_ = table.Append(artifact.Path, strconv.Itoa(artifact.NodeIndex), artifact.URL)
		}

		_ = table.Render()

		return nil
	})
}

func newBuildsLatestArtifactsCommand() *cobra.Command {
	var (
		branch string
		filter string
	)

	cmd := &cobra.Command{
		Use:   "latest-artifacts PROJECT",
		Short: "List latest build artifacts",
		Long:  "List the artifacts of the latest build of a project",
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

			artifacts, err := client.Builds().LatestArtifacts(context.Background(), vcsType, org, repo, &circleci.LatestArtifactsOptions{
				Branch: branch,
				Filter: filter,
			})
			if err != nil {
				return fmt.Errorf("failed to list latest artifacts: %w", err)
			}

			return outputArtifacts(artifacts)
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch whose latest build is inspected")
	cmd.Flags().StringVar(&filter, "filter", "", "restrict by outcome (completed, successful, failed)")

	return cmd
}

func newBuildsDownloadArtifactCommand() *cobra.Command {
	var (
		destDir  string
		filename string
	)

	cmd := &cobra.Command{
		Use:   "download-artifact URL",
		Short: "Download an artifact",
		Long:  "Download a single artifact by its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return constants.ErrArtifactURLRequired
			}

			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			path, err := client.Builds().DownloadArtifact(context.Background(), args[0], destDir, filename)
			if err != nil {
				return fmt.Errorf("failed to download artifact: %w", err)
			}

			fmt.Printf("Downloaded %s\n", path)

			return nil
		},
	}

	cmd.Flags().StringVar(&destDir, "dir", ".", "directory to write the artifact to")
	cmd.Flags().StringVar(&filename, "filename", "", "file name to write (defaults to the URL's last segment)")

	return cmd
}
