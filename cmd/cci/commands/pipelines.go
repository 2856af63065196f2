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

// NewPipelinesCommand creates the pipelines command group.
func NewPipelinesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pipelines",
		Aliases: []string{"pipeline"},
		Short:   "Manage pipelines",
		Long:    "List, inspect, trigger, and continue v2 pipelines",
	}

	cmd.AddCommand(newPipelinesListCommand())
	cmd.AddCommand(newPipelinesOrgCommand())
	cmd.AddCommand(newPipelinesGetCommand())
	cmd.AddCommand(newPipelinesTriggerCommand())
	cmd.AddCommand(newPipelinesConfigCommand())
	cmd.AddCommand(newPipelinesWorkflowsCommand())
	cmd.AddCommand(newPipelinesContinueCommand())

	return cmd
}

func newPipelinesListCommand() *cobra.Command {
	var (
		branch   string
		allPages bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list PROJECT",
		Short: "List project pipelines",
		Long:  "List recent pipelines of a project, optionally scoped to a branch",
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

			ctx := context.Background()

			params := circleci.NewQueryParams()
			if branch != "" {
				params.WithBranch(branch)
			}

			if allPages {
				var opts *circleci.PageOptions
				if limit > 0 {
					opts = &circleci.PageOptions{Limit: limit}
				}

				pipelines, err := client.Pipelines().ListForProjectAll(ctx, slug, params, opts)
				if err != nil {
					return fmt.Errorf("failed to list pipelines: %w", err)
				}

				return outputPipelines(pipelines, "")
			}

			page, err := client.Pipelines().ListForProject(ctx, slug, params)
			if err != nil {
				return fmt.Errorf("failed to list pipelines: %w", err)
			}

			return outputPipelines(page.Items, page.NextPageToken)
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "only list pipelines of this branch")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of pipelines with --all")

	return cmd
}

func newPipelinesOrgCommand() *cobra.Command {
	var (
		orgSlug string
		mine    bool
	)

	cmd := &cobra.Command{
		Use:   "org",
		Short: "List organization pipelines",
		Long:  "List recent pipelines across an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			params := circleci.NewQueryParams()
			if orgSlug != "" {
				params.WithOrgSlug(orgSlug)
			}

			if mine {
				params.WithMine(true)
			}

			page, err := client.Pipelines().List(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to list pipelines: %w", err)
			}

			return outputPipelines(page.Items, page.NextPageToken)
		},
	}

	cmd.Flags().StringVar(&orgSlug, "org-slug", "", "organization slug, e.g. github/my-org")
	cmd.Flags().BoolVar(&mine, "mine", false, "only list pipelines triggered by you")

	return cmd
}

func outputPipelines(pipelines []circleci.Pipeline, nextPageToken string) error {
	return renderOutput(pipelines, func() error {
		if len(pipelines) == 0 {
			_, _ = os.Stdout.WriteString("No pipelines found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Number", "Project", "State", "Trigger", "Created", "ID")

		for _, pipeline := range pipelines {
			trigger := NotAvailable
			if pipeline.Trigger != nil {
				trigger = pipeline.Trigger.Type
			}

			_ = table.Append(
				strconv.FormatInt(pipeline.Number, 10),
				pipeline.ProjectSlug,
				pipeline.State,
				trigger,
				formatDate(pipeline.CreatedAt),
				pipeline.ID,
			)
		}

		_ = table.Render()

		if nextPageToken != "" {
			_, _ = fmt.Fprintf(os.Stdout, "\nMore results available. Use --all to fetch all pages.\n")
		}

		return nil
	})
}

func newPipelinesGetCommand() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "get PIPELINE_ID_OR_NUMBER",
		Short: "Get pipeline details",
		Long:  "Display a pipeline by ID, or by number when --project is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			ctx := context.Background()

			var pipeline *circleci.Pipeline

			if project != "" {
				slug, err := resolveProjectSlug(project)
				if err != nil {
					return err
				}

				number, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("parsing pipeline number %q: %w", args[0], err)
				}

				pipeline, err = client.Pipelines().GetByNumber(ctx, slug, number)
				if err != nil {
					return fmt.Errorf("failed to get pipeline: %w", err)
				}
			} else {
				pipeline, err = client.Pipelines().Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get pipeline: %w", err)
				}
			}

			return outputPipelineDetails(pipeline)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project slug for lookup by pipeline number")

	return cmd
}

func outputPipelineDetails(pipeline *circleci.Pipeline) error {
	return renderOutput(pipeline, func() error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")
		_ = table.Append("ID", pipeline.ID)
		_ = table.Append("Number", strconv.FormatInt(pipeline.Number, 10))
		_ = table.Append("Project", pipeline.ProjectSlug)
		_ = table.Append("State", pipeline.State)
		_ = table.Append("Created", formatDate(pipeline.CreatedAt))

		if pipeline.Trigger != nil {
			_ = table.Append("Trigger", pipeline.Trigger.Type)

			if pipeline.Trigger.Actor != nil {
				_ = table.Append("Triggered By", pipeline.Trigger.Actor.Login)
			}
		}

		if pipeline.VCS != nil {
			_ = table.Append("Branch", orNA(pipeline.VCS.Branch))
			_ = table.Append("Revision", orNA(pipeline.VCS.Revision))
		}

		for _, pipelineError := range pipeline.Errors {
			_ = table.Append("Error ("+pipelineError.Type+")", pipelineError.Message)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

func newPipelinesTriggerCommand() *cobra.Command {
	var (
		branch string
		tag    string
		params []string
	)

	cmd := &cobra.Command{
		Use:   "trigger PROJECT",
		Short: "Trigger a pipeline",
		Long:  "Trigger a new pipeline on a project branch or tag",
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

			parameters, err := parseKeyValues(params)
			if err != nil {
				return err
			}

			pipeline, err := client.Pipelines().Trigger(context.Background(), slug, &circleci.TriggerPipelineRequest{
				Branch:     branch,
				Tag:        tag,
				Parameters: parameters,
			})
			if err != nil {
				return fmt.Errorf("failed to trigger pipeline: %w", err)
			}

			fmt.Printf("Triggered pipeline %d (%s)\n", pipeline.Number, pipeline.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch to build (mutually exclusive with --tag)")
	cmd.Flags().StringVar(&tag, "tag", "", "git tag to build (mutually exclusive with --branch)")
	cmd.Flags().StringArrayVar(&params, "param", nil, "pipeline parameter, as name=value (repeatable)")

	return cmd
}

func newPipelinesConfigCommand() *cobra.Command {
	var compiled bool

	cmd := &cobra.Command{
		Use:   "config PIPELINE_ID",
		Short: "Show pipeline configuration",
		Long:  "Display the source or compiled configuration of a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			config, err := client.Pipelines().Config(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get pipeline config: %w", err)
			}

			return renderOutput(config, func() error {
				if compiled {
					fmt.Println(config.Compiled)
				} else {
					fmt.Println(config.Source)
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&compiled, "compiled", false, "show the compiled configuration")

	return cmd
}

func newPipelinesWorkflowsCommand() *cobra.Command {
	var allPages bool

	cmd := &cobra.Command{
		Use:   "workflows PIPELINE_ID",
		Short: "List pipeline workflows",
		Long:  "List the workflows belonging to a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			ctx := context.Background()

			if allPages {
				workflows, err := client.Pipelines().WorkflowsAll(ctx, args[0], nil)
				if err != nil {
					return fmt.Errorf("failed to list workflows: %w", err)
				}

				return outputWorkflows(workflows, "")
			}

			page, err := client.Pipelines().Workflows(ctx, args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to list workflows: %w", err)
			}

			return outputWorkflows(page.Items, page.NextPageToken)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func newPipelinesContinueCommand() *cobra.Command {
	var (
		continuationKey string
		configFile      string
		params          []string
	)

	cmd := &cobra.Command{
		Use:   "continue",
		Short: "Continue a setup pipeline",
		Long:  "Resume a setup pipeline with a full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			configuration, err := readFileArgument(configFile)
			if err != nil {
				return err
			}

			parameters, err := parseKeyValues(params)
			if err != nil {
				return err
			}

			message, err := client.Pipelines().Continue(context.Background(), &circleci.ContinuePipelineRequest{
				ContinuationKey: continuationKey,
				Configuration:   string(configuration),
				Parameters:      parameters,
			})
			if err != nil {
				return fmt.Errorf("failed to continue pipeline: %w", err)
			}

			fmt.Println(message.Message)

			return nil
		},
	}

	cmd.Flags().StringVar(&continuationKey, "continuation-key", "", "continuation key handed to the setup workflow")
	cmd.Flags().StringVar(&configFile, "config-file", "", "file containing the configuration to continue with")
	_ = cmd.MarkFlagRequired("continuation-key")
	_ = cmd.MarkFlagRequired("config-file")
	cmd.Flags().StringArrayVar(&params, "param", nil, "pipeline parameter, as name=value (repeatable)")

	return cmd
}
