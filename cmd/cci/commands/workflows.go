package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/circleci-client/pkg/circleci"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewWorkflowsCommand creates the workflows command group.
func NewWorkflowsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflows",
		Aliases: []string{"workflow"},
		Short:   "Manage workflows",
		Long:    "Inspect, cancel, rerun, and approve v2 workflows",
	}

	cmd.AddCommand(newWorkflowsGetCommand())
	cmd.AddCommand(newWorkflowsJobsCommand())
	cmd.AddCommand(newWorkflowsCancelCommand())
	cmd.AddCommand(newWorkflowsRerunCommand())
	cmd.AddCommand(newWorkflowsApproveCommand())

	return cmd
}

func newWorkflowsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get WORKFLOW_ID",
		Short: "Get workflow details",
		Long:  "Display detailed information about a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			workflow, err := client.Workflows().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get workflow: %w", err)
			}

			return outputWorkflowDetails(workflow)
		},
	}
}

func outputWorkflowDetails(workflow *circleci.Workflow) error {
	return renderOutput(workflow, func() error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")
		_ = table.Append("ID", workflow.ID)
		_ = table.Append("Name", workflow.Name)
		_ = table.Append("Status", workflow.Status)
		_ = table.Append("Project", workflow.ProjectSlug)
		_ = table.Append("Pipeline", strconv.FormatInt(workflow.PipelineNumber, 10))
		_ = table.Append("Created", formatDate(workflow.CreatedAt))
		_ = table.Append("Stopped", formatTime(workflow.StoppedAt))

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

func outputWorkflows(workflows []circleci.Workflow, nextPageToken string) error {
	return renderOutput(workflows, func() error {
		if len(workflows) == 0 {
			_, _ = os.Stdout.WriteString("No workflows found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Name", "Status", "Pipeline", "Created", "ID")

		for _, workflow := range workflows {
			_ = table.Append(
				workflow.Name,
				workflow.Status,
				strconv.FormatInt(workflow.PipelineNumber, 10),
				formatDate(workflow.CreatedAt),
				workflow.ID,
			)
		}

		_ = table.Render()

		if nextPageToken != "" {
			_, _ = fmt.Fprintf(os.Stdout, "\nMore results available. Use --all to fetch all pages.\n")
		}

		return nil
	})
}

func newWorkflowsJobsCommand() *cobra.Command {
	var allPages bool

	cmd := &cobra.Command{
		Use:   "jobs WORKFLOW_ID",
		Short: "List workflow jobs",
		Long:  "List the jobs of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			ctx := context.Background()

			if allPages {
				jobs, err := client.Workflows().JobsAll(ctx, args[0], nil)
				if err != nil {
					return fmt.Errorf("failed to list jobs: %w", err)
				}

				return outputWorkflowJobs(jobs, "")
			}

			page, err := client.Workflows().Jobs(ctx, args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}

			return outputWorkflowJobs(page.Items, page.NextPageToken)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func outputWorkflowJobs(jobs []circleci.WorkflowJob, nextPageToken string) error {
	return renderOutput(jobs, func() error {
		if len(jobs) == 0 {
			_, _ = os.Stdout.WriteString("No jobs found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Name", "Status", "Number", "Type", "Started", "ID")

		for _, job := range jobs {
			number := NotAvailable
			if job.JobNumber > 0 {
				number = strconv.FormatInt(job.JobNumber, 10)
			}

			_ = table.Append(
				job.Name,
				job.Status,
				number,
				orNA(job.Type),
				formatTime(job.StartedAt),
				job.ID,
			)
		}

		_ = table.Render()

		if nextPageToken != "" {
			_, _ = fmt.Fprintf(os.Stdout, "\nMore results available. Use --all to fetch all pages.\n")
		}

		return nil
	})
}

func newWorkflowsCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel WORKFLOW_ID",
		Short: "Cancel a workflow",
		Long:  "Cancel a running workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			message, err := client.Workflows().Cancel(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to cancel workflow: %w", err)
			}

			fmt.Println(message.Message)

			return nil
		},
	}
}

func newWorkflowsRerunCommand() *cobra.Command {
	var (
		fromFailed bool
		jobs       []string
		sparseTree bool
		enableSSH  bool
	)

	cmd := &cobra.Command{
		Use:   "rerun WORKFLOW_ID",
		Short: "Rerun a workflow",
		Long:  "Rerun a workflow from the beginning, from failed, or for selected jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			var jobIDs []string
			for _, job := range jobs {
				for _, id := range strings.Split(job, ",") {
					if id = strings.TrimSpace(id); id != "" {
						jobIDs = append(jobIDs, id)
					}
				}
			}

			rerun, err := client.Workflows().Rerun(context.Background(), args[0], &circleci.RerunWorkflowRequest{
				Jobs:       jobIDs,
				FromFailed: fromFailed,
				SparseTree: sparseTree,
				EnableSSH:  enableSSH,
			})
			if err != nil {
				return fmt.Errorf("failed to rerun workflow: %w", err)
			}

			fmt.Printf("Rerunning as workflow %s\n", rerun.WorkflowID)

			return nil
		},
	}

	cmd.Flags().BoolVar(&fromFailed, "from-failed", false, "rerun only failed jobs and their dependents")
	cmd.Flags().StringArrayVar(&jobs, "job", nil, "job ID to rerun (repeatable, comma-separated values accepted)")
	cmd.Flags().BoolVar(&sparseTree, "sparse-tree", false, "rerun only the given jobs plus their dependencies")
	cmd.Flags().BoolVar(&enableSSH, "enable-ssh", false, "enable SSH access on the rerun jobs")

	return cmd
}

func newWorkflowsApproveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "approve WORKFLOW_ID APPROVAL_REQUEST_ID",
		Short: "Approve a workflow job",
		Long:  "Approve a pending approval job in a workflow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			message, err := client.Workflows().ApproveJob(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to approve job: %w", err)
			}

			fmt.Println(message.Message)

			return nil
		},
	}
}
