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

// NewJobsCommand creates the jobs command group.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Manage jobs",
		Long:    "Inspect and cancel v2 jobs",
	}

	cmd.AddCommand(newJobsGetCommand())
	cmd.AddCommand(newJobsCancelCommand())

	return cmd
}

func newJobsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT JOB_NUM",
		Short: "Get job details",
		Long:  "Display detailed information about a job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			slug, jobNumber, err := resolveJobArgs(args)
			if err != nil {
				return err
			}

			job, err := client.Jobs().Get(context.Background(), slug, jobNumber)
			if err != nil {
				return fmt.Errorf("failed to get job: %w", err)
			}

			return outputJobDetails(job)
		},
	}
}

// resolveJobArgs parses the common PROJECT JOB_NUM argument pair.
func resolveJobArgs(args []string) (string, int, error) {
	slug, err := resolveProjectSlug(args[0])
	if err != nil {
		return "", 0, err
	}

	jobNumber, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("parsing job number %q: %w", args[1], err)
	}

	return slug, jobNumber, nil
}

func outputJobDetails(job *circleci.Job) error {
	return renderOutput(job, func() error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")
		_ = table.Append("Number", strconv.FormatInt(job.Number, 10))
		_ = table.Append("Name", job.Name)
		_ = table.Append("Status", job.Status)

		if job.Project != nil {
			_ = table.Append("Project", job.Project.Slug)
		}

		if job.Executor != nil {
			executor := job.Executor.Type
			if job.Executor.ResourceClass != "" {
				executor += " (" + job.Executor.ResourceClass + ")"
			}

			_ = table.Append("Executor", executor)
		}

		if job.LatestWorkflow != nil {
			_ = table.Append("Workflow", job.LatestWorkflow.Name)
		}

		_ = table.Append("Parallelism", strconv.Itoa(job.Parallelism))
		_ = table.Append("Duration", formatDurationMillis(job.Duration))
		_ = table.Append("Queued", formatTime(job.QueuedAt))
		_ = table.Append("Started", formatTime(job.StartedAt))
		_ = table.Append("Stopped", formatTime(job.StoppedAt))
		_ = table.Append("URL", orNA(job.WebURL))

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

func newJobsCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel PROJECT JOB_NUM",
		Short: "Cancel a job",
		Long:  "Cancel a running job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			slug, jobNumber, err := resolveJobArgs(args)
			if err != nil {
				return err
			}

			message, err := client.Jobs().Cancel(context.Background(), slug, jobNumber)
			if err != nil {
				return fmt.Errorf("failed to cancel job: %w", err)
			}

			fmt.Println(message.Message)

			return nil
		},
	}
}
