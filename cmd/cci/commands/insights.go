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

// NewInsightsCommand creates the insights command group.
func NewInsightsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "View project insights",
		Long:  "View aggregated workflow, job, and test metrics for a project",
	}

	cmd.AddCommand(newInsightsBranchesCommand())
	cmd.AddCommand(newInsightsWorkflowsCommand())
	cmd.AddCommand(newInsightsWorkflowRunsCommand())
	cmd.AddCommand(newInsightsJobsCommand())
	cmd.AddCommand(newInsightsJobRunsCommand())
	cmd.AddCommand(newInsightsTestMetricsCommand())

	return cmd
}

// insightsParams builds the query shared by the insights listings.
func insightsParams(branch, window string, allBranches bool) *circleci.QueryParams {
	params := circleci.NewQueryParams()

	if branch != "" {
		params.WithBranch(branch)
	}

	if window != "" {
		params.WithReportingWindow(window)
	}

	if allBranches {
		params.WithAllBranches(true)
	}

	return params
}

func newInsightsBranchesCommand() *cobra.Command {
	var workflowName string

	cmd := &cobra.Command{
		Use:   "branches PROJECT",
		Short: "List tracked branches",
		Long:  "List the branches insights tracks for a project",
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

			params := circleci.NewQueryParams()
			if workflowName != "" {
				params.WithWorkflowName(workflowName)
			}

			branches, err := client.Insights().Branches(context.Background(), slug, params)
			if err != nil {
				return fmt.Errorf("failed to list branches: %w", err)
			}

			return renderOutput(branches, func() error {
				if len(branches.Branches) == 0 {
					_, _ = os.Stdout.WriteString("No branches found\n")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Branch")

				for _, branch := range branches.Branches {
					_ = table.Append(branch)
				}

				_ = table.Render()

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&workflowName, "workflow", "", "only list branches that ran this workflow")

	return cmd
}

func newInsightsWorkflowsCommand() *cobra.Command {
	var (
		branch      string
		allBranches bool
		window      string
		allPages    bool
	)

	cmd := &cobra.Command{
		Use:   "workflows PROJECT",
		Short: "Show workflow metrics",
		Long:  "Display aggregated success and duration metrics per workflow",
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
			params := insightsParams(branch, window, allBranches)

			if allPages {
				metrics, err := client.Insights().WorkflowMetricsAll(ctx, slug, params, nil)
				if err != nil {
					return fmt.Errorf("failed to get workflow metrics: %w", err)
				}

				return outputWorkflowMetrics(metrics, "")
			}

			page, err := client.Insights().WorkflowMetrics(ctx, slug, params)
			if err != nil {
				return fmt.Errorf("failed to get workflow metrics: %w", err)
			}

			return outputWorkflowMetrics(page.Items, page.NextPageToken)
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "scope metrics to one branch")
	cmd.Flags().BoolVar(&allBranches, "all-branches", false, "aggregate across all branches")
	cmd.Flags().StringVar(&window, "reporting-window", "", "reporting window (e.g. last-7-days, last-90-days)")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func outputWorkflowMetrics(metrics []circleci.WorkflowMetricsSummary, nextPageToken string) error {
	return renderOutput(metrics, func() error {
		if len(metrics) == 0 {
			_, _ = os.Stdout.WriteString("No workflow metrics found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Workflow", "Runs", "Success Rate", "Median", "P95", "Credits")

		for _, summary := range metrics {
			_ = table.Append(
				summary.Name,
				strconv.FormatInt(summary.Metrics.TotalRuns, 10),
				formatPercent(summary.Metrics.SuccessRate),
				formatDurationSeconds(summary.Metrics.DurationMetrics.Median),
				formatDurationSeconds(summary.Metrics.DurationMetrics.P95),
				strconv.FormatInt(summary.Metrics.TotalCreditsUsed, 10),
			)
		}

		_ = table.Render()

		if nextPageToken != "" {
			_, _ = fmt.Fprintf(os.Stdout, "\nMore results available. Use --all to fetch all pages.\n")
		}

		return nil
	})
}

// formatPercent renders a 0..1 rate as a percentage.
func formatPercent(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', 1, 64) + "%"
}

func newInsightsWorkflowRunsCommand() *cobra.Command {
	var (
		branch     string
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "workflow-runs PROJECT WORKFLOW",
		Short: "List recent workflow runs",
		Long:  "List recent runs of a workflow with status and duration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			slug, err := resolveProjectSlug(args[0])
			if err != nil {
				return err
			}

			params := circleci.NewQueryParams()
			if branch != "" {
				params.WithBranch(branch)
			}

			if start != "" || end != "" {
				params.WithDateRange(start, end)
			}

			page, err := client.Insights().WorkflowRuns(context.Background(), slug, args[1], params)
			if err != nil {
				return fmt.Errorf("failed to list workflow runs: %w", err)
			}

			return renderOutput(page.Items, func() error {
				if len(page.Items) == 0 {
					_, _ = os.Stdout.WriteString("No workflow runs found\n")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Status", "Branch", "Duration", "Credits", "Created", "ID")

				for _, run := range page.Items {
					_ = table.Append(
						run.Status,
						orNA(run.Branch),
						formatDurationSeconds(run.Duration),
						strconv.FormatInt(run.CreditsUsed, 10),
						formatDate(run.CreatedAt),
						run.ID,
					)
				}

				_ = table.Render()

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "scope runs to one branch")
	cmd.Flags().StringVar(&start, "start", "", "window start date (RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "window end date (RFC 3339)")

	return cmd
}

func newInsightsJobsCommand() *cobra.Command {
	var window string

	cmd := &cobra.Command{
		Use:   "jobs PROJECT WORKFLOW",
		Short: "Show job metrics",
		Long:  "Display aggregated success and duration metrics per job within a workflow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			slug, err := resolveProjectSlug(args[0])
			if err != nil {
				return err
			}

			params := insightsParams("", window, false)

			page, err := client.Insights().JobMetrics(context.Background(), slug, args[1], params)
			if err != nil {
				return fmt.Errorf("failed to get job metrics: %w", err)
			}

			return renderOutput(page.Items, func() error {
				if len(page.Items) == 0 {
					_, _ = os.Stdout.WriteString("No job metrics found\n")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Job", "Runs", "Success Rate", "Median", "P95", "Credits")

				for _, summary := range page.Items {
					_ = table.Append(
						summary.Name,
						strconv.FormatInt(summary.Metrics.TotalRuns, 10),
						formatPercent(summary.Metrics.SuccessRate),
						formatDurationSeconds(summary.Metrics.DurationMetrics.Median),
						formatDurationSeconds(summary.Metrics.DurationMetrics.P95),
						strconv.FormatInt(summary.Metrics.TotalCreditsUsed, 10),
					)
				}

				_ = table.Render()

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&window, "reporting-window", "", "reporting window (e.g. last-7-days, last-90-days)")

	return cmd
}

func newInsightsJobRunsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "job-runs PROJECT WORKFLOW JOB",
		Short: "List recent job runs",
		Long:  "List recent runs of a job within a workflow",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			slug, err := resolveProjectSlug(args[0])
			if err != nil {
				return err
			}

			page, err := client.Insights().JobRuns(context.Background(), slug, args[1], args[2], nil)
			if err != nil {
				return fmt.Errorf("failed to list job runs: %w", err)
			}

			return renderOutput(page.Items, func() error {
				if len(page.Items) == 0 {
					_, _ = os.Stdout.WriteString("No job runs found\n")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Status", "Duration", "Credits", "Started", "ID")

				for _, run := range page.Items {
					_ = table.Append(
						run.Status,
						formatDurationSeconds(run.Duration),
						strconv.FormatInt(run.CreditsUsed, 10),
						formatTime(run.StartedAt),
						run.ID,
					)
				}

				_ = table.Render()

				return nil
			})
		},
	}
}

func newInsightsTestMetricsCommand() *cobra.Command {
	var branch string

	cmd := &cobra.Command{
		Use:   "test-metrics PROJECT WORKFLOW",
		Short: "Show test metrics",
		Long:  "Display aggregated test metrics for a workflow, including the most failed tests",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			slug, err := resolveProjectSlug(args[0])
			if err != nil {
				return err
			}

			params := circleci.NewQueryParams()
			if branch != "" {
				params.WithBranch(branch)
			}

			report, err := client.Insights().WorkflowTestMetrics(context.Background(), slug, args[1], params)
			if err != nil {
				return fmt.Errorf("failed to get test metrics: %w", err)
			}

			return outputTestMetricsReport(report)
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "scope metrics to one branch")

	return cmd
}

func outputTestMetricsReport(report *circleci.TestMetricsReport) error {
	return renderOutput(report, func() error {
		_, _ = fmt.Fprintf(os.Stdout, "Total test runs: %d (average %.1f tests per run)\n\n",
			report.TotalTestRuns, report.AverageTestCount)

		if len(report.MostFailedTests) == 0 {
			_, _ = os.Stdout.WriteString("No failing tests recorded\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Test", "Job", "Runs", "Failed", "Flaky", "P95 (s)")

		for _, test := range report.MostFailedTests {
			_ = table.Append(
				truncate(test.TestName, 60),
				orNA(test.JobName),
				strconv.FormatInt(test.TotalRuns, 10),
				strconv.FormatInt(test.FailedRuns, 10),
				strconv.FormatBool(test.Flaky),
				strconv.FormatFloat(test.P95Duration, 'f', 2, 64),
			)
		}

		_ = table.Render()

		return nil
	})
}
