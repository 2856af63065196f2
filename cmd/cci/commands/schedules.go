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

// NewSchedulesCommand creates the schedules command group.
func NewSchedulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"schedule"},
		Short:   "Manage pipeline schedules",
		Long:    "List, create, update, and delete the schedules that trigger pipelines on a project",
	}

	cmd.AddCommand(newSchedulesListCommand())
	cmd.AddCommand(newSchedulesGetCommand())
	cmd.AddCommand(newSchedulesCreateCommand())
	cmd.AddCommand(newSchedulesUpdateCommand())
	cmd.AddCommand(newSchedulesDeleteCommand())

	return cmd
}

func newSchedulesListCommand() *cobra.Command {
	var allPages bool

	cmd := &cobra.Command{
		Use:   "list PROJECT",
		Short: "List schedules",
		Long:  "List the schedules configured on a project (org/repo or vcs/org/repo)",
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

			if allPages {
				schedules, err := client.Schedules().ListAll(ctx, slug, nil)
				if err != nil {
					return fmt.Errorf("failed to list schedules: %w", err)
				}

				return outputSchedules(schedules, "")
			}

			page, err := client.Schedules().List(ctx, slug, nil)
			if err != nil {
				return fmt.Errorf("failed to list schedules: %w", err)
			}

			return outputSchedules(page.Items, page.NextPageToken)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func outputSchedules(schedules []circleci.Schedule, nextPageToken string) error {
	return renderOutput(schedules, func() error {
		if len(schedules) == 0 {
			_, _ = os.Stdout.WriteString("No schedules found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Name", "Timetable", "Actor", "ID")

		for _, schedule := range schedules {
			actor := NotAvailable
			if schedule.Actor != nil {
				actor = orNA(schedule.Actor.Login)
			}

			_ = table.Append(schedule.Name, formatTimetable(schedule.Timetable), actor, schedule.ID)
		}

		_ = table.Render()

		if nextPageToken != "" {
			_, _ = fmt.Fprintf(os.Stdout, "\nMore results available. Use --all to fetch all pages.\n")
		}

		return nil
	})
}

// formatTimetable renders a one-line summary of when a schedule fires.
func formatTimetable(timetable *circleci.Timetable) string {
	if timetable == nil {
		return NotAvailable
	}

	hours := make([]string, 0, len(timetable.HoursOfDay))
	for _, hour := range timetable.HoursOfDay {
		hours = append(hours, fmt.Sprintf("%02d:00", hour))
	}

	summary := fmt.Sprintf("%dx/h at %s", timetable.PerHour, strings.Join(hours, ","))

	switch {
	case len(timetable.DaysOfWeek) > 0:
		summary += " on " + strings.Join(timetable.DaysOfWeek, ",")
	case len(timetable.DaysOfMonth) > 0:
		days := make([]string, 0, len(timetable.DaysOfMonth))
		for _, day := range timetable.DaysOfMonth {
			days = append(days, strconv.Itoa(day))
		}

		summary += " on day " + strings.Join(days, ",")
	}

	if len(timetable.Months) > 0 {
		summary += " in " + strings.Join(timetable.Months, ",")
	}

	return summary
}

func newSchedulesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SCHEDULE_ID",
		Short: "Get schedule details",
		Long:  "Display a schedule by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			schedule, err := client.Schedules().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get schedule: %w", err)
			}

			return outputScheduleDetails(schedule)
		},
	}
}

func outputScheduleDetails(schedule *circleci.Schedule) error {
	return renderOutput(schedule, func() error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("Name", schedule.Name)
		_ = table.Append("Description", orNA(schedule.Description))
		_ = table.Append("Project", orNA(schedule.ProjectSlug))
		_ = table.Append("Timetable", formatTimetable(schedule.Timetable))

		if schedule.Actor != nil {
			_ = table.Append("Actor", orNA(schedule.Actor.Login))
		}

		_ = table.Append("Created", formatTime(schedule.CreatedAt))
		_ = table.Append("Updated", formatTime(schedule.UpdatedAt))
		_ = table.Append("ID", schedule.ID)

		return table.Render()
	})
}

// timetableFromFlags assembles the full timetable a create or update sends.
func timetableFromFlags(perHour int, hoursOfDay []int, daysOfWeek []string, daysOfMonth []int, months []string) circleci.Timetable {
	return circleci.Timetable{
		PerHour:     perHour,
		HoursOfDay:  hoursOfDay,
		DaysOfWeek:  daysOfWeek,
		DaysOfMonth: daysOfMonth,
		Months:      months,
	}
}

func newSchedulesCreateCommand() *cobra.Command {
	var (
		description      string
		attributionActor string
		perHour          int
		hoursOfDay       []int
		daysOfWeek       []string
		daysOfMonth      []int
		months           []string
		paramPairs       []string
	)

	cmd := &cobra.Command{
		Use:   "create PROJECT NAME",
		Short: "Create a schedule",
		Long:  "Create a schedule that triggers pipelines on a project at the given timetable",
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

			parameters, err := parseKeyValues(paramPairs)
			if err != nil {
				return err
			}

			request := &circleci.CreateScheduleRequest{
				Name:             args[1],
				Timetable:        timetableFromFlags(perHour, hoursOfDay, daysOfWeek, daysOfMonth, months),
				AttributionActor: attributionActor,
				Description:      description,
			}
			if len(parameters) > 0 {
				request.Parameters = parameters
			}

			schedule, err := client.Schedules().Create(context.Background(), slug, request)
			if err != nil {
				return fmt.Errorf("failed to create schedule: %w", err)
			}

			fmt.Printf("Created schedule %s (%s)\n", schedule.Name, schedule.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "schedule description")
	cmd.Flags().StringVar(&attributionActor, "attribution-actor", "current", "actor scheduled pipelines run as (current or system)")
	cmd.Flags().IntVar(&perHour, "per-hour", 1, "times per hour the schedule fires")
	cmd.Flags().IntSliceVar(&hoursOfDay, "hours-of-day", nil, "hours of the day (0-23) the schedule fires")
	cmd.Flags().StringSliceVar(&daysOfWeek, "days-of-week", nil, "days of the week (MON..SUN) the schedule fires")
	cmd.Flags().IntSliceVar(&daysOfMonth, "days-of-month", nil, "days of the month (1-31) the schedule fires")
	cmd.Flags().StringSliceVar(&months, "months", nil, "months (JAN..DEC) the schedule fires")
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "pipeline parameter as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("hours-of-day")

	return cmd
}

func newSchedulesUpdateCommand() *cobra.Command {
	var (
		name             string
		description      string
		attributionActor string
		perHour          int
		hoursOfDay       []int
		daysOfWeek       []string
		daysOfMonth      []int
		months           []string
		paramPairs       []string
	)

	cmd := &cobra.Command{
		Use:   "update SCHEDULE_ID",
		Short: "Update a schedule",
		Long:  "Update fields of a schedule; timetable flags replace the whole timetable when any is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			request := &circleci.UpdateScheduleRequest{
				Name:             name,
				AttributionActor: attributionActor,
				Description:      description,
			}

			timetableChanged := cmd.Flags().Changed("per-hour") ||
				cmd.Flags().Changed("hours-of-day") ||
				cmd.Flags().Changed("days-of-week") ||
				cmd.Flags().Changed("days-of-month") ||
				cmd.Flags().Changed("months")
			if timetableChanged {
				timetable := timetableFromFlags(perHour, hoursOfDay, daysOfWeek, daysOfMonth, months)
				request.Timetable = &timetable
			}

			if len(paramPairs) > 0 {
				parameters, err := parseKeyValues(paramPairs)
				if err != nil {
					return err
				}

				request.Parameters = parameters
			}

			schedule, err := client.Schedules().Update(context.Background(), args[0], request)
			if err != nil {
				return fmt.Errorf("failed to update schedule: %w", err)
			}

			fmt.Printf("Updated schedule %s (%s)\n", schedule.Name, schedule.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new schedule name")
	cmd.Flags().StringVar(&description, "description", "", "new schedule description")
	cmd.Flags().StringVar(&attributionActor, "attribution-actor", "", "actor scheduled pipelines run as (current or system)")
	cmd.Flags().IntVar(&perHour, "per-hour", 1, "times per hour the schedule fires")
	cmd.Flags().IntSliceVar(&hoursOfDay, "hours-of-day", nil, "hours of the day (0-23) the schedule fires")
	cmd.Flags().StringSliceVar(&daysOfWeek, "days-of-week", nil, "days of the week (MON..SUN) the schedule fires")
	cmd.Flags().IntSliceVar(&daysOfMonth, "days-of-month", nil, "days of the month (1-31) the schedule fires")
	cmd.Flags().StringSliceVar(&months, "months", nil, "months (JAN..DEC) the schedule fires")
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "pipeline parameter as key=value (repeatable)")

	return cmd
}

func newSchedulesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete SCHEDULE_ID",
		Short: "Delete a schedule",
		Long:  "Delete a schedule by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(context.Background())
			if err != nil {
				return err
			}

			message, err := client.Schedules().Delete(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete schedule: %w", err)
			}

			fmt.Println(message.Message)

			return nil
		},
	}
}
