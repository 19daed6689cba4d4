package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/restaurant_backoffice/internal/apiclient"
	"github.com/Skotchmaster/restaurant_backoffice/internal/app"
	"github.com/Skotchmaster/restaurant_backoffice/internal/pages"
)

func SchedulesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"schedule"},
		Short:   "Manage exceptional openings and closings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List exceptional openings and closings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return inBackoffice(cmd, flags, func(ctx context.Context, a *app.App) error {
				items, err := a.API.ListSchedules(ctx)
				if err != nil {
					return err
				}
				pages.Schedules(cmd.OutOrStdout(), items)
				return nil
			})
		},
	})
	cmd.AddCommand(scheduleCreateCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an exceptional opening or closing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return inBackoffice(cmd, flags, func(ctx context.Context, a *app.App) error {
				if err := a.API.DeleteSchedule(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schedule %d deleted.\n", id)
				return nil
			})
		},
	})
	return cmd
}

func scheduleCreateCmd(flags *rootFlags) *cobra.Command {
	in := apiclient.ScheduleInput{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an exceptional opening or closing",
		Example: `  backoffice schedules create --type open --start 2030-01-06 --moment lunch
  backoffice schedules create --type closed --start 2030-01-08 --end 2030-01-12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Mode == "" {
				in.Mode = "single"
				if in.EndDate != "" {
					in.Mode = "range"
				}
			}
			return inBackoffice(cmd, flags, func(ctx context.Context, a *app.App) error {
				sch, err := a.API.CreateSchedule(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schedule %d created.\n", sch.ID)
				pages.Schedules(cmd.OutOrStdout(), []apiclient.Schedule{*sch})
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Type, "type", "", "open or closed")
	cmd.Flags().StringVar(&in.Mode, "mode", "", "single or range (default: range when --end is set)")
	cmd.Flags().StringVar(&in.StartDate, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&in.EndDate, "end", "", "last day of a range, YYYY-MM-DD")
	cmd.Flags().StringVar(&in.Moment, "moment", "", "lunch, dinner or full_day (single dates only)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}
