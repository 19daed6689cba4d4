package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/restaurant_backoffice/internal/app"
	"github.com/Skotchmaster/restaurant_backoffice/internal/pages"
)

func ReservationsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reservations",
		Aliases: []string{"reservation"},
		Short:   "Review table reservations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List reservations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return inBackoffice(cmd, flags, func(ctx context.Context, a *app.App) error {
				items, err := a.API.ListReservations(ctx)
				if err != nil {
					return err
				}
				pages.Reservations(cmd.OutOrStdout(), items)
				return nil
			})
		},
	})
	cmd.AddCommand(reservationStatusCmd(flags, "accept", "accepted"))
	cmd.AddCommand(reservationStatusCmd(flags, "reject", "rejected"))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return inBackoffice(cmd, flags, func(ctx context.Context, a *app.App) error {
				if err := a.API.DeleteReservation(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reservation %d deleted.\n", id)
				return nil
			})
		},
	})
	return cmd
}

func reservationStatusCmd(flags *rootFlags, verb, status string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: "Mark a reservation as " + status,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return inBackoffice(cmd, flags, func(ctx context.Context, a *app.App) error {
				res, err := a.API.UpdateReservation(ctx, id, status)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reservation %d for %s is now %s.\n", res.ID, res.Name, res.Status)
				return nil
			})
		},
	}
}

// inBackoffice runs fn only when the guard lets the session into the back
// office.
func inBackoffice(cmd *cobra.Command, flags *rootFlags, fn func(ctx context.Context, a *app.App) error) error {
	return run(cmd, flags, func(ctx context.Context, a *app.App) error {
		ok, err := enterBackoffice(ctx, cmd, a)
		if err != nil || !ok {
			return err
		}
		return fn(ctx, a)
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
