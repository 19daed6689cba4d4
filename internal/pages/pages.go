// Package pages renders the back-office routes as text.
package pages

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/Skotchmaster/restaurant_backoffice/internal/apiclient"
	"github.com/Skotchmaster/restaurant_backoffice/internal/routes"
)

// Backoffice is the part of the API the back-office page reads.
type Backoffice interface {
	ListReservations(ctx context.Context) ([]apiclient.Reservation, error)
	ListSchedules(ctx context.Context) ([]apiclient.Schedule, error)
}

var (
	title = color.New(color.Bold).SprintFunc()
	hint  = color.New(color.FgHiBlack).SprintFunc()
)

// Render writes the page for m. Only the back-office page calls the API.
func Render(ctx context.Context, w io.Writer, m routes.Match, api Backoffice) error {
	switch m.Route.Name {
	case "Login":
		fmt.Fprintln(w, title("Login"))
		fmt.Fprintln(w, hint("Sign in with: backoffice login --username <name>"))
		fmt.Fprintln(w, hint("Forgot your password? backoffice forgot-password --email <address>"))
	case "ForgotPassword":
		fmt.Fprintln(w, title("Forgot password"))
		fmt.Fprintln(w, hint("Request a reset link with: backoffice forgot-password --email <address>"))
	case "ResetPassword":
		fmt.Fprintln(w, title("Reset password"))
		fmt.Fprintf(w, "uidb64: %s\ntoken:  %s\n", m.Params["uidb64"], m.Params["token"])
		fmt.Fprintln(w, hint("Choose a new password with: backoffice reset-password <uidb64> <token>"))
	case "Backoffice":
		return renderBackoffice(ctx, w, api)
	default:
		fmt.Fprintln(w, title(m.Path))
	}
	return nil
}

func renderBackoffice(ctx context.Context, w io.Writer, api Backoffice) error {
	reservations, err := api.ListReservations(ctx)
	if err != nil {
		return err
	}
	schedules, err := api.ListSchedules(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, title("Back office"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, title("Reservations"))
	Reservations(w, reservations)
	fmt.Fprintln(w)
	fmt.Fprintln(w, title("Exceptional openings and closings"))
	Schedules(w, schedules)
	return nil
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
}

func Reservations(w io.Writer, items []apiclient.Reservation) {
	if len(items) == 0 {
		fmt.Fprintln(w, hint("No reservations."))
		return
	}
	tw := newTabWriter(w)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tNAME\tDATE\tTIME\tGUESTS\tSTATUS")
	for _, r := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", r.ID, r.Name, r.Date, r.Time, r.PartySize, status(r.Status))
	}
}

func Schedules(w io.Writer, items []apiclient.Schedule) {
	if len(items) == 0 {
		fmt.Fprintln(w, hint("No exceptional openings or closings."))
		return
	}
	tw := newTabWriter(w)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTYPE\tFROM\tTO\tMOMENT")
	for _, s := range items {
		end := "-"
		if s.EndDate != nil {
			end = *s.EndDate
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Type, s.StartDate, end, s.Moment)
	}
}

func status(s string) string {
	switch s {
	case "accepted":
		return color.GreenString(s)
	case "rejected":
		return color.RedString(s)
	default:
		return color.YellowString(s)
	}
}
