package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/restaurant_backoffice/internal/app"
	"github.com/Skotchmaster/restaurant_backoffice/internal/routes"
	"github.com/Skotchmaster/restaurant_backoffice/internal/session"
	"github.com/Skotchmaster/restaurant_backoffice/internal/tokenstore"
)

func OpenCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [path]",
		Short: "Navigate to a page and render it",
		Long:  `Navigate to a page (default "/") through the route guard and render where navigation lands.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd, flags, func(ctx context.Context, a *app.App) error {
				_, err := open(ctx, cmd, a, path)
				return err
			})
		},
	}
	return cmd
}

func LoginCmd(flags *rootFlags) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and open the back office",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			if password == "" {
				var err error
				if password, err = promptForPassword("Password:", 1); err != nil {
					return err
				}
			}
			return run(cmd, flags, func(ctx context.Context, a *app.App) error {
				if _, err := a.API.Login(ctx, username, password); err != nil {
					return err
				}
				_, err := open(ctx, cmd, a, routes.BackofficePath)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func LogoutCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, func(ctx context.Context, a *app.App) error {
				m, err := a.Logout(ctx)
				if err != nil {
					return err
				}
				return renderMatch(ctx, cmd, a, m)
			})
		},
	}
	return cmd
}

func StatusCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				store := a.Session.Store()
				for _, k := range tokenstore.Keys {
					v, ok, err := store.Get(ctx, k)
					if err != nil {
						return err
					}
					switch {
					case !ok:
						fmt.Fprintf(out, "%-14s absent\n", k)
					case k == tokenstore.IsAdmin:
						fmt.Fprintf(out, "%-14s %s\n", k, v)
					default:
						fmt.Fprintf(out, "%-14s %s\n", k, expiry(v, a.Session.Now()))
					}
				}
				return nil
			})
		},
	}
	return cmd
}

func expiry(token string, now time.Time) string {
	exp, ok := session.Expiry(token)
	if !ok {
		return "present, unreadable expiry"
	}
	if session.IsExpired(token, now) {
		return "expired at " + exp.Format(time.RFC3339)
	}
	return "valid until " + exp.Format(time.RFC3339)
}
