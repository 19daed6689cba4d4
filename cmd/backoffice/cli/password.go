package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/restaurant_backoffice/internal/app"
)

func ForgotPasswordCmd(flags *rootFlags) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Ask for a password reset link",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			return run(cmd, flags, func(ctx context.Context, a *app.App) error {
				if _, err := a.Open(ctx, "/forgot-password"); err != nil {
					return err
				}
				msg, err := a.API.RequestPasswordReset(ctx, email)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "address of the account")
	return cmd
}

func ResetPasswordCmd(flags *rootFlags) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "reset-password <user-id> <token>",
		Short: "Set a new password from a reset link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, token := args[0], args[1]
			if password == "" {
				var err error
				if password, err = promptForPassword("New password (8+ characters):", 8); err != nil {
					return err
				}
			}
			return run(cmd, flags, func(ctx context.Context, a *app.App) error {
				m, err := a.Open(ctx, "/reset-password/"+uid+"/"+token)
				if err != nil {
					return err
				}
				msg, err := a.API.ConfirmPasswordReset(ctx, m.Params["uidb64"], m.Params["token"], password)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				_, err = open(ctx, cmd, a, "/login")
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "new password (prompted when empty)")
	return cmd
}
