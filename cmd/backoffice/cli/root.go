package cli

import (
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	envFile  string
	apiURL   string
	logLevel string
}

func RootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "backoffice",
		Short:         "Restaurant back-office client",
		Long:          `Sign in to the restaurant back office, review reservations and manage exceptional openings and closings.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "API base URL (overrides API_URL)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	cmd.AddCommand(OpenCmd(flags))
	cmd.AddCommand(LoginCmd(flags))
	cmd.AddCommand(LogoutCmd(flags))
	cmd.AddCommand(StatusCmd(flags))
	cmd.AddCommand(ForgotPasswordCmd(flags))
	cmd.AddCommand(ResetPasswordCmd(flags))
	cmd.AddCommand(ReservationsCmd(flags))
	cmd.AddCommand(SchedulesCmd(flags))

	return cmd
}

func InitAndExecute() {
	if err := RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
