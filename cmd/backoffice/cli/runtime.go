package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/restaurant_backoffice/internal/apiclient"
	"github.com/Skotchmaster/restaurant_backoffice/internal/app"
	"github.com/Skotchmaster/restaurant_backoffice/internal/config"
	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
	"github.com/Skotchmaster/restaurant_backoffice/internal/pages"
	"github.com/Skotchmaster/restaurant_backoffice/internal/routes"
)

// newApp is replaced in tests to point the CLI at an in-process API.
var newApp = func(ctx context.Context, flags *rootFlags, stderr io.Writer) (*app.App, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, err
	}
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	logger := logging.New(cfg.LogLevel, stderr).With("app", "backoffice")
	return app.New(ctx, cfg, app.WithLogger(logger))
}

// run builds the app, drops stale credentials, runs fn and finally follows
// any hard navigation fn caused, rendering the page it lands on.
func run(cmd *cobra.Command, flags *rootFlags, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		a.Logger.Warn("token_cleanup_failed", "error", err)
	}

	runErr := fn(ctx, a)

	m, pending, err := a.Settle(ctx)
	if err != nil {
		return errors.Join(runErr, err)
	}
	if pending {
		if app.LoggedOut(runErr) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Your session has ended. Please sign in again.")
		}
		if err := renderMatch(ctx, cmd, a, m); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return describe(runErr)
}

// open navigates and renders, the way following a link in the SPA does.
func open(ctx context.Context, cmd *cobra.Command, a *app.App, path string) (routes.Match, error) {
	m, err := a.Open(ctx, path)
	if err != nil {
		return routes.Match{}, err
	}
	return m, renderMatch(ctx, cmd, a, m)
}

func renderMatch(ctx context.Context, cmd *cobra.Command, a *app.App, m routes.Match) error {
	return pages.Render(ctx, cmd.OutOrStdout(), m, a.API)
}

// enterBackoffice runs the guard for the back-office page. When the guard
// redirects, the landing page is rendered and ok is false.
func enterBackoffice(ctx context.Context, cmd *cobra.Command, a *app.App) (ok bool, err error) {
	m, err := a.Open(ctx, routes.BackofficePath)
	if err != nil {
		return false, err
	}
	if m.Route.Path == routes.BackofficePath {
		return true, a.EnsureCSRF(ctx)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "The back office requires an administrator session.")
	return false, renderMatch(ctx, cmd, a, m)
}

func describe(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && !app.LoggedOut(err) {
		return fmt.Errorf("%s: %s", apiErr.Op, apiErr.Detail())
	}
	return err
}
