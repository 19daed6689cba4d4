package routes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
	"github.com/Skotchmaster/restaurant_backoffice/internal/session"
	"github.com/Skotchmaster/restaurant_backoffice/internal/tokenstore"
)

// AdminChecker asks the backend whether the current credentials belong to a
// staff user.
type AdminChecker interface {
	CheckAdmin(ctx context.Context) (bool, error)
}

// Decision is the outcome of a guarded transition. An empty Redirect means
// the navigation proceeds.
type Decision struct {
	Redirect string
}

func (d Decision) Proceed() bool { return d.Redirect == "" }

func proceed() Decision { return Decision{} }

func redirect(path string) Decision { return Decision{Redirect: path} }

type Guard struct {
	session *session.Session
	checker AdminChecker
	logger  *slog.Logger
}

func NewGuard(s *session.Session, checker AdminChecker, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Guard{session: s, checker: checker, logger: logger}
}

// Decide evaluates the rules in order; the first one that applies wins.
// The returned error is reserved for token store failures.
func (g *Guard) Decide(ctx context.Context, to Match) (Decision, error) {
	authenticated, err := g.session.IsAuthenticated(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("read session: %w", err)
	}
	admin, err := g.session.IsAdmin(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("read session: %w", err)
	}
	meta := to.Route.Meta

	if meta.RequiresAuth && !authenticated {
		g.logger.Info("navigation_denied", "path", to.Path, "reason", "unauthenticated")
		if err := g.session.Store().Remove(ctx, tokenstore.IsAdmin); err != nil {
			return Decision{}, err
		}
		return redirect(LoginPath), nil
	}

	if meta.RequiresAdmin && authenticated && !admin {
		return g.verifyAdmin(ctx, to)
	}

	if meta.RequiresAdmin && !authenticated {
		g.logger.Info("navigation_denied", "path", to.Path, "reason", "unauthenticated")
		return redirect(LoginPath), nil
	}

	if to.Route.Path == LoginPath && authenticated && admin {
		return redirect(BackofficePath), nil
	}

	return proceed(), nil
}

// verifyAdmin blocks the transition on the remote admin check. Anything but
// a positive answer ends the session.
func (g *Guard) verifyAdmin(ctx context.Context, to Match) (Decision, error) {
	ok, err := g.checker.CheckAdmin(ctx)
	if err == nil && ok {
		if err := g.session.SetAdmin(ctx, true); err != nil {
			return Decision{}, err
		}
		g.logger.Info("admin_verified", "path", to.Path)
		return proceed(), nil
	}

	if err != nil {
		g.logger.Error("admin_check_failed", "path", to.Path, "error", err)
	} else {
		g.logger.Warn("navigation_denied", "path", to.Path, "reason", "not_admin")
	}
	if err := g.session.Purge(ctx); err != nil {
		return Decision{}, err
	}
	return redirect(LoginPath), nil
}
