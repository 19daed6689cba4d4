package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/models"
	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/service"
	"github.com/Skotchmaster/restaurant_backoffice/internal/jwtmiddleware"
	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
)

type UserLoader interface {
	User(ctx context.Context, userID uint) (*models.User, error)
}

// RequireStaff runs after jwtmiddleware. It accepts access tokens only and
// answers 403 for authenticated users without staff rights.
func RequireStaff(users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx)

			tok, ok := jwtmiddleware.Token(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"detail": "Authentication credentials were not provided."})
			}
			claims, ok := tok.Claims.(*service.Claims)
			if !ok || claims.TokenType != service.TokenTypeAccess {
				l.Warn("auth_rejected", "status", 401, "reason", "not an access token")
				return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"detail": "Token has wrong type"})
			}

			user, err := users.User(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, service.ErrInvalidToken) {
					return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"detail": "User not found"})
				}
				return err
			}
			if !user.IsStaff {
				l.Warn("auth_rejected", "status", 403, "reason", "not staff", "user_id", user.ID)
				return echo.NewHTTPError(http.StatusForbidden, echo.Map{"detail": service.ErrForbidden.Error()})
			}

			c.Set("user_id", user.ID)
			return next(c)
		}
	}
}
