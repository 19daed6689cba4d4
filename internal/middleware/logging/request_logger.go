package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/service"
	"github.com/Skotchmaster/restaurant_backoffice/internal/jwtmiddleware"
	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
)

// RequestLogger puts a request-scoped logger into the request context and
// writes one api_request line per request. Requests whose path starts with
// one of quiet are served without the summary line.
func RequestLogger(base *slog.Logger, quiet ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := base.With("method", req.Method, "route", c.Path())
			if rid := requestID(c); rid != "" {
				l = l.With("request_id", rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			if isQuiet(req.URL.Path, quiet) {
				return nil
			}

			status := c.Response().Status
			attrs := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			if c.Path() == "" || status == 404 {
				attrs = append(attrs, "url", req.URL.Path)
			}
			if uid, ok := userID(c); ok {
				attrs = append(attrs, "user_id", uid)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}

			switch {
			case status >= 500:
				l.Error("api_request", append(attrs, "remote_ip", c.RealIP())...)
			case status >= 400:
				l.Warn("api_request", append(attrs, "remote_ip", c.RealIP())...)
			default:
				l.Info("api_request", append(attrs, "bytes", c.Response().Size)...)
			}
			return nil
		}
	}
}

func requestID(c echo.Context) string {
	if rid := c.Request().Header.Get(echo.HeaderXRequestID); rid != "" {
		c.Response().Header().Set(echo.HeaderXRequestID, rid)
		return rid
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// userID is only known once the bearer middleware of the route has run.
func userID(c echo.Context) (uint, bool) {
	tok, ok := jwtmiddleware.Token(c)
	if !ok {
		return 0, false
	}
	claims, ok := tok.Claims.(*service.Claims)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

func isQuiet(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
