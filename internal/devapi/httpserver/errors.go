package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/service"
)

// httpError maps service errors onto the response shapes the front end
// expects: field errors as {"field": ["message"]}, the rest as {"detail": ...}.
func httpError(err error) error {
	var fe *service.FieldError
	switch {
	case errors.As(err, &fe):
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{fe.Field: []string{fe.Message}})
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, echo.Map{"detail": "Not found."})
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"detail": service.ErrInvalidCredentials.Error()})
	case errors.Is(err, service.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"detail": "Token is invalid or expired", "code": "token_not_valid"})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"error": msg})
}
