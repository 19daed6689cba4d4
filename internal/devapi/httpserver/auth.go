package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/service"
	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
)

type AuthHTTP struct {
	Svc      *service.AuthService
	Password *service.PasswordService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}
	if req.Refresh == "" {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"refresh": []string{"This field is required."}})
	}

	access, err := h.Svc.Refresh(ctx, req.Refresh)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"access": access})
}

// CheckAdmin is reached only through RequireStaff.
func (h *AuthHTTP) CheckAdmin(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"is_admin": true})
}

func (h *AuthHTTP) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return badRequest("email is required")
	}

	msg, err := h.Password.RequestReset(ctx, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return badRequest("email is required")
		}
		logging.FromContext(ctx).Error("password_reset_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{"error": "the reset email could not be sent"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

func (h *AuthHTTP) ConfirmPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := service.ParseUserID(c.Param("user_id"))
	if err != nil {
		return badRequest("the token is invalid or expired")
	}

	var req struct {
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil || req.NewPassword == "" {
		return badRequest("password is required")
	}

	msg, err := h.Password.ConfirmReset(ctx, userID, c.Param("token"), req.NewPassword)
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return badRequest("the token is invalid or expired")
	case errors.Is(err, service.ErrValidation):
		return httpError(err)
	case err != nil:
		logging.FromContext(ctx).Error("password_confirm_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{"error": "the password could not be updated"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}
