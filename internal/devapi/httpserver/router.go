package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/service"
	"github.com/Skotchmaster/restaurant_backoffice/internal/jwtmiddleware"
	"github.com/Skotchmaster/restaurant_backoffice/internal/middleware/auth"
	"github.com/Skotchmaster/restaurant_backoffice/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/restaurant_backoffice/internal/middleware/logging"
)

type Deps struct {
	Logger     *slog.Logger
	JWTSecret  []byte
	CSRF       csrf.Config
	Auth       *service.AuthService
	Password   *service.PasswordService
	Backoffice *service.BackofficeService
}

// Register mounts the back-office API on e. Paths are declared without the
// trailing slash; RemoveTrailingSlash lets clients keep sending it.
func Register(e *echo.Echo, d *Deps) {
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(d.Logger, "/health/"))

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authH := &AuthHTTP{Svc: d.Auth, Password: d.Password}
	boH := &BackofficeHTTP{Svc: d.Backoffice}

	api := e.Group("/backoffice/api")

	api.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"reservations": "/backoffice/api/reservations/",
			"schedules":    "/backoffice/api/schedules/",
		})
	})
	api.POST("/login", authH.Login)
	api.POST("/token/refresh", authH.Refresh)
	api.GET("/get-csrf-token", csrf.Handler(d.CSRF))

	for _, g := range []*echo.Group{e.Group("/api/password-reset"), api.Group("/password-reset")} {
		g.POST("", authH.RequestPasswordReset)
		g.POST("/:user_id/:token", authH.ConfirmPasswordReset)
	}

	staff := api.Group("",
		jwtmiddleware.JWTMiddleware(d.JWTSecret, func(echo.Context) jwt.Claims { return &service.Claims{} }),
		auth.RequireStaff(d.Auth),
		csrf.Middleware(d.CSRF),
	)

	staff.GET("/check-admin", authH.CheckAdmin)

	staff.GET("/reservations", boH.ListReservations)
	staff.POST("/reservations", boH.CreateReservation)
	staff.GET("/reservations/:id", boH.GetReservation)
	staff.PATCH("/reservations/:id", boH.UpdateReservation)
	staff.PUT("/reservations/:id", boH.UpdateReservation)
	staff.DELETE("/reservations/:id", boH.DeleteReservation)

	staff.GET("/schedules", boH.ListSchedules)
	staff.POST("/schedules", boH.CreateSchedule)
	staff.GET("/schedules/:id", boH.GetSchedule)
	staff.PUT("/schedules/:id", boH.UpdateSchedule)
	staff.PATCH("/schedules/:id", boH.UpdateSchedule)
	staff.DELETE("/schedules/:id", boH.DeleteSchedule)
}

// New builds a ready-to-serve echo instance with the API registered.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	Register(e, d)
	return e
}
