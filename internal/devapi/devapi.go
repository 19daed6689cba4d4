// Package devapi assembles the local back-office API: the gorm repository,
// the services and the echo router.
package devapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/httpserver"
	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/repo"
	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/service"
	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
	"github.com/Skotchmaster/restaurant_backoffice/internal/middleware/csrf"
)

type Options struct {
	DB        *gorm.DB
	JWTSecret []byte
	Logger    *slog.Logger
	Events    service.Publisher
	Mailer    service.Mailer
	LinkBase  string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

type Server struct {
	Echo       *echo.Echo
	Repo       *repo.GormRepo
	Auth       *service.AuthService
	Password   *service.PasswordService
	Backoffice *service.BackofficeService
	Mailer     service.Mailer
}

func New(opts Options) (*Server, error) {
	if opts.DB == nil {
		return nil, errors.New("devapi: nil database")
	}
	if len(opts.JWTSecret) == 0 {
		return nil, errors.New("devapi: empty JWT secret")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Mailer == nil {
		opts.Mailer = &service.LogMailer{Logger: opts.Logger}
	}

	r, err := repo.New(opts.DB)
	if err != nil {
		return nil, err
	}

	s := &Server{Repo: r, Mailer: opts.Mailer}
	s.Auth = &service.AuthService{
		Repo: r,
		Tokens: &service.Tokens{
			Secret:     opts.JWTSecret,
			AccessTTL:  opts.AccessTTL,
			RefreshTTL: opts.RefreshTTL,
			Now:        opts.Now,
		},
	}
	s.Password = &service.PasswordService{Repo: r, Mailer: opts.Mailer, LinkBase: opts.LinkBase, Now: opts.Now}
	s.Backoffice = &service.BackofficeService{Repo: r, Events: opts.Events}

	s.Echo = httpserver.New(&httpserver.Deps{
		Logger:     opts.Logger,
		JWTSecret:  opts.JWTSecret,
		CSRF:       csrf.DefaultConfig(),
		Auth:       s.Auth,
		Password:   s.Password,
		Backoffice: s.Backoffice,
	})
	return s, nil
}

// SeedAdmin creates a staff account unless the username is taken.
func (s *Server) SeedAdmin(ctx context.Context, username, email, password string) error {
	return s.Auth.EnsureUser(ctx, username, email, password, true)
}
