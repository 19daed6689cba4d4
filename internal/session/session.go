// Package session owns the credentials kept in the token store: it checks
// token expiry, drops expired entries and purges everything on logout.
// Guard and request pipeline share one *Session instead of reaching for
// global storage.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
	"github.com/Skotchmaster/restaurant_backoffice/internal/tokenstore"
)

const adminValue = "true"

type Session struct {
	store  tokenstore.Store
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func New(store tokenstore.Store, opts ...Option) *Session {
	s := &Session{
		store:  store,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) Store() tokenstore.Store { return s.store }

func (s *Session) Now() time.Time { return s.now() }

func (s *Session) IsExpired(token string) bool {
	return IsExpired(token, s.now())
}

func (s *Session) AccessToken(ctx context.Context) (string, bool, error) {
	return s.get(ctx, tokenstore.AccessToken)
}

func (s *Session) RefreshToken(ctx context.Context) (string, bool, error) {
	return s.get(ctx, tokenstore.RefreshToken)
}

func (s *Session) get(ctx context.Context, key tokenstore.Key) (string, bool, error) {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if v == "" {
		return "", false, nil
	}
	return v, ok, nil
}

func (s *Session) IsAuthenticated(ctx context.Context) (bool, error) {
	_, ok, err := s.AccessToken(ctx)
	return ok, err
}

func (s *Session) IsAdmin(ctx context.Context) (bool, error) {
	v, _, err := s.store.Get(ctx, tokenstore.IsAdmin)
	if err != nil {
		return false, err
	}
	return v == adminValue, nil
}

func (s *Session) SetAdmin(ctx context.Context, admin bool) error {
	if admin {
		return s.store.Set(ctx, tokenstore.IsAdmin, adminValue)
	}
	return s.store.Remove(ctx, tokenstore.IsAdmin)
}

func (s *Session) SetTokens(ctx context.Context, access, refresh string) error {
	if err := s.store.Set(ctx, tokenstore.AccessToken, access); err != nil {
		return err
	}
	return s.store.Set(ctx, tokenstore.RefreshToken, refresh)
}

func (s *Session) SetAccessToken(ctx context.Context, access string) error {
	return s.store.Set(ctx, tokenstore.AccessToken, access)
}

// ClearExpiredTokens removes each expired token on its own, and the admin
// flag whenever no live access token remains.
func (s *Session) ClearExpiredTokens(ctx context.Context) error {
	now := s.now()

	access, hasAccess, err := s.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}
	refresh, hasRefresh, err := s.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("read refresh token: %w", err)
	}

	accessExpired := hasAccess && IsExpired(access, now)
	if accessExpired {
		s.logger.Info("access_token_expired", "action", "remove")
		if err := s.store.Remove(ctx, tokenstore.AccessToken); err != nil {
			return err
		}
	}

	if hasRefresh && IsExpired(refresh, now) {
		s.logger.Info("refresh_token_expired", "action", "remove")
		if err := s.store.Remove(ctx, tokenstore.RefreshToken); err != nil {
			return err
		}
	}

	if !hasAccess || accessExpired {
		if err := s.store.Remove(ctx, tokenstore.IsAdmin); err != nil {
			return err
		}
	}
	return nil
}

// Purge removes every session key. All keys are attempted even when one fails.
func (s *Session) Purge(ctx context.Context) error {
	var errs []error
	for _, k := range tokenstore.Keys {
		if err := s.store.Remove(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
