package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/models"
	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/repo"
	"github.com/Skotchmaster/restaurant_backoffice/internal/hash"
	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *Tokens
}

type LoginResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)
	if username == "" || password == "" {
		return nil, invalid("credentials", "username and password are required")
	}

	user, err := s.Repo.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "bad password")
		return nil, ErrInvalidCredentials
	}

	access, err := s.Tokens.Create(TokenTypeAccess, user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.Tokens.Create(TokenTypeRefresh, user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{Access: access, Refresh: refresh}, nil
}

// Refresh issues a new access token; the refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Tokens.Parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "error", err)
		return "", err
	}
	if _, err := s.Repo.UserByID(ctx, claims.UserID); err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "user gone", "error", err)
		return "", ErrInvalidToken
	}

	return s.Tokens.Create(TokenTypeAccess, claims.UserID)
}

func (s *AuthService) User(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}

// EnsureUser creates the user when the username is free. It backs the admin
// seeding of cmd/devapi.
func (s *AuthService) EnsureUser(ctx context.Context, username, email, password string, staff bool) error {
	if username == "" || password == "" {
		return invalid("credentials", "username and password are required")
	}
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	u := &models.User{Username: username, Email: email, PasswordHash: pwHash, IsStaff: staff}
	if err := s.Repo.CreateUserIfNotExists(ctx, u); err != nil && !errors.Is(err, repo.ErrUserAlreadyExist) {
		return err
	}
	return nil
}
