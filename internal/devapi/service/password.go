package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/repo"
	"github.com/Skotchmaster/restaurant_backoffice/internal/hash"
	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
)

const (
	resetTokenLength = 60
	resetTokenTTL    = time.Hour
	resetAlphabet    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	MsgResetMaybeSent = "If this email exists, a reset link has been sent."
	MsgResetSent      = "An email with a reset link has been sent."
	MsgPasswordReset  = "Your password has been updated."
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type PasswordService struct {
	Repo     *repo.GormRepo
	Mailer   Mailer
	LinkBase string
	Now      func() time.Time
}

// RequestReset answers the same way for unknown addresses so callers cannot
// probe which emails exist.
func (s *PasswordService) RequestReset(ctx context.Context, email string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "password.request")
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalid("email", "email is required")
	}

	user, err := s.Repo.UserByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		l.Info("password_reset_unknown_email")
		return MsgResetMaybeSent, nil
	}
	if err != nil {
		return "", err
	}

	token, err := randomString(resetTokenLength)
	if err != nil {
		return "", err
	}
	link := fmt.Sprintf("%s/reset-password/%d/%s/", strings.TrimRight(s.LinkBase, "/"), user.ID, token)
	body := fmt.Sprintf("Hello %s,\n\nUse the following link to reset your password:\n%s\n\nThe link is valid for one hour.\n", user.Username, link)

	if err := s.Mailer.Send(ctx, email, "Password reset", body); err != nil {
		l.Error("password_reset_mail_failed", "status", 500, "error", err)
		return "", fmt.Errorf("send reset mail: %w", err)
	}
	if err := s.Repo.CreateResetToken(ctx, user.ID, token, resetTokenTTL); err != nil {
		return "", err
	}

	l.Info("password_reset_sent", "user_id", user.ID)
	return MsgResetSent, nil
}

func (s *PasswordService) ConfirmReset(ctx context.Context, userID uint, token, newPassword string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "password.confirm", "user_id", userID)
	if newPassword == "" {
		return "", invalid("new_password", "password is required")
	}

	t, err := s.Repo.ResetToken(ctx, userID, token)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	if !t.Valid(s.now()) {
		l.Warn("password_reset_expired")
		return "", ErrInvalidToken
	}

	pwHash, err := hash.HashPassword(newPassword)
	if errors.Is(err, hash.ErrPasswordTooLong) {
		return "", invalid("new_password", "password is too long")
	}
	if err != nil {
		return "", err
	}
	if err := s.Repo.ConsumeResetToken(ctx, t.ID, userID, pwHash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	l.Info("password_updated")
	return MsgPasswordReset, nil
}

// ParseUserID reads the user id segment of a reset link. Links carry the
// plain decimal id; a base64url encoded id is accepted as well.
func ParseUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		decoded, derr := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
		if derr != nil {
			return 0, fmt.Errorf("%w: bad user id %q", ErrInvalidToken, raw)
		}
		id, err = strconv.ParseUint(string(decoded), 10, 64)
	}
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad user id %q", ErrInvalidToken, raw)
	}
	return uint(id), nil
}

func (s *PasswordService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func randomString(n int) (string, error) {
	max := big.NewInt(int64(len(resetAlphabet)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = resetAlphabet[v.Int64()]
	}
	return string(b), nil
}
