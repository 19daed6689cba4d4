// Package pipeline wraps outgoing API requests: it drops expired tokens,
// attaches the bearer and CSRF headers, recovers from a 401 with a single
// token refresh and logs 403 responses.
package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
	"github.com/Skotchmaster/restaurant_backoffice/internal/session"
)

const loginPath = "/login"

// CookieSource reads browser-style cookies, the CSRF cookie in particular.
type CookieSource interface {
	Cookie(name string) (string, bool)
}

// Navigator performs a full-page navigation.
type Navigator interface {
	Assign(path string)
}

// Refresher trades a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type RefresherFunc func(ctx context.Context, refreshToken string) (string, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return f(ctx, refreshToken)
}

// Transport runs every request through cleanup, attach-auth, attach-csrf,
// send, handle-401 and handle-403, in that order.
type Transport struct {
	Base      http.RoundTripper
	Session   *session.Session
	Refresher Refresher
	Cookies   CookieSource
	Navigator Navigator
	Logger    *slog.Logger

	refreshes singleflight.Group
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	getBody, err := rewindable(req)
	if err != nil {
		return nil, err
	}
	return t.roundTrip(req, getBody, false)
}

func (t *Transport) roundTrip(req *http.Request, getBody func() (io.ReadCloser, error), retried bool) (*http.Response, error) {
	ctx := req.Context()

	cleanup(ctx, t.Session, t.logger())

	out, err := outgoing(req, getBody)
	if err != nil {
		return nil, err
	}
	sent, err := attachAuth(ctx, t.Session, out)
	if err != nil {
		return nil, err
	}
	attachCSRF(out, t.Cookies)

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized && !retried:
		return t.handleUnauthorized(req, getBody, resp, sent)
	case resp.StatusCode == http.StatusForbidden:
		t.logForbidden(req, resp)
	}
	return resp, nil
}

// handleUnauthorized refreshes the access token once and replays the request.
// When no refresh is possible the session ends.
func (t *Transport) handleUnauthorized(req *http.Request, getBody func() (io.ReadCloser, error), resp *http.Response, sent string) (*http.Response, error) {
	ctx := req.Context()
	drain(resp)

	refresh, ok, err := t.Session.RefreshToken(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, t.logout(ctx, ErrNoRefreshToken)
	}

	current, ok, err := t.Session.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if ok && current != sent {
		t.logger().Debug("replay_with_newer_token", "method", req.Method, "url", req.URL.String())
		return t.roundTrip(req, getBody, true)
	}

	if _, err := t.refresh(ctx, refresh, sent); err != nil {
		t.logger().Error("token_refresh_failed", "error", err)
		return nil, t.logout(ctx, err)
	}
	return t.roundTrip(req, getBody, true)
}

// refresh coalesces concurrent refreshes of the same token into one call.
// A flight that starts after another one already stored a token other than
// rejected reuses it.
func (t *Transport) refresh(ctx context.Context, refreshToken, rejected string) (string, error) {
	v, err, shared := t.refreshes.Do(refreshToken, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		if current, ok, err := t.Session.AccessToken(ctx); err == nil && ok && current != rejected {
			return current, nil
		}
		access, err := t.Refresher.Refresh(ctx, refreshToken)
		if err != nil {
			return "", err
		}
		if access == "" {
			return "", ErrEmptyAccess
		}
		if err := t.Session.SetAccessToken(ctx, access); err != nil {
			return "", err
		}
		t.logger().Info("access_token_refreshed")
		return access, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		t.logger().Debug("token_refresh_shared")
	}
	return v.(string), nil
}

func (t *Transport) logout(ctx context.Context, cause error) error {
	ctx = context.WithoutCancel(ctx)
	if err := t.Session.Purge(ctx); err != nil {
		t.logger().Error("session_purge_failed", "error", err)
	}
	t.logger().Warn("session_ended", "reason", cause.Error())
	if t.Navigator != nil {
		t.Navigator.Assign(loginPath)
	}
	return &LogoutError{Cause: cause}
}

// logForbidden logs the response body and puts it back for the caller.
func (t *Transport) logForbidden(req *http.Request, resp *http.Response) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	attrs := []any{
		"status", resp.StatusCode,
		"method", req.Method,
		"url", req.URL.String(),
		"reason", "csrf_or_permissions",
		"body", string(body),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	t.logger().Error("request_forbidden", attrs...)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return logging.Discard()
}
