package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Skotchmaster/restaurant_backoffice/internal/session"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"
)

var csrfMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// cleanup drops expired credentials before every request. A storage
// failure is logged and the request goes on.
func cleanup(ctx context.Context, s *session.Session, logger *slog.Logger) {
	if err := s.ClearExpiredTokens(ctx); err != nil {
		logger.Warn("token_cleanup_failed", "error", err)
	}
}

// attachAuth sets the bearer header and returns the token it used, "" when
// none is stored.
func attachAuth(ctx context.Context, s *session.Session, req *http.Request) (string, error) {
	token, ok, err := s.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return token, nil
}

func attachCSRF(req *http.Request, cookies CookieSource) {
	if cookies == nil || !csrfMethods[strings.ToUpper(req.Method)] {
		return
	}
	if token, ok := cookies.Cookie(CSRFCookieName); ok {
		req.Header.Set(CSRFHeaderName, token)
	}
}

// rewindable returns a body factory so the request can be sent again.
func rewindable(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		_ = req.Body.Close()
		return req.GetBody, nil
	}

	buf, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}, nil
}

// outgoing clones req for one attempt with a fresh body.
func outgoing(req *http.Request, getBody func() (io.ReadCloser, error)) (*http.Request, error) {
	out := req.Clone(req.Context())
	if getBody == nil {
		return out, nil
	}
	body, err := getBody()
	if err != nil {
		return nil, err
	}
	out.Body = body
	out.GetBody = getBody
	return out, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
