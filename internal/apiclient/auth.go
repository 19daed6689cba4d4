package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login obtains a token pair, stores it in the session and primes the CSRF
// cookie for the mutating calls that follow.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	var pair TokenPair
	if err := c.do(ctx, "login", http.MethodPost, loginPath, Credentials{Username: username, Password: password}, &pair); err != nil {
		return nil, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return nil, errors.New("login: response without tokens")
	}
	if err := c.session.SetTokens(ctx, pair.Access, pair.Refresh); err != nil {
		return nil, fmt.Errorf("login: store tokens: %w", err)
	}
	if _, err := c.FetchCSRFToken(ctx); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh trades a refresh token for a new access token. It leaves storing
// the result to the caller.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	if err := c.do(ctx, "refresh", http.MethodPost, refreshPath, map[string]string{"refresh": refreshToken}, &out); err != nil {
		return "", err
	}
	return out.Access, nil
}

func (c *Client) CheckAdmin(ctx context.Context) (bool, error) {
	var out struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := c.do(ctx, "check admin", http.MethodGet, checkAdminPath, nil, &out); err != nil {
		return false, err
	}
	return out.IsAdmin, nil
}

// FetchCSRFToken asks the API to issue the csrftoken cookie; the client's
// jar keeps it.
func (c *Client) FetchCSRFToken(ctx context.Context) (string, error) {
	var out struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := c.do(ctx, "get csrf token", http.MethodGet, csrfPath, nil, &out); err != nil {
		return "", err
	}
	return out.CSRFToken, nil
}

type message struct {
	Message string `json:"message"`
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var out message
	if err := c.do(ctx, "password reset", http.MethodPost, resetPath, map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, userID, token, newPassword string) (string, error) {
	path := resetPath + url.PathEscape(userID) + "/" + url.PathEscape(token) + "/"
	var out message
	if err := c.do(ctx, "password reset confirm", http.MethodPost, path, map[string]string{"new_password": newPassword}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
