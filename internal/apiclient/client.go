package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Skotchmaster/restaurant_backoffice/internal/session"
)

const (
	loginPath        = "/backoffice/api/login/"
	refreshPath      = "/backoffice/api/token/refresh/"
	checkAdminPath   = "/backoffice/api/check-admin/"
	csrfPath         = "/backoffice/api/get-csrf-token/"
	resetPath        = "/api/password-reset/"
	reservationsPath = "/backoffice/api/reservations/"
	schedulesPath    = "/backoffice/api/schedules/"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
}

func NewClient(baseURL string, httpClient *http.Client, s *session.Session) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    s,
	}
}

// Error is a non-2xx answer from the API.
type Error struct {
	Op     string
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

// Detail extracts the human readable message from the error body, falling
// back to the raw body.
func (e *Error) Detail() string {
	var payload map[string]any
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil {
		for _, k := range []string{"detail", "message", "error"} {
			if s, ok := payload[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return e.Body
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &Error{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
