package devapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_backoffice/internal/db"
	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/service"
)

const testSecret = "devapi-test-secret"

func newServer(t *testing.T) *Server {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	srv, err := New(Options{DB: gdb, JWTSecret: []byte(testSecret), LinkBase: "http://front.test"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, srv.SeedAdmin(ctx, "admin", "admin@example.com", "admin-pw"))
	require.NoError(t, srv.Auth.EnsureUser(ctx, "waiter", "waiter@example.com", "waiter-pw", false))
	return srv
}

type call struct {
	method string
	path   string
	body   string
	bearer string
	csrf   string
}

func (s *Server) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if c.body != "" {
		req = httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(c.method, c.path, nil)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	if c.csrf != "" {
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: c.csrf})
		req.Header.Set("X-CSRFToken", c.csrf)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func login(t *testing.T, s *Server, user, pw string) service.LoginResult {
	t.Helper()
	rec := s.do(t, call{method: http.MethodPost, path: "/backoffice/api/login/", body: `{"username":"` + user + `","password":"` + pw + `"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pair service.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/health/live"}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/health/ready"}).Code)
}

func TestLoginAndRefresh(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/backoffice/api/login/", body: `{"username":"admin","password":"nope"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	pair := login(t, s, "admin", "admin-pw")
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	rec = s.do(t, call{method: http.MethodPost, path: "/backoffice/api/token/refresh/", body: `{"refresh":"` + pair.Refresh + `"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["access"])

	rec = s.do(t, call{method: http.MethodPost, path: "/backoffice/api/token/refresh/", body: `{"refresh":"garbage"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/backoffice/api/token/refresh/", body: `{}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAdmin(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/backoffice/api/check-admin/"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no token")

	admin := login(t, s, "admin", "admin-pw")
	rec = s.do(t, call{method: http.MethodGet, path: "/backoffice/api/check-admin/", bearer: admin.Access})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["is_admin"])

	rec = s.do(t, call{method: http.MethodGet, path: "/backoffice/api/check-admin/", bearer: admin.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh tokens are not access tokens")

	waiter := login(t, s, "waiter", "waiter-pw")
	rec = s.do(t, call{method: http.MethodGet, path: "/backoffice/api/check-admin/", bearer: waiter.Access})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFToken(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/backoffice/api/get-csrf-token/"})
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decode(t, rec)["csrfToken"].(string)
	assert.NotEmpty(t, token)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrftoken" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)
	assert.False(t, cookie.HttpOnly)
}

func TestReservations(t *testing.T) {
	s := newServer(t)
	admin := login(t, s, "admin", "admin-pw")

	create := call{
		method: http.MethodPost,
		path:   "/backoffice/api/reservations/",
		body:   `{"name":"Martin","email":"m@example.com","date":"2030-01-09","time":"20:00","party_size":3}`,
		bearer: admin.Access,
	}
	rec := s.do(t, create)
	assert.Equal(t, http.StatusForbidden, rec.Code, "unsafe methods need the CSRF pair")

	create.csrf = "tok"
	rec = s.do(t, create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, "pending", created["status"])
	id := int(created["id"].(float64))

	rec = s.do(t, call{method: http.MethodGet, path: "/backoffice/api/reservations/", bearer: admin.Access})
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	path := "/backoffice/api/reservations/" + strconv.Itoa(id) + "/"
	rec = s.do(t, call{method: http.MethodPatch, path: path, body: `{"status":"accepted"}`, bearer: admin.Access, csrf: "tok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "accepted", decode(t, rec)["status"])

	rec = s.do(t, call{method: http.MethodPatch, path: path, body: `{"status":"lost"}`, bearer: admin.Access, csrf: "tok"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "status")

	rec = s.do(t, call{method: http.MethodDelete, path: path, bearer: admin.Access, csrf: "tok"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: path, bearer: admin.Access})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found.", decode(t, rec)["detail"])

	waiter := login(t, s, "waiter", "waiter-pw")
	rec = s.do(t, call{method: http.MethodGet, path: "/backoffice/api/reservations/", bearer: waiter.Access})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSchedules(t *testing.T) {
	s := newServer(t)
	admin := login(t, s, "admin", "admin-pw")

	rec := s.do(t, call{
		method: http.MethodPost,
		path:   "/backoffice/api/schedules/",
		body:   `{"type":"open","mode":"single","start_date":"2030-01-08","moment":"lunch"}`,
		bearer: admin.Access,
		csrf:   "tok",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "start_date")

	rec = s.do(t, call{
		method: http.MethodPost,
		path:   "/backoffice/api/schedules/",
		body:   `{"type":"open","mode":"single","start_date":"2030-01-06","moment":"lunch"}`,
		bearer: admin.Access,
		csrf:   "tok",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := int(decode(t, rec)["id"].(float64))

	rec = s.do(t, call{method: http.MethodGet, path: "/backoffice/api/schedules/" + strconv.Itoa(id) + "/", bearer: admin.Access})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, call{method: http.MethodDelete, path: "/backoffice/api/schedules/" + strconv.Itoa(id) + "/", bearer: admin.Access, csrf: "tok"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/backoffice/api/schedules/", bearer: admin.Access})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPasswordResetEndpoints(t *testing.T) {
	s := newServer(t)

	for _, prefix := range []string{"/api/password-reset/", "/backoffice/api/password-reset/"} {
		rec := s.do(t, call{method: http.MethodPost, path: prefix, body: `{"email":"unknown@example.com"}`})
		require.Equal(t, http.StatusOK, rec.Code, prefix)
		assert.Equal(t, service.MsgResetMaybeSent, decode(t, rec)["message"])
	}

	rec := s.do(t, call{method: http.MethodPost, path: "/api/password-reset/", body: `{}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/password-reset/", body: `{"email":"admin@example.com"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.MsgResetSent, decode(t, rec)["message"])

	rec = s.do(t, call{method: http.MethodPost, path: "/api/password-reset/1/bogus/", body: `{"new_password":"x"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/password-reset/not-an-id/bogus/", body: `{"new_password":"x"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPasswordReset_LinkRoundTrip(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/api/password-reset/", body: `{"email":"admin@example.com"}`})
	require.Equal(t, http.StatusOK, rec.Code)

	mailer, ok := s.Mailer.(*service.LogMailer)
	require.True(t, ok)
	body, ok := mailer.Last("admin@example.com")
	require.True(t, ok)

	// the link carries the plain user id: /reset-password/<id>/<token>/
	i := strings.Index(body, "http://front.test/reset-password/")
	require.GreaterOrEqual(t, i, 0)
	parts := strings.Split(strings.TrimPrefix(body[i:], "http://front.test/reset-password/"), "/")
	require.GreaterOrEqual(t, len(parts), 2)
	id, err := strconv.ParseUint(parts[0], 10, 64)
	require.NoError(t, err, parts[0])
	token := parts[1]

	rec = s.do(t, call{
		method: http.MethodPost,
		path:   "/api/password-reset/" + strconv.FormatUint(id, 10) + "/" + token + "/",
		body:   `{"new_password":"brand-new-pw"}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, service.MsgPasswordReset, decode(t, rec)["message"])

	rec = s.do(t, call{method: http.MethodPost, path: "/backoffice/api/login/", body: `{"username":"admin","password":"brand-new-pw"}`})
	assert.Equal(t, http.StatusOK, rec.Code)
}
