package routes

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_backoffice/internal/session"
	"github.com/Skotchmaster/restaurant_backoffice/internal/tokenstore"
)

type stubChecker struct {
	admin bool
	err   error
	calls atomic.Int32
}

func (c *stubChecker) CheckAdmin(context.Context) (bool, error) {
	c.calls.Add(1)
	return c.admin, c.err
}

func newRouter(t *testing.T, checker AdminChecker) (*Router, *tokenstore.MemoryStore) {
	t.Helper()
	store := tokenstore.NewMemoryStore()
	s := session.New(store)
	return NewRouter(Table, NewGuard(s, checker, nil)), store
}

func value(t *testing.T, s tokenstore.Store, k tokenstore.Key) (string, bool) {
	t.Helper()
	v, ok, err := s.Get(context.Background(), k)
	require.NoError(t, err)
	return v, ok
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		wantName string
		params   map[string]string
		wantErr  error
	}{
		{path: "/login", wantName: "Login", params: map[string]string{}},
		{path: "/login/", wantName: "Login", params: map[string]string{}},
		{path: "/backoffice?tab=schedules", wantName: "Backoffice", params: map[string]string{}},
		{path: "/reset-password/7/abc-123", wantName: "ResetPassword", params: map[string]string{"uidb64": "7", "token": "abc-123"}},
		{path: "/reset-password/7", wantErr: ErrNotFound},
		{path: "/reset-password//abc", wantErr: ErrNotFound},
		{path: "/reset-password/7/abc/extra", wantErr: ErrNotFound},
		{path: "/Login", wantName: "Login", params: map[string]string{}},
		{path: "/BackOffice/", wantName: "Backoffice", params: map[string]string{}},
		{path: "/Reset-Password/7/AbC", wantName: "ResetPassword", params: map[string]string{"uidb64": "7", "token": "AbC"}},
		{path: "/nowhere", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			m, err := Resolve(Table, tt.path)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, m.Route.Name)
			assert.Equal(t, tt.params, m.Params)
		})
	}

	m, err := Resolve(Table, "/")
	require.NoError(t, err)
	assert.Equal(t, LoginPath, m.Route.Redirect)
}

func TestNavigate_RootRedirectsToLogin(t *testing.T) {
	r, _ := newRouter(t, &stubChecker{})

	m, err := r.Navigate(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, LoginPath, m.Path)
}

func TestNavigate_UnauthenticatedBackoffice(t *testing.T) {
	checker := &stubChecker{admin: true}
	r, store := newRouter(t, checker)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, tokenstore.IsAdmin, "true"))

	m, err := r.Navigate(ctx, BackofficePath)
	require.NoError(t, err)
	assert.Equal(t, LoginPath, m.Path)

	_, ok := value(t, store, tokenstore.IsAdmin)
	assert.False(t, ok, "stale admin flag dropped")
	assert.Zero(t, checker.calls.Load(), "no remote check without credentials")
}

func TestNavigate_AdminCheckPositive(t *testing.T) {
	checker := &stubChecker{admin: true}
	r, store := newRouter(t, checker)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, tokenstore.AccessToken, "a.b.c"))

	m, err := r.Navigate(ctx, BackofficePath)
	require.NoError(t, err)
	assert.Equal(t, BackofficePath, m.Path)

	v, ok := value(t, store, tokenstore.IsAdmin)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, err = r.Navigate(ctx, BackofficePath)
	require.NoError(t, err)
	assert.EqualValues(t, 1, checker.calls.Load(), "flag cached after the first check")
}

func TestNavigate_AdminCheckNegativeOrFailing(t *testing.T) {
	cases := map[string]*stubChecker{
		"not admin": {admin: false},
		"error":     {err: errors.New("network down")},
	}

	for name, checker := range cases {
		checker := checker
		t.Run(name, func(t *testing.T) {
			r, store := newRouter(t, checker)
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, tokenstore.AccessToken, "a.b.c"))
			require.NoError(t, store.Set(ctx, tokenstore.RefreshToken, "r.r.r"))

			m, err := r.Navigate(ctx, BackofficePath)
			require.NoError(t, err)
			assert.Equal(t, LoginPath, m.Path)

			for _, k := range tokenstore.Keys {
				_, ok := value(t, store, k)
				assert.False(t, ok, string(k))
			}
		})
	}
}

func TestNavigate_LoginWhileAdmin(t *testing.T) {
	r, store := newRouter(t, &stubChecker{})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, tokenstore.AccessToken, "a.b.c"))
	require.NoError(t, store.Set(ctx, tokenstore.IsAdmin, "true"))

	m, err := r.Navigate(ctx, LoginPath)
	require.NoError(t, err)
	assert.Equal(t, BackofficePath, m.Path)
}

func TestNavigate_CaseInsensitivePaths(t *testing.T) {
	r, store := newRouter(t, &stubChecker{})
	ctx := context.Background()

	m, err := r.Navigate(ctx, "/BACKOFFICE")
	require.NoError(t, err)
	assert.Equal(t, LoginPath, m.Path, "the guard still applies to a differently cased path")

	require.NoError(t, store.Set(ctx, tokenstore.AccessToken, "a.b.c"))
	require.NoError(t, store.Set(ctx, tokenstore.IsAdmin, "true"))

	m, err = r.Navigate(ctx, "/Login")
	require.NoError(t, err)
	assert.Equal(t, BackofficePath, m.Path)
}

func TestNavigate_LoginWhileAuthenticatedNotAdmin(t *testing.T) {
	r, store := newRouter(t, &stubChecker{})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, tokenstore.AccessToken, "a.b.c"))

	m, err := r.Navigate(ctx, LoginPath)
	require.NoError(t, err)
	assert.Equal(t, LoginPath, m.Path)
}

func TestNavigate_PublicRoutes(t *testing.T) {
	r, _ := newRouter(t, &stubChecker{})

	m, err := r.Navigate(context.Background(), "/reset-password/42/set-abc")
	require.NoError(t, err)
	assert.Equal(t, "ResetPassword", m.Route.Name)
	assert.True(t, m.Route.Props)
	assert.Equal(t, "42", m.Params["uidb64"])

	_, err = r.Navigate(context.Background(), "/missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGuard_AdminOnlyRoute(t *testing.T) {
	s := session.New(tokenstore.NewMemoryStore())
	g := NewGuard(s, &stubChecker{admin: true}, nil)

	d, err := g.Decide(context.Background(), Match{
		Route: Route{Name: "Reports", Path: "/reports", Meta: Meta{RequiresAdmin: true}},
		Path:  "/reports",
	})
	require.NoError(t, err)
	assert.Equal(t, LoginPath, d.Redirect)
}

func TestNavigate_RedirectLoop(t *testing.T) {
	table := []Route{
		{Path: "/a", Redirect: "/b"},
		{Path: "/b", Redirect: "/a"},
	}
	r := NewRouter(table, NewGuard(session.New(tokenstore.NewMemoryStore()), &stubChecker{}, nil))

	_, err := r.Navigate(context.Background(), "/a")
	require.ErrorIs(t, err, ErrRedirectLoop)
}

func TestBrowser(t *testing.T) {
	b := NewBrowser("/backoffice")

	loc, pending := b.Location()
	assert.Equal(t, "/backoffice", loc)
	assert.False(t, pending)

	b.Assign(LoginPath)
	loc, pending = b.Location()
	assert.Equal(t, LoginPath, loc)
	assert.True(t, pending)

	b.Settle(LoginPath)
	_, pending = b.Location()
	assert.False(t, pending)
}
