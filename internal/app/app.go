// Package app wires the back-office client: token store, session, request
// pipeline, API client and router.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Skotchmaster/restaurant_backoffice/internal/apiclient"
	"github.com/Skotchmaster/restaurant_backoffice/internal/config"
	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
	"github.com/Skotchmaster/restaurant_backoffice/internal/pipeline"
	"github.com/Skotchmaster/restaurant_backoffice/internal/routes"
	"github.com/Skotchmaster/restaurant_backoffice/internal/session"
	"github.com/Skotchmaster/restaurant_backoffice/internal/tokenstore"
)

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Session *session.Session
	Browser *routes.Browser
	Router  *routes.Router
	API     *apiclient.Client

	cookies pipeline.CookieSource
	closer  io.Closer
}

type options struct {
	store  tokenstore.Store
	base   http.RoundTripper
	logger *slog.Logger
	clock  func() time.Time
}

type Option func(*options)

// WithStore replaces the store selected by STORE_DRIVER.
func WithStore(s tokenstore.Store) Option {
	return func(o *options) { o.store = s }
}

// WithTransport sets the transport under the pipeline, for example an
// httptest server's client transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	if o.base == nil {
		o.base = pipeline.NewBaseTransport()
	}

	apiURL, err := url.Parse(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("app: API_URL: %w", err)
	}

	var closer io.Closer = nopCloser{}
	store := o.store
	if store == nil {
		var c io.Closer
		store, c, err = tokenstore.Open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("app: open token store: %w", err)
		}
		closer = c
	}

	sessOpts := []session.Option{session.WithLogger(o.logger)}
	if o.clock != nil {
		sessOpts = append(sessOpts, session.WithClock(o.clock))
	}
	sess := session.New(store, sessOpts...)

	jar, err := pipeline.NewJar()
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("app: cookie jar: %w", err)
	}
	cookies := pipeline.JarCookies{Jar: jar, URL: apiURL}
	browser := routes.NewBrowser(routes.LoginPath)

	bare := pipeline.NewClient(&pipeline.BareTransport{
		Base:    o.base,
		Session: sess,
		Cookies: cookies,
		Logger:  o.logger,
	}, jar, cfg.Timeout())
	refresher := apiclient.NewClient(cfg.APIURL, bare, sess)

	client := pipeline.NewClient(&pipeline.Transport{
		Base:      o.base,
		Session:   sess,
		Refresher: refresher,
		Cookies:   cookies,
		Navigator: browser,
		Logger:    o.logger,
	}, jar, cfg.Timeout())
	api := apiclient.NewClient(cfg.APIURL, client, sess)

	guard := routes.NewGuard(sess, api, o.logger)

	return &App{
		Config:  cfg,
		Logger:  o.logger,
		Session: sess,
		Browser: browser,
		Router:  routes.NewRouter(routes.Table, guard),
		API:     api,
		cookies: cookies,
		closer:  closer,
	}, nil
}

// Start drops stale credentials left by a previous run.
func (a *App) Start(ctx context.Context) error {
	return a.Session.ClearExpiredTokens(ctx)
}

// Open navigates to path through the guard and records where it landed.
func (a *App) Open(ctx context.Context, path string) (routes.Match, error) {
	m, err := a.Router.Navigate(ctx, path)
	if err != nil {
		return routes.Match{}, err
	}
	a.Browser.Settle(m.Path)
	return m, nil
}

// Settle follows a hard navigation requested since the last Open, such as
// the pipeline's forced logout. ok is false when none was pending.
func (a *App) Settle(ctx context.Context) (m routes.Match, ok bool, err error) {
	loc, pending := a.Browser.Location()
	if !pending {
		return routes.Match{}, false, nil
	}
	m, err = a.Open(ctx, loc)
	return m, true, err
}

// EnsureCSRF fetches the CSRF cookie unless the jar already holds one. The
// jar lives as long as the process, so a new process signs in with tokens
// from the store but without the cookie.
func (a *App) EnsureCSRF(ctx context.Context) error {
	if _, ok := a.cookies.Cookie(pipeline.CSRFCookieName); ok {
		return nil
	}
	_, err := a.API.FetchCSRFToken(ctx)
	return err
}

// Logout clears the session the same way a failed refresh does, then lands
// on the login page.
func (a *App) Logout(ctx context.Context) (routes.Match, error) {
	if err := a.Session.Purge(ctx); err != nil {
		return routes.Match{}, err
	}
	return a.Open(ctx, routes.LoginPath)
}

func (a *App) Close() error {
	return a.closer.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LoggedOut reports whether err ended the session.
func LoggedOut(err error) bool {
	return errors.Is(err, pipeline.ErrLoggedOut)
}
