package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type Config struct {
	CookieName string
	HeaderName string

	CookiePath string
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	EnforceSameOrigin bool

	SkipPaths []string
}

func DefaultConfig() Config {
	return Config{
		CookieName: "csrftoken",
		HeaderName: "X-CSRFToken",
		CookiePath: "/",
		Secure:     false,
		SameSite:   http.SameSiteLaxMode,
		MaxAge:     365 * 24 * time.Hour,
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}
	return cfg
}

// Middleware enforces the double-submit check on unsafe methods: the header
// must repeat the value of the CSRF cookie.
func Middleware(cfg Config) echo.MiddlewareFunc {
	cfg = cfg.withDefaults()

	skip := map[string]struct{}{}
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if _, ok := skip[req.URL.Path]; ok {
				return next(c)
			}

			switch strings.ToUpper(req.Method) {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				return next(c)
			}

			if cfg.EnforceSameOrigin && !sameOrigin(req) {
				return echo.NewHTTPError(http.StatusForbidden, echo.Map{"detail": "CSRF Failed: Origin checking failed."})
			}

			token := readCookie(req, cfg.CookieName)
			if token == "" {
				return echo.NewHTTPError(http.StatusForbidden, echo.Map{"detail": "CSRF Failed: CSRF cookie not set."})
			}
			if !secureCompare(token, req.Header.Get(cfg.HeaderName)) {
				return echo.NewHTTPError(http.StatusForbidden, echo.Map{"detail": "CSRF Failed: CSRF token missing or incorrect."})
			}

			c.Set("csrf_token", token)
			return next(c)
		}
	}
}

// Issue returns the caller's CSRF token, minting and setting the cookie when
// there is none yet.
func Issue(c echo.Context, cfg Config) (string, error) {
	cfg = cfg.withDefaults()

	token := readCookie(c.Request(), cfg.CookieName)
	if token == "" {
		var err error
		if token, err = newToken(32); err != nil {
			return "", err
		}
	}
	setCSRFCookie(c, cfg, token)
	return token, nil
}

// Handler serves {"csrfToken": ...} and sets the cookie.
func Handler(cfg Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := Issue(c, cfg)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to create CSRF token")
		}
		return c.JSON(http.StatusOK, echo.Map{"csrfToken": token})
	}
}

func newToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func setCSRFCookie(c echo.Context, cfg Config, token string) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     cfg.CookiePath,
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HttpOnly: false,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		SameSite: cfg.SameSite,
	})
}

func readCookie(req *http.Request, name string) string {
	c, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func secureCompare(a, b string) bool {
	if a == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		ref := r.Header.Get("Referer")
		if ref == "" {
			return false
		}
		origin = ref
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, schemeOf(r)) && strings.EqualFold(u.Host, r.Host)
}

func schemeOf(r *http.Request) string {
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
