package pipeline

import (
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/Skotchmaster/restaurant_backoffice/internal/logging"
	"github.com/Skotchmaster/restaurant_backoffice/internal/session"
)

// JarCookies reads cookies the jar holds for URL.
type JarCookies struct {
	Jar http.CookieJar
	URL *url.URL
}

func (c JarCookies) Cookie(name string) (string, bool) {
	if c.Jar == nil || c.URL == nil {
		return "", false
	}
	for _, ck := range c.Jar.Cookies(c.URL) {
		if ck.Name == name {
			return ck.Value, true
		}
	}
	return "", false
}

func NewJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// BareTransport runs only cleanup and attach-csrf. The refresh call goes
// through it so that a failing refresh can never trigger another refresh.
type BareTransport struct {
	Base    http.RoundTripper
	Session *session.Session
	Cookies CookieSource
	Logger  *slog.Logger
}

func (t *BareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := t.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	cleanup(req.Context(), t.Session, logger)

	out := req.Clone(req.Context())
	attachCSRF(out, t.Cookies)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(out)
}

// NewBaseTransport is the transport under both pipelines when the caller
// does not supply one. Dial and handshake are bounded; the request itself
// is not.
func NewBaseTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// NewClient returns an http.Client sending through rt with the shared jar.
// A zero timeout leaves requests unbounded.
func NewClient(rt http.RoundTripper, jar http.CookieJar, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: rt,
		Jar:       jar,
		Timeout:   timeout,
	}
}
