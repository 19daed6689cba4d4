// Package routes holds the back-office route table, the navigation guard and
// the router that applies both.
package routes

import (
	"errors"
	"strings"
)

const (
	LoginPath      = "/login"
	BackofficePath = "/backoffice"
)

var ErrNotFound = errors.New("route not found")

type Meta struct {
	RequiresAuth  bool
	RequiresAdmin bool
}

type Route struct {
	Name     string
	Path     string
	Redirect string
	Meta     Meta
	// Props passes path params to the page as properties.
	Props bool
}

var Table = []Route{
	{Path: "/", Redirect: LoginPath},
	{Name: "Login", Path: LoginPath},
	{Name: "Backoffice", Path: BackofficePath, Meta: Meta{RequiresAuth: true, RequiresAdmin: true}},
	{Name: "ForgotPassword", Path: "/forgot-password"},
	{Name: "ResetPassword", Path: "/reset-password/:uidb64/:token", Props: true},
}

type Match struct {
	Route  Route
	Path   string
	Params map[string]string
}

// Resolve returns the first route of table whose pattern matches path.
// Static segments match without regard to case; parameter values are kept
// as written. Query strings and fragments are ignored.
func Resolve(table []Route, path string) (Match, error) {
	clean := normalize(path)
	for _, r := range table {
		if params, ok := matchPattern(r.Path, clean); ok {
			return Match{Route: r, Path: clean, Params: params}, nil
		}
	}
	return Match{}, ErrNotFound
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return nil, false
	}

	params := map[string]string{}
	for i, seg := range want {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if got[i] == "" {
				return nil, false
			}
			params[name] = got[i]
			continue
		}
		if !strings.EqualFold(seg, got[i]) {
			return nil, false
		}
	}
	return params, true
}
