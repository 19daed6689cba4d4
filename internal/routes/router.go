package routes

import (
	"context"
	"errors"
	"fmt"
)

const maxRedirects = 10

var ErrRedirectLoop = errors.New("too many redirects")

type Router struct {
	table []Route
	guard *Guard
}

func NewRouter(table []Route, guard *Guard) *Router {
	return &Router{table: table, guard: guard}
}

// Navigate resolves path and runs the guard, following static and guard
// redirects until a route is allowed.
func (r *Router) Navigate(ctx context.Context, path string) (Match, error) {
	for hop := 0; hop <= maxRedirects; hop++ {
		m, err := Resolve(r.table, path)
		if err != nil {
			return Match{}, fmt.Errorf("%s: %w", path, err)
		}
		if m.Route.Redirect != "" {
			path = m.Route.Redirect
			continue
		}

		d, err := r.guard.Decide(ctx, m)
		if err != nil {
			return Match{}, err
		}
		if d.Proceed() {
			return m, nil
		}
		path = d.Redirect
	}
	return Match{}, ErrRedirectLoop
}
