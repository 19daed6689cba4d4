// Package tokenstore is the persisted key-value storage that holds the
// session credentials between runs. It stores values as given; callers
// validate before storing.
package tokenstore

import (
	"context"
	"errors"
)

type Key string

const (
	AccessToken  Key = "access_token"
	RefreshToken Key = "refresh_token"
	IsAdmin      Key = "is_admin"
)

// Keys lists every key the session owns, in purge order.
var Keys = []Key{AccessToken, RefreshToken, IsAdmin}

var ErrUnknownDriver = errors.New("tokenstore: unknown driver")

// Store is safe for concurrent use. Get reports absence with ok=false, and
// Remove of an absent key is a no-op.
type Store interface {
	Get(ctx context.Context, key Key) (value string, ok bool, err error)
	Set(ctx context.Context, key Key, value string) error
	Remove(ctx context.Context, key Key) error
}
