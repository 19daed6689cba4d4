package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrLoggedOut is returned once a 401 could not be recovered and the
	// session was purged.
	ErrLoggedOut      = errors.New("session ended, login required")
	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrEmptyAccess    = errors.New("refresh response carries no access token")
)

type LogoutError struct {
	Cause error
}

func (e *LogoutError) Error() string {
	return fmt.Sprintf("%s: %v", ErrLoggedOut, e.Cause)
}

func (e *LogoutError) Unwrap() []error {
	return []error{ErrLoggedOut, e.Cause}
}
