package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
)

// FieldError is a validation failure tied to one input field. It matches
// ErrValidation with errors.Is.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error {
	return &FieldError{Field: field, Message: msg}
}
