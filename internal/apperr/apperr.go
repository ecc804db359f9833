// Package apperr defines the error classes surfaced to users.
//
// Four classes exist:
//   - ValidationError: local, pre-flight, field scoped; never reaches the store
//   - AuthorizationError: the actor's role or ownership does not permit the mutation
//   - TransientError: the store or the realtime feed is unavailable
//   - ErrNotFound: a lookup found nothing
//
// None of them is retried automatically; the user re-submits.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by point updates and lookups that match no row.
var ErrNotFound = errors.New("not found")

// ValidationError rejects input before any remote call is made.
//
// Key identifies the message for localization; Message is the English text.
type ValidationError struct {
	Field   string
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a field-scoped validation error.
func NewValidationError(field, key, msg string) *ValidationError {
	return &ValidationError{Field: field, Key: key, Message: msg}
}

// AuthorizationError is returned when the actor may not perform an operation.
type AuthorizationError struct {
	Action string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not allowed to %s: %s", e.Action, e.Reason)
}

func NewAuthorizationError(action, reason string) *AuthorizationError {
	return &AuthorizationError{Action: action, Reason: reason}
}

// TransientError wraps failures of the store or the feed.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

// Unwrap returns the wrapped error for error chain inspection
func (e *TransientError) Unwrap() error {
	return e.Err
}

func NewTransientError(op string, err error) *TransientError {
	return &TransientError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}

func IsTransient(err error) bool {
	var target *TransientError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
