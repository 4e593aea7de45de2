// Package apperrors defines the error taxonomy shared by the service layer and
// the HTTP surface. Each type maps to exactly one HTTP status.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports an unknown id.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ForbiddenError reports an actor lacking permission for an operation.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// UnauthorizedError reports a missing session or bad credentials.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// InternalError wraps an unexpected failure. Its cause is never shown to clients.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func Forbidden(message string) error {
	return &ForbiddenError{Message: message}
}

func Unauthorized(message string) error {
	return &UnauthorizedError{Message: message}
}

// Internal wraps err unless it already belongs to the taxonomy.
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}

// Classified reports whether err is one of the client-facing error types.
func Classified(err error) bool {
	var (
		v *ValidationError
		n *NotFoundError
		f *ForbiddenError
		u *UnauthorizedError
	)
	return errors.As(err, &v) || errors.As(err, &n) || errors.As(err, &f) || errors.As(err, &u)
}

// HTTPStatus maps err to its response status. Unclassified errors are 500.
func HTTPStatus(err error) int {
	var (
		v *ValidationError
		n *NotFoundError
		f *ForbiddenError
		u *UnauthorizedError
	)
	switch {
	case errors.As(err, &v):
		return http.StatusBadRequest
	case errors.As(err, &n):
		return http.StatusNotFound
	case errors.As(err, &f):
		return http.StatusForbidden
	case errors.As(err, &u):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
