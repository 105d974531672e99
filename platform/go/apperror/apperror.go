package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure into the closed taxonomy shared by every handler.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
	KindInternal
)

// Error is the canonical application error: a kind for HTTP mapping, a stable
// machine-readable code, and a human message safe to surface to end users.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds an Error without a cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap builds an Error preserving the underlying cause for logs; the cause is
// never serialized to clients.
func Wrap(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, cause: cause}
}

// Validationf builds a validation error with a formatted message.
func Validationf(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts an *Error from err's chain, if present.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the taxonomy kind for err, defaulting to KindInternal for
// anything outside the chain.
func KindOf(err error) Kind {
	if appErr, ok := AsError(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the status code used consistently at the API
// boundary (conflict covers illegal state transitions, see order handlers).
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
