// Package apperror defines the error kinds surfaced by the API and their HTTP mapping.
package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindInvalidCredentials
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
	KindUpstream
)

// Error carries a client-safe message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by identity of kind and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches cause to a copy of sentinel.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: cause}
}

func Validation(message string) *Error { return New(KindValidation, message) }

func Upstream(message string, cause error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: cause}
}

func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: cause}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindDuplicate, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage never leaks the cause of internal or upstream failures.
func PublicMessage(err error) string {
	e, ok := As(err)
	if !ok {
		return "internal server error"
	}
	return e.Message
}
