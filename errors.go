package pmsgate

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a procedure yields no result
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when the store or driver fails
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails or the store rejects the call
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when the credential header is missing or ambiguous
	ErrUnauthorized = errors.New("unauthorized")
)

// Kind classifies an Error.
type Kind int

const (
	KindTransport Kind = iota
	KindApplication
	KindNotFound
	KindValidation
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the envelope for every non-2xx outcome: an HTTP status paired with
// a human readable message.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel matching e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalidInput:
		return e.Kind == KindApplication || e.Kind == KindValidation
	case ErrUnauthorized:
		return e.Kind == KindAuth
	case ErrInternal:
		return e.Kind == KindTransport
	}
	return false
}

// NotFoundError returns the outcome a route declares for a call that yields no result.
func NotFoundError(status int, message string) *Error {
	return &Error{Kind: KindNotFound, Status: status, Message: message}
}

// ApplicationError wraps a business-rule violation raised by the store.
func ApplicationError(message string, err error) *Error {
	return &Error{Kind: KindApplication, Status: http.StatusBadRequest, Message: message, Err: err}
}

// TransportError wraps any other store or driver failure.
func TransportError(message string, err error) *Error {
	return &Error{Kind: KindTransport, Status: http.StatusInternalServerError, Message: message, Err: err}
}

// ValidationError wraps a malformed parameter or request body.
func ValidationError(message string, err error) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message, Err: err}
}

// AuthError is returned when the credential header is missing or present more than once.
func AuthError(message string) *Error {
	return &Error{Kind: KindAuth, Status: http.StatusUnauthorized, Message: message, Err: ErrUnauthorized}
}
