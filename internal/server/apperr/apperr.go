// Package apperr defines the error kinds shared by the server services
// and their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Kind классифицирует ошибку для клиента
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindConflict
	KindTooManyRequests
)

// Sentinel errors, one per kind. errors.Is(err, ErrNotFound) holds for any *Error of KindNotFound.
var (
	ErrInternal     = errors.New("internal error")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("too many requests")
)

// String returns the machine readable code sent in error envelopes.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindTooManyRequests:
		return "TOO_MANY_REQUESTS"
	default:
		return "INTERNAL"
	}
}

// StatusCode возвращает HTTP статус для вида ошибки
func (k Kind) StatusCode() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindBadRequest:
		return ErrBadRequest
	case KindUnauthorized:
		return ErrUnauthorized
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindTooManyRequests:
		return ErrRateLimited
	default:
		return ErrInternal
	}
}

// Error is a classified error. Message is safe to show to clients,
// Err keeps the underlying cause for logs only.
type Error struct {
	Err     error
	Message string
	Kind    Kind
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать *Error с sentinel ошибками через errors.Is
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// New creates a classified error without a cause.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error that keeps err as its cause.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func BadRequest(message string) error   { return New(KindBadRequest, message) }
func Unauthorized(message string) error { return New(KindUnauthorized, message) }
func NotFound(message string) error     { return New(KindNotFound, message) }
func Conflict(message string) error     { return New(KindConflict, message) }
func TooManyRequests(message string) error {
	return New(KindTooManyRequests, message)
}

// Internal оборачивает неожиданную ошибку; причина не показывается клиенту
func Internal(message string, err error) error {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the kind of err. Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client safe message of err.
// Unclassified errors never leak their text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}
