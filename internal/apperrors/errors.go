// Package apperrors contains sentinel errors used across layers for stable error mapping.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation indicates a malformed or incomplete request.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a uniqueness violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates the caller exhausted a request budget.
	ErrRateLimited = errors.New("rate limited")

	// ErrInternal indicates an unexpected server-side failure.
	ErrInternal = errors.New("internal error")
)

// Token validation failures. All of them surface as a generic 401 at the HTTP
// boundary; callers inside the process can tell them apart with errors.Is.
var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// Error pairs a sentinel kind with a caller-facing message. errors.Is against
// the sentinel still works through Unwrap.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// New builds an Error of the given kind.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// HTTPStatus maps an error to its response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether a failure may succeed on replay. Deterministic
// failures (validation, auth, missing records, conflicts) never do.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return HTTPStatus(err) >= http.StatusInternalServerError
}
