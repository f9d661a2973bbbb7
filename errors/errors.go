package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Core taxonomy of the desk engine.
	ErrNotAuthenticated   = fmt.Errorf("identity was never established")
	ErrNotAvailable       = fmt.Errorf("identity is no longer waiting")
	ErrDuplicate          = fmt.Errorf("message id already seen")
	ErrInvariantViolation = fmt.Errorf("room state invariant violated")

	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no censored words loaded")

	// Account / gateway side.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrTaskNotFound       = fmt.Errorf("task not found")
	ErrAccessDenied       = fmt.Errorf("access denied")
	ErrInvalidPayload     = fmt.Errorf("invalid payload type")
)

// MapToHTTPStatus translates domain sentinels into HTTP status codes for the
// gateway. Anything unknown is reported as an internal error; the acting
// client gets a generic message, other participants are unaffected.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserAlreadyExists), errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotAvailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
