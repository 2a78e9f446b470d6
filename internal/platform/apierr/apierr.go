package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuthRequired     = errors.New("auth required")
	ErrCompletionFailed = errors.New("completion failed")
	ErrUploadDegraded   = errors.New("upload degraded")
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Validation wraps ErrValidation with a field-level message.
func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, "validation_error", fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...)))
}

func AuthRequired(reason string) *Error {
	return New(http.StatusUnauthorized, "auth_required", fmt.Errorf("%w: %s", ErrAuthRequired, reason))
}

func CompletionFailed(err error) *Error {
	return New(http.StatusBadGateway, "completion_failed", fmt.Errorf("%w: %v", ErrCompletionFailed, err))
}

func UploadDegraded(err error) *Error {
	return New(http.StatusAccepted, "upload_degraded", fmt.Errorf("%w: %v", ErrUploadDegraded, err))
}

func NotFound(what string) *Error {
	return New(http.StatusNotFound, "not_found", fmt.Errorf("%w: %s", ErrNotFound, what))
}

// Classify maps any error onto a status and code for the HTTP layer.
func Classify(err error) (int, string) {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status, ae.Code
	}
	switch {
	case errors.Is(err, ErrAuthRequired):
		return http.StatusUnauthorized, "auth_required"
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrCompletionFailed):
		return http.StatusBadGateway, "completion_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
