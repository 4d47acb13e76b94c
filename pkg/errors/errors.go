// Package errors defines the client-side error taxonomy. Every failure that
// crosses a package boundary is an *AppError carrying a stable code, so
// callers branch on codes instead of string matching.
package errors

import (
	"errors"
	"fmt"
)

const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeNetworkFailure     = "NETWORK_FAILURE"
	CodeServerError        = "SERVER_ERROR"
	CodeStreamDisconnected = "STREAM_DISCONNECTED"
	CodeStaleResponse      = "STALE_RESPONSE"
	CodeInvalidPayload     = "INVALID_PAYLOAD"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Unauthenticated marks an action that requires a signed-in user when none is
// set. Callers treat it as an expected condition, not a failure.
func Unauthenticated(action string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: fmt.Sprintf("%s requires an authenticated user", action),
	}
}

// Network marks a request that never produced an HTTP response.
func Network(message string, err error) *AppError {
	return &AppError{
		Code:    CodeNetworkFailure,
		Message: message,
		Err:     err,
	}
}

// Server marks a non-2xx response from the backend.
func Server(status int, message string) *AppError {
	return &AppError{
		Code:       CodeServerError,
		Message:    message,
		HTTPStatus: status,
	}
}

// StreamDisconnected marks the push channel being down.
func StreamDisconnected(message string, err error) *AppError {
	return &AppError{
		Code:    CodeStreamDisconnected,
		Message: message,
		Err:     err,
	}
}

// Stale marks a response that no longer matches what the caller is looking
// at. It is dropped silently, never surfaced to the user.
func Stale(resource, key string) *AppError {
	return &AppError{
		Code:    CodeStaleResponse,
		Message: fmt.Sprintf("%s response for %q no longer relevant", resource, key),
		Details: map[string]any{
			"resource": resource,
			"key":      key,
		},
	}
}

// InvalidPayload marks a payload that failed the strict decode at the API
// boundary.
func InvalidPayload(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInvalidPayload,
		Message: message,
		Err:     err,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: 404,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: 409,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// HasCode reports whether err is an *AppError with the given code anywhere in
// its chain.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
