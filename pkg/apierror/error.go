// Package apierror defines the error body returned by the HTTP API.
package apierror

import "net/http"

// Error is a structured API error. The JSON shape is flat:
// {"error": code, "message": ..., "game": ..., "retryAfter": ...}.
type Error struct {
	StatusCode    int    `json:"-"`
	Code          string `json:"error"`
	Message       string `json:"message,omitempty"`
	Game          string `json:"game,omitempty"`
	RetryAfterSec int    `json:"retryAfter,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// WithGame tags the error with the game it concerns.
func (e *Error) WithGame(game string) *Error {
	e.Game = game
	return e
}

// BadRequest creates a 400 error.
func BadRequest(message string) *Error {
	return &Error{StatusCode: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "authentication required"
	}
	return &Error{StatusCode: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *Error {
	if message == "" {
		message = "access denied"
	}
	return &Error{StatusCode: http.StatusForbidden, Code: "FORBIDDEN", Message: message}
}

// NotFound creates a 404 error.
func NotFound(message string) *Error {
	if message == "" {
		message = "resource not found"
	}
	return &Error{StatusCode: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

// RateLimited creates a 429 error with a wait hint in seconds.
func RateLimited(retryAfterSec int) *Error {
	return &Error{
		StatusCode:    http.StatusTooManyRequests,
		Code:          "RATE_LIMITED",
		Message:       "too many requests, slow down",
		RetryAfterSec: retryAfterSec,
	}
}

// UpstreamUnavailable creates a 502 error for failed upstream calls.
func UpstreamUnavailable(message string) *Error {
	if message == "" {
		message = "upstream temporarily unavailable, try again later"
	}
	return &Error{StatusCode: http.StatusBadGateway, Code: "UPSTREAM_UNAVAILABLE", Message: message}
}

// InternalError creates a 500 error.
func InternalError(message string) *Error {
	if message == "" {
		message = "an unexpected error occurred"
	}
	return &Error{StatusCode: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: message}
}
