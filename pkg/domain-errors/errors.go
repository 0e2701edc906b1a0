// Package dErrors provides coded domain errors shared by all services.
//
// Services return these so transport layers can translate them into HTTP
// responses without inspecting error strings. Infrastructure layers return
// pkg/platform/sentinel errors instead; services wrap those into domain
// errors at the boundary.
package dErrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of domain failure.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal_error"
)

// Error is a domain error with a stable code and a human-readable message.
// Two errors are equal when code and message match, so tests can assert
// with errors.Is against a freshly constructed value.
type Error struct {
	Code    Code
	Message string
}

func (e Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is matches on code and message for exact comparisons, and on code alone
// when the target has an empty message.
func (e Error) Is(target error) bool {
	var t Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Message == "" {
		return e.Code == t.Code
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New constructs a domain error.
func New(code Code, message string) Error {
	return Error{Code: code, Message: message}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var e Error
	return errors.As(err, &e) && e.Code == code
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var e Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
