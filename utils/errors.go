package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an error with a fixed HTTP mapping. Challenge adds a
// WWW-Authenticate: Bearer header to the response.
type APIError struct {
	Status    int
	Detail    string
	Challenge bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Detail)
}

// Is matches on status and detail so package level sentinels work with
// errors.Is even after wrapping.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.Status == t.Status && e.Detail == t.Detail
}

var (
	ErrUnauthenticated    = &APIError{Status: http.StatusUnauthorized, Detail: "Not authenticated", Challenge: true}
	ErrExpiredToken       = &APIError{Status: http.StatusUnauthorized, Detail: "Access token has expired", Challenge: true}
	ErrInvalidCredentials = &APIError{Status: http.StatusUnauthorized, Detail: "Invalid credentials", Challenge: true}
	ErrRateLimited        = &APIError{Status: http.StatusTooManyRequests, Detail: "Too many requests"}
	ErrInternal           = &APIError{Status: http.StatusInternalServerError, Detail: "Internal server error"}
)

func Forbidden(detail string) *APIError {
	return &APIError{Status: http.StatusForbidden, Detail: detail}
}

func NotFound(detail string) *APIError {
	return &APIError{Status: http.StatusNotFound, Detail: detail}
}

// Validation reports rejected input: bad fields, malformed bodies,
// non-numeric ids or a taken username.
func Validation(detail string) *APIError {
	return &APIError{Status: http.StatusUnprocessableEntity, Detail: detail}
}
