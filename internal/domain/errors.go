package domain

import "errors"

// Sentinel errors used across service boundaries.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidCode  = errors.New("invalid authorization code")
)

// ErrorResponse is the standard JSON error envelope returned to clients.
// The HTTP status line always mirrors Status.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
