// Package common defines sentinel errors and small random-value helpers
// shared by the bot's layers. Callers should use errors.Is to match errors.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input validation errors surfaced back to the user as a re-prompt.
	ErrorInvalidInput = errors.New("invalid input")

	// Auth errors (invalid, malformed or expired admin token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
