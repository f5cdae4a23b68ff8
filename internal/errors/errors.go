// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrSearchUnavailable indicates the restaurant or genre search API could not
	// produce a usable answer (network failure, non-200 status, bad JSON, API error).
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPostback indicates postback data that is not a recognized action token.
	ErrInvalidPostback = errors.New("invalid postback data")

	// ErrMissingParameter indicates a required parameter is missing.
	ErrMissingParameter = errors.New("missing required parameter")
)

// IsSearchUnavailable reports whether err is a search API failure.
func IsSearchUnavailable(err error) bool {
	return errors.Is(err, ErrSearchUnavailable)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// APIError represents a failed call to an upstream web API.
// Endpoint is a logical name ("gourmet", "genre"), never a URL carrying the API key.
type APIError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api error (endpoint=%s, status=%d): %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api error (endpoint=%s): %v", e.Endpoint, e.Err)
}

// Unwrap exposes both the cause and ErrSearchUnavailable to errors.Is.
func (e *APIError) Unwrap() []error {
	return []error{ErrSearchUnavailable, e.Err}
}

// NewAPIError creates a new API error.
func NewAPIError(endpoint string, statusCode int, err error) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Err:        err,
	}
}
