package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
// These are generic errors that can be wrapped with additional context
var (
	// Authentication errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRefreshUnsupported = errors.New("token refresh not supported by backend")
	ErrSessionExpired     = errors.New("session expired")

	// Domain errors
	ErrNotFound  = errors.New("not found")
	ErrEmptyCart = errors.New("cart is empty")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")

	// HTTP/Network errors
	ErrConnectionFailed = errors.New("connection failed")
	ErrRequestFailed    = errors.New("request failed")
	ErrTimeout          = errors.New("operation timeout")
)

// ClientError provides structured error information with context
// It implements the error interface and supports error wrapping
type ClientError struct {
	Op         string // Operation that failed (e.g., "catalog.Get")
	Kind       string // Error kind (e.g., "auth", "validation", "transport")
	Status     int    // HTTP status code, 0 when the request never completed
	APIMessage string // Human-readable message from the backend, if any
	Err        error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *ClientError) Error() string {
	if e.Op != "" && e.Err != nil {
		if e.Status != 0 {
			return fmt.Sprintf("%s (status %d): %v", e.Op, e.Status, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.APIMessage != "" {
		return e.APIMessage
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewClientError creates a new ClientError
func NewClientError(op, kind string, err error) *ClientError {
	return &ClientError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// IsAuthError checks if an error represents an authentication failure
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrSessionExpired)
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable checks if an error is retryable
// Retryable errors are typically transient network or availability issues
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConnectionFailed) ||
		errors.Is(err, ErrTimeout)
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}
