package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a node or profile was not found
	NotFoundError struct {
		Message      string
		ResourceType string
		ResourceID   string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

// Is allows errors.Is() to match the typed errors against the sentinels
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// NewNotFound returns a NotFoundError with a formatted resource description
func NewNotFound(resource, id string) error {
	return &NotFoundError{
		Message:      resource + " not found: " + id,
		ResourceType: resource,
		ResourceID:   id,
	}
}

// NewValidation wraps a validation failure message
func NewValidation(message string) error {
	return &ValidationError{Message: message}
}

// ConflictError indicates the target id is already taken
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

// Error implements the error interface
func (e *ConflictError) Error() string { return e.Message }

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NewConflict returns a ConflictError for an existing resource
func NewConflict(resource, id string) error {
	return &ConflictError{
		Message:      resource + " already exists: " + id,
		ResourceType: resource,
		ResourceID:   id,
	}
}
