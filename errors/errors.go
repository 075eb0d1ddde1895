package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DispatchErrorType categorizes failures of the dispatch core
type DispatchErrorType string

const (
	// DuplicateRegistrationError: two handlers registered for the same kind. Setup-time only.
	DuplicateRegistrationError DispatchErrorType = "duplicate_registration"
	// RegistrySealedError: registration attempted after the registry was sealed. Setup-time only.
	RegistrySealedError DispatchErrorType = "registry_sealed"
	// HandlerNotFoundError: no handler registered for an encountered kind. Always a configuration defect.
	HandlerNotFoundError DispatchErrorType = "handler_not_found"
	ValidationError      DispatchErrorType = "validation"
	NotFoundError        DispatchErrorType = "not_found"
	InternalError        DispatchErrorType = "internal"
)

// DispatchError provides structured error information with HTTP status suggestions
type DispatchError struct {
	Type    DispatchErrorType `json:"type"`
	Message string            `json:"message"`
	Code    int               `json:"code"`
	Details map[string]any    `json:"details,omitempty"`
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Constructor functions for common error types
func NewDuplicateRegistrationError(kind string) *DispatchError {
	return &DispatchError{
		Type:    DuplicateRegistrationError,
		Message: fmt.Sprintf("handler already registered for kind %q", kind),
		Code:    http.StatusInternalServerError,
		Details: map[string]any{"kind": kind},
	}
}

func NewRegistrySealedError(kind string) *DispatchError {
	return &DispatchError{
		Type:    RegistrySealedError,
		Message: fmt.Sprintf("cannot register handler for kind %q: registry is sealed", kind),
		Code:    http.StatusInternalServerError,
		Details: map[string]any{"kind": kind},
	}
}

func NewHandlerNotFoundError(kind string) *DispatchError {
	return &DispatchError{
		Type:    HandlerNotFoundError,
		Message: fmt.Sprintf("no handler registered for kind %q", kind),
		Code:    http.StatusInternalServerError,
		Details: map[string]any{"kind": kind},
	}
}

func NewValidationError(message string, details ...map[string]any) *DispatchError {
	var d map[string]any
	if len(details) > 0 {
		d = details[0]
	}
	return &DispatchError{
		Type:    ValidationError,
		Message: message,
		Code:    http.StatusBadRequest,
		Details: d,
	}
}

func NewNotFoundError(message string) *DispatchError {
	return &DispatchError{
		Type:    NotFoundError,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

func NewInternalError(message string) *DispatchError {
	return &DispatchError{
		Type:    InternalError,
		Message: message,
		Code:    http.StatusInternalServerError,
	}
}

// IsDispatchError checks if an error is a DispatchError and returns it
func IsDispatchError(err error) (*DispatchError, bool) {
	var dispatchErr *DispatchError
	if errors.As(err, &dispatchErr) {
		return dispatchErr, true
	}
	return nil, false
}

// IsHandlerNotFound reports whether err is a handler-resolution failure.
// Callers use this to tell a deployment defect apart from request errors.
func IsHandlerNotFound(err error) bool {
	if dispatchErr, ok := IsDispatchError(err); ok {
		return dispatchErr.Type == HandlerNotFoundError
	}
	return false
}
