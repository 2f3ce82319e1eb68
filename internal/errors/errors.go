package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeDecode     ErrorType = "decode"
	ErrorTypeEncode     ErrorType = "encode"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypePairing    ErrorType = "pairing"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured processing error
type AppError struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	Resource string    `json:"resource,omitempty"`
	Cause    error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := e.Message
	if e.Resource != "" {
		msg = fmt.Sprintf("%s (%s)", e.Message, e.Resource)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewDecodeError reports a resource that could not be interpreted as an image.
func NewDecodeError(resource string, cause error) *AppError {
	return &AppError{
		Type:     ErrorTypeDecode,
		Message:  "cannot decode image",
		Resource: resource,
		Cause:    cause,
	}
}

// NewEncodeError reports a composited buffer that could not be serialized.
func NewEncodeError(resource string, cause error) *AppError {
	return &AppError{
		Type:     ErrorTypeEncode,
		Message:  "cannot encode image",
		Resource: resource,
		Cause:    cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Cause:   cause,
	}
}

// NewPairingError creates a new pairing error
func NewPairingError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypePairing,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Cause:   cause,
	}
}

// IsType checks if any error in the chain is an AppError of the given type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// HTTPStatus maps an error to the status code the HTTP surface answers with
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case ErrorTypeDecode, ErrorTypePairing:
		return http.StatusUnprocessableEntity
	case ErrorTypeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
