// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation_error"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeError        ErrorType = "processing_error"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeTimeout      ErrorType = "timeout"

	// Attempt pipeline
	ErrorTypeModerationUnavailable ErrorType = "moderation_unavailable"
	ErrorTypeRateLimited           ErrorType = "rate_limited"
	ErrorTypeGenerationFailed      ErrorType = "generation_failed"
	ErrorTypeLogStoreCorrupt       ErrorType = "log_store_corrupt"

	// Startup only
	ErrorTypeAuthMissing ErrorType = "auth_missing"
)

// AppError is the application error carried across service boundaries
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
}

// Error implements error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error chaining
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

func NewUnauthorizedError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeUnauthorized, message, originalError)
}

func NewModerationUnavailableError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeModerationUnavailable, message, originalError)
}

func NewRateLimitedError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeRateLimited, message, originalError)
}

func NewGenerationFailedError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeGenerationFailed, message, originalError)
}

func NewLogStoreCorruptError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeLogStoreCorrupt, message, originalError)
}

func NewAuthMissingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeAuthMissing, message, originalError)
}

// TypeOf returns the ErrorType of the first AppError in the chain, or "" if none.
func TypeOf(err error) ErrorType {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type
	}
	return ""
}

// Is reports whether err carries an AppError of the given type
func Is(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

func IsValidationError(err error) bool {
	return Is(err, ErrorTypeValidation)
}

func IsUnauthorizedError(err error) bool {
	return Is(err, ErrorTypeUnauthorized)
}

func IsLogStoreCorrupt(err error) bool {
	return Is(err, ErrorTypeLogStoreCorrupt)
}

func IsAuthMissing(err error) bool {
	return Is(err, ErrorTypeAuthMissing)
}

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	case ErrorTypeUnauthorized:
		return "UNAUTHORIZED"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeModerationUnavailable:
		return "MODERATION_UNAVAILABLE"
	case ErrorTypeRateLimited:
		return "RATE_LIMITED"
	case ErrorTypeGenerationFailed:
		return "GENERATION_FAILED"
	case ErrorTypeLogStoreCorrupt:
		return "LOG_STORE_CORRUPT"
	case ErrorTypeAuthMissing:
		return "AUTH_MISSING"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError wraps err with a message, preserving an existing AppError type
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
