package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
)

// Scheduling error codes
const (
	ErrInvalidDate ErrorCode = iota + 2000
	ErrInvalidTime
	ErrInvalidDuration
	ErrDistrictAccessDenied
	ErrIncompatibleFacility
	ErrPatientDoubleBooking
	ErrProviderUnavailable
	ErrInvalidTransition
	ErrCancellationNotAllowed
	ErrPersistenceFailure
)

// CodeOf extracts the ErrorCode from err, or ErrInternal when err carries none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

// Scheduling errors. All are caller-fixable rejections detected before any
// write; none is retried automatically.

func InvalidDate(message string) *AppError {
	return &AppError{Code: ErrInvalidDate, Message: message}
}

func InvalidTime(message string) *AppError {
	return &AppError{Code: ErrInvalidTime, Message: message}
}

func InvalidDuration(message string) *AppError {
	return &AppError{Code: ErrInvalidDuration, Message: message}
}

func DistrictAccessDenied(district string) *AppError {
	return &AppError{
		Code:    ErrDistrictAccessDenied,
		Message: fmt.Sprintf("access to district %s denied", district),
	}
}

func IncompatibleFacility(message string) *AppError {
	return &AppError{Code: ErrIncompatibleFacility, Message: message}
}

func PatientDoubleBooking(message string) *AppError {
	return &AppError{Code: ErrPatientDoubleBooking, Message: message}
}

func ProviderUnavailable(message string) *AppError {
	return &AppError{Code: ErrProviderUnavailable, Message: message}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("invalid status transition from %s to %s", from, to),
	}
}

func CancellationNotAllowed(message string) *AppError {
	return &AppError{Code: ErrCancellationNotAllowed, Message: message}
}

// PersistenceFailure wraps a storage error without interpreting it.
func PersistenceFailure(err error) *AppError {
	return &AppError{
		Code:    ErrPersistenceFailure,
		Message: "storage operation failed",
		Err:     err,
	}
}
