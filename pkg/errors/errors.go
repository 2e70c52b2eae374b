package errors

import (
	"fmt"
	"net/http"
)

// Code is a machine-readable error code returned to API clients.
type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeNotFound             Code = "NOT_FOUND"
	CodeInvalidTransition    Code = "INVALID_TRANSITION"
	CodeOrdersNotFound       Code = "ORDERS_NOT_FOUND"
	CodeUpcomingAppointments Code = "HAS_UPCOMING_APPOINTMENTS"
	CodePermissionDenied     Code = "PERMISSION_DENIED"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeConflict             Code = "CONFLICT"
	CodeInternal             Code = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    Code        `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
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

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeValidation, CodeInvalidTransition, CodeUpcomingAppointments:
		return http.StatusBadRequest
	case CodeNotFound, CodeOrdersNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func Validation(message string, details interface{}) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("transition from %s to %s is not allowed", from, to),
	}
}

func OrdersNotFound(missing []string) *AppError {
	return &AppError{
		Code:    CodeOrdersNotFound,
		Message: "one or more orders were not found",
		Details: missing,
	}
}

func UpcomingAppointments(count int) *AppError {
	return &AppError{
		Code:    CodeUpcomingAppointments,
		Message: fmt.Sprintf("record has %d upcoming appointments", count),
	}
}

func PermissionDenied(message string) *AppError {
	return &AppError{
		Code:    CodePermissionDenied,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal server error",
		Err:     err,
	}
}
