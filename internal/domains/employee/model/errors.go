package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeInvalidDepartment = "EMP001"
	ErrCodeEmployeeNotFound  = "EMP002"
	ErrCodeForbidden         = "EMP003"
	ErrCodeUploadFailed      = "EMP004"
	ErrCodePersistFailed     = "EMP005"
	ErrCodeInvalidImage      = "EMP006"
)

// Errors
var (
	ErrInvalidDepartment = errors.New("invalid department")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrForbidden         = errors.New("not allowed to modify this employee")
	ErrUploadFailed      = errors.New("image upload failed")
	ErrPersistFailed     = errors.New("failed to persist employee")
	ErrInvalidImage      = errors.New("invalid image")
)

// EmployeeError carries a stable code next to the wrapped sentinel.
type EmployeeError struct {
	Code    string
	Message string
	Err     error
	// Cause is the underlying infrastructure error, if any.
	Cause error
}

func (e *EmployeeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *EmployeeError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// Error constructors
func NewInvalidDepartmentError(value string) *EmployeeError {
	return &EmployeeError{
		Code:    ErrCodeInvalidDepartment,
		Message: fmt.Sprintf("Invalid department: %s. Must be a valid Department or Office.", value),
		Err:     ErrInvalidDepartment,
	}
}

func NewEmployeeNotFoundError() *EmployeeError {
	return &EmployeeError{
		Code:    ErrCodeEmployeeNotFound,
		Message: "Employee not found",
		Err:     ErrEmployeeNotFound,
	}
}

func NewForbiddenError() *EmployeeError {
	return &EmployeeError{
		Code:    ErrCodeForbidden,
		Message: "You are not allowed to modify this employee",
		Err:     ErrForbidden,
	}
}

func NewUploadFailedError(cause error) *EmployeeError {
	return &EmployeeError{
		Code:    ErrCodeUploadFailed,
		Message: "Failed to upload employee image",
		Err:     ErrUploadFailed,
		Cause:   cause,
	}
}

func NewPersistFailedError(cause error) *EmployeeError {
	return &EmployeeError{
		Code:    ErrCodePersistFailed,
		Message: "Failed to save employee",
		Err:     ErrPersistFailed,
		Cause:   cause,
	}
}

func NewInvalidImageError(cause error) *EmployeeError {
	return &EmployeeError{
		Code:    ErrCodeInvalidImage,
		Message: "Invalid employee image",
		Err:     ErrInvalidImage,
		Cause:   cause,
	}
}

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	var empErr *EmployeeError
	if errors.As(err, &empErr) {
		return empErr.Code
	}
	return "INTERNAL_ERROR"
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidDepartment), errors.Is(err, ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUploadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
