// Package errors provides custom error types for the expense approval API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound         = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer   = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrStoreUnavailable = &AppError{Code: "STORE_UNAVAILABLE", Message: "The data store is temporarily unavailable, please try again", StatusCode: http.StatusServiceUnavailable}
)

// Project errors.
var (
	ErrProjectNotFound   = &AppError{Code: "PROJECT_NOT_FOUND", Message: "Project not found", StatusCode: http.StatusNotFound}
	ErrNoBudgetAllocated = &AppError{Code: "NO_BUDGET_ALLOCATED", Message: "No budget allocated for department", StatusCode: http.StatusUnprocessableEntity}
	ErrBudgetExceeded    = &AppError{Code: "BUDGET_EXCEEDED", Message: "Expense exceeds the remaining department budget", StatusCode: http.StatusUnprocessableEntity}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrEmptyRecipient = &AppError{Code: "EMPTY_RECIPIENT", Message: "Notification recipient is required", StatusCode: http.StatusBadRequest}
)

// Expense errors.
var (
	ErrExpenseNotFound   = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrInvalidAmount     = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrExpenseNotPending = &AppError{Code: "EXPENSE_NOT_PENDING", Message: "Only pending expenses can be approved or rejected", StatusCode: http.StatusConflict}
)

// Delegation errors.
var (
	ErrDelegationNotFound      = &AppError{Code: "DELEGATION_NOT_FOUND", Message: "Temporary approver not found", StatusCode: http.StatusNotFound}
	ErrDelegationAlreadyActive = &AppError{Code: "DELEGATION_ALREADY_ACTIVE", Message: "Project already has an active temporary approver", StatusCode: http.StatusConflict}
	ErrDelegationNotActive     = &AppError{Code: "DELEGATION_NOT_ACTIVE", Message: "Temporary approver is no longer active", StatusCode: http.StatusConflict}
	ErrInvalidApprover         = &AppError{Code: "INVALID_APPROVER", Message: "Temporary approver must be an active user with the approver role", StatusCode: http.StatusBadRequest}
	ErrInvalidDateRange        = &AppError{Code: "INVALID_DATE_RANGE", Message: "Expiry date must be after the start date", StatusCode: http.StatusBadRequest}
)

// ErrorKind is the coarse category of a failure, independent of its code.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindInvalidState ErrorKind = "invalid_state"
	KindValidation   ErrorKind = "validation"
	KindTransient    ErrorKind = "transient"
	KindUnknown      ErrorKind = "unknown"
)

// Kind classifies err into one of the failure categories callers branch on.
func Kind(err error) ErrorKind {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return KindUnknown
	}
	switch appErr.StatusCode {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindInvalidState
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusServiceUnavailable:
		return KindTransient
	}
	return KindUnknown
}
