// Package errors provides custom error types for the smartspend API.
// All service-layer errors should use AppError so responses stay consistent
// and never leak internal details to clients.
package errors

import "net/http"

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

// Is reports whether target is an AppError with the same code, so wrapped
// copies still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

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
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrIdentityMismatch   = &AppError{Code: "IDENTITY_MISMATCH", Message: "Invalid User ID or Email", StatusCode: http.StatusBadRequest}
)

// General errors.
var (
	ErrInvalidInput        = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound            = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer      = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrDatabaseUnavailable = &AppError{Code: "DATABASE_UNAVAILABLE", Message: "The database is currently unavailable", StatusCode: http.StatusServiceUnavailable}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "An account with that email already exists", StatusCode: http.StatusConflict}
)

// Expense validation and lookup errors.
var (
	ErrExpenseNotFound      = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrInvalidAmount        = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrInvalidCurrency      = &AppError{Code: "INVALID_CURRENCY", Message: "Unsupported currency", StatusCode: http.StatusBadRequest}
	ErrInvalidCategory      = &AppError{Code: "INVALID_CATEGORY", Message: "Unknown category", StatusCode: http.StatusBadRequest}
	ErrInvalidSubCategory   = &AppError{Code: "INVALID_SUB_CATEGORY", Message: "Sub-category does not belong to the selected category", StatusCode: http.StatusBadRequest}
	ErrInvalidPaymentMethod = &AppError{Code: "INVALID_PAYMENT_METHOD", Message: "Unknown payment method", StatusCode: http.StatusBadRequest}
	ErrInvalidDateRange     = &AppError{Code: "INVALID_DATE_RANGE", Message: "Start date cannot be after end date", StatusCode: http.StatusBadRequest}
	ErrFieldTooLong         = &AppError{Code: "FIELD_TOO_LONG", Message: "Field exceeds maximum length", StatusCode: http.StatusBadRequest}
)
