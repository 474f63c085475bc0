// Package errors provides custom error types for the AUDYCON admin API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
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
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAdminOnly          = &AppError{Code: "ADMIN_ONLY", Message: "This operation requires an active administrator", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Account lifecycle errors. Each guard failure carries a specific message
// naming the guard that rejected the operation.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail  = &AppError{Code: "DUPLICATE_EMAIL", Message: "An account with this email already exists", StatusCode: http.StatusConflict}
	ErrSelfDelete      = &AppError{Code: "SELF_DELETE", Message: "You cannot delete your own account", StatusCode: http.StatusForbidden}
	ErrLastAdmin       = &AppError{Code: "LAST_ADMIN", Message: "Cannot remove the last administrator", StatusCode: http.StatusForbidden}
	ErrInvalidState    = &AppError{Code: "INVALID_STATE", Message: "The account state does not allow this operation", StatusCode: http.StatusConflict}
)

// Collaborator store errors. ErrIdentityStore means the remote credential
// authority rejected or failed the call and no local mutation happened.
// ErrInconsistentState means the credential was removed upstream but the
// local profile update failed afterwards; the orphaned profile row needs
// operator attention and the error must never be silently retried.
var (
	ErrIdentityStore     = &AppError{Code: "IDENTITY_STORE", Message: "The identity store rejected the operation", StatusCode: http.StatusBadGateway}
	ErrInconsistentState = &AppError{Code: "INCONSISTENT_STATE", Message: "Credential removed but profile update failed; manual reconciliation required", StatusCode: http.StatusInternalServerError}
)
