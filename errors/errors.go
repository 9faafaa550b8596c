package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message, safe to show to callers.
	Message string `json:"message"`
	// Reason classifies token rejections; empty for other codes.
	Reason Reason `json:"reason,omitempty"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error. Never serialized.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Reason, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Constructors ---

// StartupConfig creates the fatal error that aborts process start-up.
// It is never downgraded into a per-request failure.
func StartupConfig(reason string) *AppError {
	return &AppError{
		Code: ErrCodeStartupConfig, Message: reason,
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
	}
}

// UnknownSetting creates the error returned when an unregistered setting
// name is requested.
func UnknownSetting(name string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownSetting, Message: fmt.Sprintf("unknown configuration setting: %s", name),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"setting": name},
	}
}

// TokenValidation creates the error for a rejected bearer token. Only the
// coarse reason is exposed; cause stays server-side.
func TokenValidation(reason Reason) *AppError {
	return &AppError{
		Code: ErrCodeTokenValidation, Reason: reason,
		Message:    "Invalid token.",
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// MalformedHeader creates the error for an Authorization header that is
// missing or not in "Bearer <token>" form.
func MalformedHeader(reason string) *AppError {
	if reason == "" {
		reason = "Invalid Authorization header."
	}
	return &AppError{
		Code: ErrCodeMalformedHeader, Message: reason,
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// FeatureDisabled creates the error for a development-only feature invoked
// while disabled. It maps to 404 so the endpoint's existence stays hidden.
func FeatureDisabled(feature string) *AppError {
	return &AppError{
		Code: ErrCodeFeatureDisabled, Message: "Not found.",
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"feature": feature},
	}
}

// Unauthorized creates a new AppError for unauthorized access.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// Forbidden creates a new AppError for forbidden access.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "You don't have permission to perform this action."
	}
	return &AppError{
		Code: ErrCodeForbidden, Message: reason,
		HTTPStatus: http.StatusForbidden, Retryable: false,
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource string) *AppError {
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"resource": resource},
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// RateLimited creates a new AppError for a caller that exceeded the request
// budget.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Rate limit exceeded. Please retry later.",
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
	}
}

// Internal creates a new AppError for an internal server error. The caller
// sees a generic message; the cause is only logged.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "A processing error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// DatabaseError creates a new AppError for a database error.
func DatabaseError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDatabaseError, Message: "A database error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Retryable: true, Cause: cause,
	}
}
