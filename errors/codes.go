package errors

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Configuration errors
const (
	// ErrCodeStartupConfig indicates the process refused to start because of
	// an unsafe or invalid configuration. Always fatal.
	ErrCodeStartupConfig ErrorCode = "STARTUP_CONFIG"
	// ErrCodeUnknownSetting indicates a request for a setting that is not in
	// the recognized registry. Programmer error.
	ErrCodeUnknownSetting ErrorCode = "UNKNOWN_SETTING"
)

// Authentication errors
const (
	// ErrCodeUnauthorized indicates the request is unauthorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeForbidden indicates the request is forbidden.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
	// ErrCodeTokenValidation indicates a bearer token was rejected. The
	// rejection reason travels in the error's Reason field.
	ErrCodeTokenValidation ErrorCode = "TOKEN_VALIDATION"
	// ErrCodeMalformedHeader indicates an Authorization header that does not
	// follow the "Bearer <token>" form.
	ErrCodeMalformedHeader ErrorCode = "MALFORMED_HEADER"
	// ErrCodeFeatureDisabled indicates a development-only feature was called
	// while disabled.
	ErrCodeFeatureDisabled ErrorCode = "FEATURE_DISABLED"
)

// Request/resource errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeRateLimited indicates the caller exceeded the request budget.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDatabaseError indicates a database error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

// Reason classifies why a bearer token was rejected. Only the reason is
// observable externally; the underlying parser error stays server-side.
type Reason string

const (
	ReasonBadSignature     Reason = "BAD_SIGNATURE"
	ReasonExpired          Reason = "EXPIRED"
	ReasonIssuerMismatch   Reason = "ISSUER_MISMATCH"
	ReasonAudienceMismatch Reason = "AUDIENCE_MISMATCH"
	ReasonMalformed        Reason = "MALFORMED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeDatabaseError: true,
	ErrCodeRateLimited:   true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
