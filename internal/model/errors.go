package model

import "fmt"

// APIError is the unified error format. It carries the cause category and
// a user-facing remedy alongside the machine-readable code.
type APIError struct {
	Code     string // stable error code
	Message  string // user-facing message
	Category string // category: tenant, validation, opportunity, system
	Action   string // user-facing remedy
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Defined error codes. These form a closed set: the transport layer maps
// each code to an HTTP status and anything else to an internal error.
const (
	ErrCodeMissingTenant       = "MISSING_TENANT"
	ErrCodeInvalidTenantFormat = "INVALID_TENANT_FORMAT"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeOpportunityNotFound = "OPPORTUNITY_NOT_FOUND"
	ErrCodeStoreUnavailable    = "STORE_UNAVAILABLE"
)

// NewMissingTenantError is returned when a request carries no tenant
// identifier.
func NewMissingTenantError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingTenant,
		Message:  "the X-Tenant-ID header is required",
		Category: "tenant",
		Action:   "Send a valid tenant identifier in the X-Tenant-ID header.",
	}
}

// NewInvalidTenantFormatError is returned when the tenant identifier is not
// a well-formed UUID.
func NewInvalidTenantFormatError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTenantFormat,
		Message:  "the X-Tenant-ID header must be a valid UUID",
		Category: "tenant",
		Action:   "Check the tenant identifier and try again.",
	}
}

// NewValidationError is returned for a malformed completion payload.
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("invalid request: %s", reason),
		Category: "validation",
		Action:   "Correct the request payload and try again.",
	}
}

// NewOpportunityNotFoundError is returned when a scoped lookup misses.
// The message is deliberately generic: it never distinguishes an
// opportunity that does not exist from one owned by another tenant.
func NewOpportunityNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeOpportunityNotFound,
		Message:  "opportunity not found",
		Category: "opportunity",
		Action:   "Check the opportunity identifier.",
	}
}

// NewStoreUnavailableError is returned when the backing store fails.
// Diagnostic detail goes to the log only; the caller sees a generic message.
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "the service is temporarily unavailable",
		Category: "system",
		Action:   "Wait a moment and try again.",
	}
}
