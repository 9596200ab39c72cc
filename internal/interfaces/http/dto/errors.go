package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeInvalidState is used when an operation is not allowed in the current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Ledger error codes
const (
	// ErrCodeInvalidBreakdown is used when a payment breakdown fails validation
	ErrCodeInvalidBreakdown = "ERR_INVALID_BREAKDOWN"
	// ErrCodeExceedsRemaining is used when an installment overshoots the open balance
	ErrCodeExceedsRemaining = "ERR_EXCEEDS_REMAINING"
	// ErrCodeExceedsPaidAmount is used when a credit note asks for more than was collected
	ErrCodeExceedsPaidAmount = "ERR_EXCEEDS_PAID_AMOUNT"
	// ErrCodeAlreadyIssued is used when the origin order already carries a live credit note
	ErrCodeAlreadyIssued = "ERR_ALREADY_ISSUED"
	// ErrCodeCancelledNote is used when operating on a cancelled credit note
	ErrCodeCancelledNote = "ERR_CANCELLED"
	// ErrCodeInsufficientBalance is used when a redemption exceeds the available balance
	ErrCodeInsufficientBalance = "ERR_INSUFFICIENT_BALANCE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,

	// Ledger rule violations -> 422 Unprocessable Entity,
	// except malformed breakdowns (400) and duplicate issuance (409)
	ErrCodeInvalidBreakdown:    http.StatusBadRequest,
	ErrCodeExceedsRemaining:    http.StatusUnprocessableEntity,
	ErrCodeExceedsPaidAmount:   http.StatusUnprocessableEntity,
	ErrCodeAlreadyIssued:       http.StatusConflict,
	ErrCodeCancelledNote:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientBalance: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// HTTP-facing codes
var DomainErrorCodeMapping = map[string]string{
	"INVALID_BREAKDOWN":     ErrCodeInvalidBreakdown,
	"EXCEEDS_REMAINING":     ErrCodeExceedsRemaining,
	"EXCEEDS_PAID_AMOUNT":   ErrCodeExceedsPaidAmount,
	"ALREADY_ISSUED":        ErrCodeAlreadyIssued,
	"CANCELLED":             ErrCodeCancelledNote,
	"INSUFFICIENT_BALANCE":  ErrCodeInsufficientBalance,
	"ORDER_NOT_FOUND":       ErrCodeNotFound,
	"ORIGIN_NOT_FOUND":      ErrCodeNotFound,
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"OPTIMISTIC_LOCK_ERROR": ErrCodeConcurrencyConflict,
	"FOLIO_CONFLICT":        ErrCodeConcurrencyConflict,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"VALIDATION_ERROR":      ErrCodeValidation,
	"BAD_REQUEST":           ErrCodeBadRequest,
	"INTERNAL_ERROR":        ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
