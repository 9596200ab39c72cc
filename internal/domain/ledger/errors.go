package ledger

// Error codes returned by the payment allocation and credit ledger engine.
// Every operation fails with one of these named kinds, never a generic
// failure; the HTTP layer maps each code to a specific status and message.
const (
	ErrCodeInvalidBreakdown    = "INVALID_BREAKDOWN"
	ErrCodeExceedsRemaining    = "EXCEEDS_REMAINING"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeOriginNotFound      = "ORIGIN_NOT_FOUND"
	ErrCodeAlreadyIssued       = "ALREADY_ISSUED"
	ErrCodeExceedsPaidAmount   = "EXCEEDS_PAID_AMOUNT"
	ErrCodeCancelled           = "CANCELLED"
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeFolioConflict       = "FOLIO_CONFLICT"
)
