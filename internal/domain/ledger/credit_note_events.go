package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/joyeria/backend/internal/domain/shared"
	"github.com/joyeria/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for CreditNote
const AggregateTypeCreditNote = "CreditNote"

// Event type constants for CreditNote
const (
	EventTypeCreditNoteIssued    = "CreditNoteIssued"
	EventTypeCreditNoteRedeemed  = "CreditNoteRedeemed"
	EventTypeCreditNoteCancelled = "CreditNoteCancelled"
)

// CreditNoteIssuedEvent is raised when a credit note is issued against
// an origin order
type CreditNoteIssuedEvent struct {
	shared.BaseDomainEvent
	NoteID          uuid.UUID       `json:"note_id"`
	NoteNumber      string          `json:"note_number"`
	OriginOrderType OrderType       `json:"origin_order_type"`
	OriginOrderID   uuid.UUID       `json:"origin_order_id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	TotalOriginal   decimal.Decimal `json:"total_original"`
	IssuedBy        uuid.UUID       `json:"issued_by"`
}

// NewCreditNoteIssuedEvent creates a new CreditNoteIssuedEvent
func NewCreditNoteIssuedEvent(cn *CreditNote) *CreditNoteIssuedEvent {
	return &CreditNoteIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditNoteIssued, AggregateTypeCreditNote, cn.ID),
		NoteID:          cn.ID,
		NoteNumber:      cn.NoteNumber,
		OriginOrderType: cn.OriginOrderType,
		OriginOrderID:   cn.OriginOrderID,
		CustomerID:      cn.CustomerID,
		CustomerName:    cn.CustomerName,
		TotalOriginal:   cn.TotalOriginal,
		IssuedBy:        cn.IssuedBy,
	}
}

// EventType returns the event type name
func (e *CreditNoteIssuedEvent) EventType() string {
	return EventTypeCreditNoteIssued
}

// CreditNoteRedeemedEvent is raised when part of a note's balance is
// consumed as payment on another order
type CreditNoteRedeemedEvent struct {
	shared.BaseDomainEvent
	NoteID         uuid.UUID       `json:"note_id"`
	NoteNumber     string          `json:"note_number"`
	OrderID        uuid.UUID       `json:"order_id"`
	RedeemedAmount decimal.Decimal `json:"redeemed_amount"`
	TotalUsed      decimal.Decimal `json:"total_used"`
	TotalAvailable decimal.Decimal `json:"total_available"`
}

// NewCreditNoteRedeemedEvent creates a new CreditNoteRedeemedEvent
func NewCreditNoteRedeemedEvent(cn *CreditNote, amount valueobject.Money, orderID uuid.UUID) *CreditNoteRedeemedEvent {
	return &CreditNoteRedeemedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditNoteRedeemed, AggregateTypeCreditNote, cn.ID),
		NoteID:          cn.ID,
		NoteNumber:      cn.NoteNumber,
		OrderID:         orderID,
		RedeemedAmount:  amount.Amount(),
		TotalUsed:       cn.TotalUsed,
		TotalAvailable:  cn.TotalAvailable().Amount(),
	}
}

// EventType returns the event type name
func (e *CreditNoteRedeemedEvent) EventType() string {
	return EventTypeCreditNoteRedeemed
}

// CreditNoteCancelledEvent is raised when a credit note is cancelled
type CreditNoteCancelledEvent struct {
	shared.BaseDomainEvent
	NoteID       uuid.UUID       `json:"note_id"`
	NoteNumber   string          `json:"note_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	TotalUsed    decimal.Decimal `json:"total_used"`
	CancelReason string          `json:"cancel_reason"`
	CancelledAt  time.Time       `json:"cancelled_at"`
}

// NewCreditNoteCancelledEvent creates a new CreditNoteCancelledEvent
func NewCreditNoteCancelledEvent(cn *CreditNote) *CreditNoteCancelledEvent {
	cancelledAt := time.Now()
	if cn.CancelledAt != nil {
		cancelledAt = *cn.CancelledAt
	}
	return &CreditNoteCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditNoteCancelled, AggregateTypeCreditNote, cn.ID),
		NoteID:          cn.ID,
		NoteNumber:      cn.NoteNumber,
		CustomerID:      cn.CustomerID,
		TotalUsed:       cn.TotalUsed,
		CancelReason:    cn.CancelReason,
		CancelledAt:     cancelledAt,
	}
}

// EventType returns the event type name
func (e *CreditNoteCancelledEvent) EventType() string {
	return EventTypeCreditNoteCancelled
}
