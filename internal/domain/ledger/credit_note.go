package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joyeria/backend/internal/domain/shared"
	"github.com/joyeria/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Redemption records one consumption of a credit note as a payment
// instrument on another order
type Redemption struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	RedeemedAt time.Time       `json:"redeemed_at"`
}

// Redemptions is a slice of Redemption that implements GORM
// Scanner/Valuer for JSONB storage
type Redemptions []Redemption

// Value implements driver.Valuer interface for GORM to store as JSONB
func (r Redemptions) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (r *Redemptions) Scan(value interface{}) error {
	if value == nil {
		*r = Redemptions{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Redemptions: unsupported type")
	}

	if len(bytes) == 0 {
		*r = Redemptions{}
		return nil
	}

	return json.Unmarshal(bytes, r)
}

// CreditNote is the store-credit aggregate root (nota de crédito). It is
// a one-shot grant bounded by the money actually collected on the origin
// order, then a depleting counter: totalUsed only grows and never passes
// totalOriginal. The available balance is always derived server-side.
type CreditNote struct {
	shared.BaseAggregateRoot
	NoteNumber      string          `json:"note_number"`
	OriginOrderType OrderType       `json:"origin_order_type"`
	OriginOrderID   uuid.UUID       `json:"origin_order_id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	TotalOriginal   decimal.Decimal `json:"total_original"`
	TotalUsed       decimal.Decimal `json:"total_used"`
	Cancelled       bool            `json:"cancelled"`
	Redemptions     Redemptions     `json:"redemptions"`
	IssuedBy        uuid.UUID       `json:"issued_by"`
	Remark          string          `json:"remark"`
	CancelledAt     *time.Time      `json:"cancelled_at"`
	CancelReason    string          `json:"cancel_reason"`
}

// IssueCreditNote creates a credit note against an origin order. The
// requested amount is capped by collectedCap, which the caller computes
// as min(origin.collected, origin.total) at issuance time: a customer can
// only be credited for what they actually paid. Single issuance per
// origin is the caller's check; it requires repository knowledge.
func IssueCreditNote(
	noteNumber string,
	originType OrderType,
	originID uuid.UUID,
	customerID uuid.UUID,
	customerName string,
	requested valueobject.Money,
	collectedCap valueobject.Money,
	employeeID uuid.UUID,
) (*CreditNote, error) {
	if noteNumber == "" {
		return nil, shared.NewDomainError("INVALID_NOTE_NUMBER", "Note number cannot be empty")
	}
	if !originType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORDER_TYPE", fmt.Sprintf("Origin order type %q is not valid", originType))
	}
	if originID == uuid.Nil {
		return nil, shared.NewDomainError(ErrCodeOriginNotFound, "Origin order ID cannot be empty")
	}
	if !requested.IsPositive() {
		return nil, shared.NewDomainError(ErrCodeExceedsPaidAmount, "Credit note amount must be positive")
	}
	if over, _ := requested.GreaterThan(collectedCap); over {
		return nil, shared.NewDomainError(ErrCodeExceedsPaidAmount,
			fmt.Sprintf("Requested credit %s exceeds the %s collected on the origin order",
				requested.StringFixed(), collectedCap.StringFixed()))
	}

	cn := &CreditNote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		NoteNumber:        noteNumber,
		OriginOrderType:   originType,
		OriginOrderID:     originID,
		CustomerID:        customerID,
		CustomerName:      customerName,
		TotalOriginal:     requested.Amount(),
		TotalUsed:         decimal.Zero,
		Redemptions:       Redemptions{},
		IssuedBy:          employeeID,
	}

	cn.AddDomainEvent(NewCreditNoteIssuedEvent(cn))

	return cn, nil
}

// Renumber assigns a fresh folio to a note that has not been saved
// yet, after the generated number lost a race to a concurrent
// issuance. The queued issuance event is updated to match.
func (cn *CreditNote) Renumber(noteNumber string) {
	cn.NoteNumber = noteNumber
	for _, event := range cn.GetDomainEvents() {
		if issued, ok := event.(*CreditNoteIssuedEvent); ok {
			issued.NoteNumber = noteNumber
		}
	}
}

// TotalAvailable returns the redeemable balance, derived and never
// negative
func (cn *CreditNote) TotalAvailable() valueobject.Money {
	available, _ := cn.GetTotalOriginalMoney().SubtractSaturating(cn.GetTotalUsedMoney())
	return available
}

// Redeem consumes part of the note's available balance as payment on
// another order. The balance check and the totalUsed increment are one
// step on the aggregate; the caller serializes access per note so two
// concurrent redemptions against a near-exhausted note cannot both pass.
func (cn *CreditNote) Redeem(amount valueobject.Money, orderID uuid.UUID) error {
	if cn.Cancelled {
		return shared.NewDomainError(ErrCodeCancelled,
			fmt.Sprintf("Credit note %s is cancelled", cn.NoteNumber))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError(ErrCodeInvalidBreakdown, "Redemption amount must be positive")
	}
	if over, _ := amount.GreaterThan(cn.TotalAvailable()); over {
		return shared.NewDomainError(ErrCodeInsufficientBalance,
			fmt.Sprintf("Redemption of %s exceeds the available credit %s",
				amount.StringFixed(), cn.TotalAvailable().StringFixed()))
	}

	cn.Redemptions = append(cn.Redemptions, Redemption{
		ID:         uuid.New(),
		OrderID:    orderID,
		Amount:     amount.Amount(),
		RedeemedAt: time.Now(),
	})
	cn.TotalUsed = cn.TotalUsed.Add(amount.Amount())
	cn.UpdatedAt = time.Now()
	cn.IncrementVersion()

	cn.AddDomainEvent(NewCreditNoteRedeemedEvent(cn, amount, orderID))

	return nil
}

// Cancel marks the note cancelled. Terminal: it blocks further
// redemption but does not undo redemptions already made.
func (cn *CreditNote) Cancel(reason string) error {
	if cn.Cancelled {
		return shared.NewDomainError(ErrCodeCancelled,
			fmt.Sprintf("Credit note %s is already cancelled", cn.NoteNumber))
	}

	now := time.Now()
	cn.Cancelled = true
	cn.CancelledAt = &now
	cn.CancelReason = reason
	cn.UpdatedAt = now
	cn.IncrementVersion()

	cn.AddDomainEvent(NewCreditNoteCancelledEvent(cn))

	return nil
}

// SetRemark sets the remark
func (cn *CreditNote) SetRemark(remark string) {
	cn.Remark = remark
	cn.UpdatedAt = time.Now()
	cn.IncrementVersion()
}

// Helper methods

// GetTotalOriginalMoney returns the original amount as Money
func (cn *CreditNote) GetTotalOriginalMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(cn.TotalOriginal)
}

// GetTotalUsedMoney returns the used amount as Money
func (cn *CreditNote) GetTotalUsedMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(cn.TotalUsed)
}

// IsExhausted returns true if no balance remains
func (cn *CreditNote) IsExhausted() bool {
	return cn.TotalAvailable().IsZero()
}

// RedemptionCount returns the number of redemptions made against the note
func (cn *CreditNote) RedemptionCount() int {
	return len(cn.Redemptions)
}
