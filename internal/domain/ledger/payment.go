package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/joyeria/backend/internal/domain/shared"
	"github.com/joyeria/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents a payment instrument
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "CASH"        // Cash payment
	PaymentMethodCard       PaymentMethod = "CARD"        // Card payment
	PaymentMethodCreditNote PaymentMethod = "CREDIT_NOTE" // Store credit note redemption
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodCreditNote:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentEntry is one instrument's share of a payment event. A zero
// amount is legal: the POS records "selected, $0" instruments for
// non-sale order types.
type PaymentEntry struct {
	Method       PaymentMethod   `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	CreditNoteID *uuid.UUID      `json:"credit_note_id,omitempty"`
}

// NewCashEntry creates a cash payment entry
func NewCashEntry(amount valueobject.Money) PaymentEntry {
	return PaymentEntry{Method: PaymentMethodCash, Amount: amount.Amount()}
}

// NewCardEntry creates a card payment entry
func NewCardEntry(amount valueobject.Money) PaymentEntry {
	return PaymentEntry{Method: PaymentMethodCard, Amount: amount.Amount()}
}

// NewCreditNoteEntry creates a credit note redemption entry
func NewCreditNoteEntry(amount valueobject.Money, creditNoteID uuid.UUID) PaymentEntry {
	return PaymentEntry{Method: PaymentMethodCreditNote, Amount: amount.Amount(), CreditNoteID: &creditNoteID}
}

// GetAmountMoney returns the entry amount as Money value object
func (e *PaymentEntry) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(e.Amount)
}

// PaymentBreakdown is the ordered set of instrument entries attached to a
// single payment event. It implements GORM Scanner/Valuer for JSONB storage.
type PaymentBreakdown []PaymentEntry

// Value implements driver.Valuer interface for GORM to store as JSONB
func (b PaymentBreakdown) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (b *PaymentBreakdown) Scan(value interface{}) error {
	if value == nil {
		*b = PaymentBreakdown{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentBreakdown: unsupported type")
	}

	if len(bytes) == 0 {
		*b = PaymentBreakdown{}
		return nil
	}

	return json.Unmarshal(bytes, b)
}

// Total returns the exact sum of all entry amounts
func (b PaymentBreakdown) Total() valueobject.Money {
	sum := decimal.Zero
	for _, entry := range b {
		sum = sum.Add(entry.Amount)
	}
	return valueobject.NewMoneyMXN(sum)
}

// CreditNoteEntries returns the credit note redemption entries, in order
func (b PaymentBreakdown) CreditNoteEntries() []PaymentEntry {
	var entries []PaymentEntry
	for _, entry := range b {
		if entry.Method == PaymentMethodCreditNote {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Validate checks the breakdown against the declared total. The sum rule
// is strict: entry amounts must add up to declaredTotal at exact cent
// precision, no epsilon tolerance and no coercion. Negative entries are
// always rejected; zero-amount entries pass (explicitly selected
// instruments with nothing allocated to them).
func (b PaymentBreakdown) Validate(declaredTotal valueobject.Money) error {
	for i, entry := range b {
		if !entry.Method.IsValid() {
			return shared.NewDomainError(ErrCodeInvalidBreakdown,
				fmt.Sprintf("Entry %d has unknown payment method %q", i, entry.Method))
		}
		if entry.Amount.IsNegative() {
			return shared.NewDomainError(ErrCodeInvalidBreakdown,
				fmt.Sprintf("Entry %d has negative amount %s", i, entry.Amount.StringFixed(2)))
		}
		if entry.Method == PaymentMethodCreditNote && (entry.CreditNoteID == nil || *entry.CreditNoteID == uuid.Nil) {
			return shared.NewDomainError(ErrCodeInvalidBreakdown,
				fmt.Sprintf("Entry %d redeems a credit note but carries no credit note id", i))
		}
	}

	if !b.Total().Equals(declaredTotal) {
		return shared.NewDomainError(ErrCodeInvalidBreakdown,
			fmt.Sprintf("Breakdown sums to %s but %s was declared", b.Total().StringFixed(), declaredTotal.StringFixed()))
	}

	return nil
}

// PaymentLabel is the human-facing "forma de pago" classification of a
// breakdown
type PaymentLabel string

const (
	LabelNone       PaymentLabel = "NONE"        // No instrument carried money
	LabelCash       PaymentLabel = "CASH"        // Cash only
	LabelCard       PaymentLabel = "CARD"        // Card only
	LabelCreditNote PaymentLabel = "CREDIT_NOTE" // Credit note only
	LabelMixed      PaymentLabel = "MIXED"       // Exactly two instruments
	LabelCombined   PaymentLabel = "COMBINED"    // All three instruments
)

// String returns the string representation of PaymentLabel
func (l PaymentLabel) String() string {
	return string(l)
}

// Classify derives the payment-method label from a breakdown. Only
// entries with a positive amount count; a method appearing twice counts
// once. Two distinct methods yield MIXED, all three yield COMBINED.
func Classify(b PaymentBreakdown) PaymentLabel {
	seen := make(map[PaymentMethod]bool)
	for _, entry := range b {
		if entry.Amount.IsPositive() {
			seen[entry.Method] = true
		}
	}

	switch len(seen) {
	case 0:
		return LabelNone
	case 1:
		for method := range seen {
			switch method {
			case PaymentMethodCash:
				return LabelCash
			case PaymentMethodCard:
				return LabelCard
			case PaymentMethodCreditNote:
				return LabelCreditNote
			}
		}
		return LabelNone
	case 2:
		return LabelMixed
	default:
		return LabelCombined
	}
}
