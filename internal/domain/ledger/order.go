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

// OrderType represents the kind of sellable or serviceable transaction
// (the "nota" types of the back office)
type OrderType string

const (
	OrderTypeSale        OrderType = "SALE"          // Counter sale, paid in full at creation
	OrderTypeLayaway     OrderType = "LAYAWAY"       // Apartado, opened with any (or no) deposit
	OrderTypeCustomWork  OrderType = "CUSTOM_WORK"   // Bench work on customer pieces
	OrderTypeCustomRing  OrderType = "CUSTOM_RING"   // Custom ring order
	OrderTypeWatchRepair OrderType = "WATCH_SERVICE" // Watch repair intake
)

// IsValid checks if the order type is valid
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeSale, OrderTypeLayaway, OrderTypeCustomWork, OrderTypeCustomRing, OrderTypeWatchRepair:
		return true
	}
	return false
}

// String returns the string representation of OrderType
func (t OrderType) String() string {
	return string(t)
}

// RequiresFullPayment returns true for order types that must be paid in
// full at creation. Sales are settled at the counter; every other type
// may open with a partial deposit or none at all.
func (t OrderType) RequiresFullPayment() bool {
	return t == OrderTypeSale
}

// RingOrderKind distinguishes how a custom ring order is fulfilled. It
// only affects how the total is computed upstream, never the ledger.
type RingOrderKind string

const (
	RingKindNone        RingOrderKind = ""
	RingKindMadeToOrder RingOrderKind = "MADE_TO_ORDER"
	RingKindFromStock   RingOrderKind = "FROM_STOCK"
)

// IsValidFor checks the ring kind against the order type: custom ring
// orders must carry a kind, all other types must not.
func (k RingOrderKind) IsValidFor(t OrderType) bool {
	if t == OrderTypeCustomRing {
		return k == RingKindMadeToOrder || k == RingKindFromStock
	}
	return k == RingKindNone
}

// OrderStatus is the derived payment state of an order
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING" // Nothing collected yet
	OrderStatusPartial OrderStatus = "PARTIAL" // Some money collected, balance open
	OrderStatusPaid    OrderStatus = "PAID"    // Fully collected
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPartial, OrderStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// Installment is one dated, employee-attributed payment event applied to
// an order (an "abono"). The founding payment at open is installment zero.
// Installments are immutable once recorded; corrections are new
// installments, never edits.
type Installment struct {
	ID         uuid.UUID        `json:"id"`
	Amount     decimal.Decimal  `json:"amount"`
	Breakdown  PaymentBreakdown `json:"breakdown"`
	EmployeeID uuid.UUID        `json:"employee_id"`
	AppliedAt  time.Time        `json:"applied_at"`
	Founding   bool             `json:"founding,omitempty"`
}

// NewInstallment creates a new installment record
func NewInstallment(amount valueobject.Money, breakdown PaymentBreakdown, employeeID uuid.UUID) *Installment {
	return &Installment{
		ID:         uuid.New(),
		Amount:     amount.Amount(),
		Breakdown:  breakdown,
		EmployeeID: employeeID,
		AppliedAt:  time.Now(),
	}
}

// GetAmountMoney returns the installment amount as Money value object
func (i *Installment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(i.Amount)
}

// Installments is a slice of Installment that implements GORM
// Scanner/Valuer for JSONB storage
type Installments []Installment

// Value implements driver.Valuer interface for GORM to store as JSONB
func (ins Installments) Value() (driver.Value, error) {
	if ins == nil {
		return "[]", nil
	}
	return json.Marshal(ins)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (ins *Installments) Scan(value interface{}) error {
	if value == nil {
		*ins = Installments{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Installments: unsupported type")
	}

	if len(bytes) == 0 {
		*ins = Installments{}
		return nil
	}

	return json.Unmarshal(bytes, ins)
}

// Order is the per-order ledger aggregate root. It tracks the total due
// and the money collected across all installments; the remaining balance
// is always derived, never stored independently.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber  string          `json:"order_number"`
	Type         OrderType       `json:"type"`
	RingKind     RingOrderKind   `json:"ring_kind,omitempty"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
	Collected    decimal.Decimal `json:"collected"`
	Status       OrderStatus     `json:"status"`
	Installments Installments    `json:"installments"`
	OpenedBy     uuid.UUID       `json:"opened_by"`
	Remark       string          `json:"remark"`
	PaidAt       *time.Time      `json:"paid_at"`
}

// OpenOrder creates a new order with its founding payment. The founding
// breakdown is validated against foundingAmount; for sales the founding
// amount must additionally equal the order total, because a sale leaves
// the counter paid in full. A zero founding amount with an empty
// breakdown is a legal "open now, pay later" start for every other type.
func OpenOrder(
	orderType OrderType,
	ringKind RingOrderKind,
	orderNumber string,
	customerID uuid.UUID,
	customerName string,
	total valueobject.Money,
	foundingAmount valueobject.Money,
	founding PaymentBreakdown,
	employeeID uuid.UUID,
) (*Order, error) {
	if !orderType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORDER_TYPE", fmt.Sprintf("Order type %q is not valid", orderType))
	}
	if !ringKind.IsValidFor(orderType) {
		return nil, shared.NewDomainError("INVALID_ORDER_TYPE", fmt.Sprintf("Ring kind %q is not valid for order type %s", ringKind, orderType))
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order total must be positive")
	}

	if orderType.RequiresFullPayment() && !foundingAmount.Equals(total) {
		return nil, shared.NewDomainError(ErrCodeInvalidBreakdown,
			fmt.Sprintf("Sales must be paid in full at creation: declared %s against a total of %s",
				foundingAmount.StringFixed(), total.StringFixed()))
	}
	if err := founding.Validate(foundingAmount); err != nil {
		return nil, err
	}
	if over, _ := foundingAmount.GreaterThan(total); over {
		return nil, shared.NewDomainError(ErrCodeExceedsRemaining,
			fmt.Sprintf("Founding payment %s exceeds the order total %s", foundingAmount.StringFixed(), total.StringFixed()))
	}

	foundingRecord := NewInstallment(foundingAmount, founding, employeeID)
	foundingRecord.Founding = true

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Type:              orderType,
		RingKind:          ringKind,
		CustomerID:        customerID,
		CustomerName:      customerName,
		Total:             total.Amount(),
		Collected:         foundingAmount.Amount(),
		Installments:      Installments{*foundingRecord},
		OpenedBy:          employeeID,
	}
	o.refreshStatus()

	o.AddDomainEvent(NewOrderOpenedEvent(o))
	if o.Status == OrderStatusPaid {
		o.AddDomainEvent(NewOrderPaidEvent(o))
	}

	return o, nil
}

// Remaining returns the outstanding balance, derived as
// max(total - collected, 0). It is never stored.
func (o *Order) Remaining() valueobject.Money {
	remaining, _ := o.GetTotalMoney().SubtractSaturating(o.GetCollectedMoney())
	return remaining
}

// ApplyInstallment appends a partial payment to the order. The breakdown
// must sum to amount (installment rule, regardless of order type) and the
// amount must not exceed the remaining balance by even one cent: overshoot
// is rejected, never clamped, so the operator can re-prompt. A zero amount
// is accepted only with a single explicitly selected zero entry; an empty
// breakdown is ambiguous and rejected.
func (o *Order) ApplyInstallment(amount valueobject.Money, breakdown PaymentBreakdown, employeeID uuid.UUID) (*Installment, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError(ErrCodeInvalidBreakdown, "Installment amount cannot be negative")
	}
	if len(breakdown) == 0 {
		return nil, shared.NewDomainError(ErrCodeInvalidBreakdown,
			"Installment requires at least one payment entry; a zero deposit is recorded with a single zero-amount entry")
	}
	if amount.IsZero() && len(breakdown) != 1 {
		return nil, shared.NewDomainError(ErrCodeInvalidBreakdown,
			"A zero installment must carry exactly one zero-amount entry")
	}
	if err := breakdown.Validate(amount); err != nil {
		return nil, err
	}

	wasPaid := o.IsPaid()
	remaining := o.Remaining()
	if over, _ := amount.GreaterThan(remaining); over {
		return nil, shared.NewDomainError(ErrCodeExceedsRemaining,
			fmt.Sprintf("Installment of %s exceeds the remaining balance %s", amount.StringFixed(), remaining.StringFixed()))
	}

	record := NewInstallment(amount, breakdown, employeeID)
	o.Installments = append(o.Installments, *record)
	o.Collected = o.Collected.Add(amount.Amount())
	o.refreshStatus()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewInstallmentAppliedEvent(o, record))
	if !wasPaid && o.IsPaid() {
		o.AddDomainEvent(NewOrderPaidEvent(o))
	}

	return record, nil
}

// Renumber assigns a fresh folio to an order that has not been saved
// yet, after the generated number lost a race to a concurrent open.
// The queued opening event is updated so projections never see the
// discarded number.
func (o *Order) Renumber(orderNumber string) {
	o.OrderNumber = orderNumber
	for _, event := range o.GetDomainEvents() {
		if opened, ok := event.(*OrderOpenedEvent); ok {
			opened.OrderNumber = orderNumber
		}
	}
}

// refreshStatus recomputes the derived payment status
func (o *Order) refreshStatus() {
	switch {
	case o.Remaining().IsZero():
		if o.Status != OrderStatusPaid {
			now := time.Now()
			o.PaidAt = &now
		}
		o.Status = OrderStatusPaid
	case o.Collected.IsPositive():
		o.Status = OrderStatusPartial
	default:
		o.Status = OrderStatusPending
	}
}

// PaymentMethodLabel derives the forma de pago label over every entry
// recorded against the order
func (o *Order) PaymentMethodLabel() PaymentLabel {
	var all PaymentBreakdown
	for _, installment := range o.Installments {
		all = append(all, installment.Breakdown...)
	}
	return Classify(all)
}

// SetRemark sets the remark
func (o *Order) SetRemark(remark string) {
	o.Remark = remark
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Helper methods

// GetTotalMoney returns the total as Money
func (o *Order) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(o.Total)
}

// GetCollectedMoney returns the collected amount as Money
func (o *Order) GetCollectedMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(o.Collected)
}

// IsPaid returns true if the order is fully collected
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// InstallmentCount returns the number of recorded installments, the
// founding payment included
func (o *Order) InstallmentCount() int {
	return len(o.Installments)
}
