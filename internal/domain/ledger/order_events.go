package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/joyeria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for Order
const AggregateTypeOrder = "Order"

// Event type constants for Order
const (
	EventTypeOrderOpened        = "OrderOpened"
	EventTypeInstallmentApplied = "InstallmentApplied"
	EventTypeOrderPaid          = "OrderPaid"
)

// OrderOpenedEvent is raised when an order is opened on the ledger
type OrderOpenedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	OrderType     OrderType       `json:"order_type"`
	RingKind      RingOrderKind   `json:"ring_kind,omitempty"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Total         decimal.Decimal `json:"total"`
	Collected     decimal.Decimal `json:"collected"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod PaymentLabel    `json:"payment_method"`
	OpenedBy      uuid.UUID       `json:"opened_by"`
}

// NewOrderOpenedEvent creates a new OrderOpenedEvent
func NewOrderOpenedEvent(o *Order) *OrderOpenedEvent {
	return &OrderOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderOpened, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OrderType:       o.Type,
		RingKind:        o.RingKind,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		Total:           o.Total,
		Collected:       o.Collected,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethodLabel(),
		OpenedBy:        o.OpenedBy,
	}
}

// EventType returns the event type name
func (e *OrderOpenedEvent) EventType() string {
	return EventTypeOrderOpened
}

// InstallmentAppliedEvent is raised when a payment installment lands on
// an order
type InstallmentAppliedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID        `json:"order_id"`
	OrderNumber   string           `json:"order_number"`
	InstallmentID uuid.UUID        `json:"installment_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Breakdown     PaymentBreakdown `json:"breakdown"`
	Collected     decimal.Decimal  `json:"collected"`
	Remaining     decimal.Decimal  `json:"remaining"`
	Status        OrderStatus      `json:"status"`
	EmployeeID    uuid.UUID        `json:"employee_id"`
	AppliedAt     time.Time        `json:"applied_at"`
}

// NewInstallmentAppliedEvent creates a new InstallmentAppliedEvent
func NewInstallmentAppliedEvent(o *Order, record *Installment) *InstallmentAppliedEvent {
	return &InstallmentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentApplied, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		InstallmentID:   record.ID,
		Amount:          record.Amount,
		Breakdown:       record.Breakdown,
		Collected:       o.Collected,
		Remaining:       o.Remaining().Amount(),
		Status:          o.Status,
		EmployeeID:      record.EmployeeID,
		AppliedAt:       record.AppliedAt,
	}
}

// EventType returns the event type name
func (e *InstallmentAppliedEvent) EventType() string {
	return EventTypeInstallmentApplied
}

// OrderPaidEvent is raised on the transition to fully paid
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	OrderType     OrderType       `json:"order_type"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentLabel    `json:"payment_method"`
	PaidAt        time.Time       `json:"paid_at"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	paidAt := time.Now()
	if o.PaidAt != nil {
		paidAt = *o.PaidAt
	}
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OrderType:       o.Type,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		Total:           o.Total,
		PaymentMethod:   o.PaymentMethodLabel(),
		PaidAt:          paidAt,
	}
}

// EventType returns the event type name
func (e *OrderPaidEvent) EventType() string {
	return EventTypeOrderPaid
}
