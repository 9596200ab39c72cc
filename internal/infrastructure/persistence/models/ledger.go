package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/joyeria/backend/internal/domain/ledger"
	"github.com/joyeria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber  string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_order_number"`
	Type         ledger.OrderType     `gorm:"type:varchar(30);not null;index"`
	RingKind     ledger.RingOrderKind `gorm:"type:varchar(30);not null;default:''"`
	CustomerID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerName string               `gorm:"type:varchar(200);not null"`
	Total        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Collected    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Status       ledger.OrderStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Installments ledger.Installments  `gorm:"type:jsonb;default:'[]'"`
	OpenedBy     uuid.UUID            `gorm:"type:uuid;not null;index"`
	Remark       string               `gorm:"type:text"`
	PaidAt       *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *ledger.Order {
	return &ledger.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		OrderNumber:  m.OrderNumber,
		Type:         m.Type,
		RingKind:     m.RingKind,
		CustomerID:   m.CustomerID,
		CustomerName: m.CustomerName,
		Total:        m.Total,
		Collected:    m.Collected,
		Status:       m.Status,
		Installments: m.Installments,
		OpenedBy:     m.OpenedBy,
		Remark:       m.Remark,
		PaidAt:       m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *ledger.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.Type = o.Type
	m.RingKind = o.RingKind
	m.CustomerID = o.CustomerID
	m.CustomerName = o.CustomerName
	m.Total = o.Total
	m.Collected = o.Collected
	m.Status = o.Status
	m.Installments = o.Installments
	m.OpenedBy = o.OpenedBy
	m.Remark = o.Remark
	m.PaidAt = o.PaidAt
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *ledger.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// CreditNoteModel is the persistence model for the CreditNote aggregate root.
// The partial unique index on origin_order_id backs the one-active-note
// rule at the database level; the application check runs first but the
// index closes the race between two concurrent issuances.
type CreditNoteModel struct {
	AggregateModel
	NoteNumber      string             `gorm:"type:varchar(50);not null;uniqueIndex:idx_credit_note_number"`
	OriginOrderType ledger.OrderType   `gorm:"type:varchar(30);not null"`
	OriginOrderID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	CustomerID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	CustomerName    string             `gorm:"type:varchar(200);not null"`
	TotalOriginal   decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	TotalUsed       decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Cancelled       bool               `gorm:"not null;default:false;index"`
	Redemptions     ledger.Redemptions `gorm:"type:jsonb;default:'[]'"`
	IssuedBy        uuid.UUID          `gorm:"type:uuid;not null"`
	Remark          string             `gorm:"type:text"`
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CreditNoteModel) TableName() string {
	return "credit_notes"
}

// ToDomain converts the persistence model to a domain CreditNote entity.
func (m *CreditNoteModel) ToDomain() *ledger.CreditNote {
	return &ledger.CreditNote{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		NoteNumber:      m.NoteNumber,
		OriginOrderType: m.OriginOrderType,
		OriginOrderID:   m.OriginOrderID,
		CustomerID:      m.CustomerID,
		CustomerName:    m.CustomerName,
		TotalOriginal:   m.TotalOriginal,
		TotalUsed:       m.TotalUsed,
		Cancelled:       m.Cancelled,
		Redemptions:     m.Redemptions,
		IssuedBy:        m.IssuedBy,
		Remark:          m.Remark,
		CancelledAt:     m.CancelledAt,
		CancelReason:    m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain CreditNote entity.
func (m *CreditNoteModel) FromDomain(cn *ledger.CreditNote) {
	m.FromDomainAggregateRoot(cn.BaseAggregateRoot)
	m.NoteNumber = cn.NoteNumber
	m.OriginOrderType = cn.OriginOrderType
	m.OriginOrderID = cn.OriginOrderID
	m.CustomerID = cn.CustomerID
	m.CustomerName = cn.CustomerName
	m.TotalOriginal = cn.TotalOriginal
	m.TotalUsed = cn.TotalUsed
	m.Cancelled = cn.Cancelled
	m.Redemptions = cn.Redemptions
	m.IssuedBy = cn.IssuedBy
	m.Remark = cn.Remark
	m.CancelledAt = cn.CancelledAt
	m.CancelReason = cn.CancelReason
}

// CreditNoteModelFromDomain creates a new persistence model from a domain CreditNote.
func CreditNoteModelFromDomain(cn *ledger.CreditNote) *CreditNoteModel {
	m := &CreditNoteModel{}
	m.FromDomain(cn)
	return m
}
