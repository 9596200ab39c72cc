package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joyeria/backend/internal/domain/shared"
)

// OrderFilter defines filtering options for order queries
type OrderFilter struct {
	shared.Filter
	CustomerID  *uuid.UUID   // Filter by customer
	Type        *OrderType   // Filter by order type
	Status      *OrderStatus // Filter by payment status
	Outstanding bool         // Only orders with an open balance (PENDING or PARTIAL)
	FromDate    *time.Time   // Filter by opening date range start
	ToDate      *time.Time   // Filter by opening date range end
}

// OrderRepository defines the interface for order ledger persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its folio number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll finds orders with filtering
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)

	// FindByCustomer finds orders for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter OrderFilter) ([]Order, error)

	// FindOutstanding finds pending or partially paid orders
	FindOutstanding(ctx context.Context, filter OrderFilter) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *Order) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter OrderFilter) (int64, error)

	// GenerateOrderNumber generates the next folio number for a type
	GenerateOrderNumber(ctx context.Context, orderType OrderType) (string, error)
}

// CreditNoteFilter defines filtering options for credit note queries
type CreditNoteFilter struct {
	shared.Filter
	CustomerID     *uuid.UUID // Filter by customer
	OriginOrderID  *uuid.UUID // Filter by origin order
	Cancelled      *bool      // Filter by cancellation state
	OnlyRedeemable bool       // Only notes with a positive available balance
	FromDate       *time.Time // Filter by issuance date range start
	ToDate         *time.Time // Filter by issuance date range end
}

// CreditNoteRepository defines the interface for credit note persistence
type CreditNoteRepository interface {
	// FindByID finds a credit note by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CreditNote, error)

	// FindByNoteNumber finds a credit note by its folio number
	FindByNoteNumber(ctx context.Context, noteNumber string) (*CreditNote, error)

	// FindByOrigin finds all notes issued against an origin order,
	// cancelled ones included
	FindByOrigin(ctx context.Context, originID uuid.UUID) ([]CreditNote, error)

	// ExistsActiveByOrigin reports whether a non-cancelled note already
	// exists for the origin order
	ExistsActiveByOrigin(ctx context.Context, originID uuid.UUID) (bool, error)

	// FindAll finds credit notes with filtering
	FindAll(ctx context.Context, filter CreditNoteFilter) ([]CreditNote, error)

	// FindByCustomer finds credit notes for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter CreditNoteFilter) ([]CreditNote, error)

	// Save creates or updates a credit note
	Save(ctx context.Context, note *CreditNote) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, note *CreditNote) error

	// Count counts credit notes matching the filter
	Count(ctx context.Context, filter CreditNoteFilter) (int64, error)

	// GenerateNoteNumber generates the next credit note folio number
	GenerateNoteNumber(ctx context.Context) (string, error)
}
