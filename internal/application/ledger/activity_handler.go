package ledger

import (
	"context"

	"github.com/joyeria/backend/internal/domain/ledger"
	"github.com/joyeria/backend/internal/domain/shared"
	"github.com/joyeria/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ActivityHandler projects ledger domain events into the structured activity
// log that the back office reviews during the nightly cash cut. It is a
// read-side projection: failures here never roll back the originating
// transaction.
type ActivityHandler struct {
	logger *zap.Logger
}

// NewActivityHandler creates a new handler for ledger activity events
func NewActivityHandler(logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ActivityHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeOrderOpened,
		ledger.EventTypeInstallmentApplied,
		ledger.EventTypeOrderPaid,
		ledger.EventTypeCreditNoteIssued,
		ledger.EventTypeCreditNoteRedeemed,
		ledger.EventTypeCreditNoteCancelled,
	}
}

// Handle records one activity entry per ledger event. Entries pick up
// request and employee correlation fields from the context when the
// event was published inside a request.
func (h *ActivityHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	log := logger.WithLogger(ctx, h.logger)

	switch e := event.(type) {
	case *ledger.OrderOpenedEvent:
		log.Info("order opened",
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.String("order_type", string(e.OrderType)),
			zap.String("customer_name", e.CustomerName),
			zap.String("total", e.Total.String()),
			zap.String("collected", e.Collected.String()),
			zap.String("payment_method", string(e.PaymentMethod)),
			zap.String("opened_by", e.OpenedBy.String()),
		)
	case *ledger.InstallmentAppliedEvent:
		log.Info("installment applied",
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.String("amount", e.Amount.String()),
			zap.String("collected", e.Collected.String()),
			zap.String("remaining", e.Remaining.String()),
			zap.String("status", string(e.Status)),
			zap.String("employee_id", e.EmployeeID.String()),
		)
	case *ledger.OrderPaidEvent:
		log.Info("order fully paid",
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.String("order_type", string(e.OrderType)),
			zap.String("customer_name", e.CustomerName),
			zap.String("total", e.Total.String()),
			zap.Time("paid_at", e.PaidAt),
		)
	case *ledger.CreditNoteIssuedEvent:
		log.Info("credit note issued",
			zap.String("note_id", e.NoteID.String()),
			zap.String("note_number", e.NoteNumber),
			zap.String("origin_order_id", e.OriginOrderID.String()),
			zap.String("origin_order_type", string(e.OriginOrderType)),
			zap.String("customer_name", e.CustomerName),
			zap.String("total_original", e.TotalOriginal.String()),
			zap.String("issued_by", e.IssuedBy.String()),
		)
	case *ledger.CreditNoteRedeemedEvent:
		log.Info("credit note redeemed",
			zap.String("note_id", e.NoteID.String()),
			zap.String("note_number", e.NoteNumber),
			zap.String("order_id", e.OrderID.String()),
			zap.String("redeemed_amount", e.RedeemedAmount.String()),
			zap.String("total_available", e.TotalAvailable.String()),
		)
	case *ledger.CreditNoteCancelledEvent:
		log.Info("credit note cancelled",
			zap.String("note_id", e.NoteID.String()),
			zap.String("note_number", e.NoteNumber),
			zap.String("cancel_reason", e.CancelReason),
			zap.Time("cancelled_at", e.CancelledAt),
		)
	default:
		log.Warn("unexpected event type on ledger activity handler",
			zap.String("event_type", event.EventType()),
		)
	}
	return nil
}
