package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"

	domain "github.com/joyeria/backend/internal/domain/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestActivityHandler_EventTypes(t *testing.T) {
	handler := NewActivityHandler(zap.NewNop())

	types := handler.EventTypes()

	assert.ElementsMatch(t, []string{
		domain.EventTypeOrderOpened,
		domain.EventTypeInstallmentApplied,
		domain.EventTypeOrderPaid,
		domain.EventTypeCreditNoteIssued,
		domain.EventTypeCreditNoteRedeemed,
		domain.EventTypeCreditNoteCancelled,
	}, types)
}

func TestActivityHandler_Handle_LedgerEvents(t *testing.T) {
	handler := NewActivityHandler(zap.NewNop())

	order := newTestOrder(t, "1000", "400")
	payment := mxn("600")
	_, err := order.ApplyInstallment(payment, domain.PaymentBreakdown{domain.NewCashEntry(payment)}, uuid.New())
	require.NoError(t, err)

	note := newTestNote(t, "500")
	require.NoError(t, note.Redeem(mxn("200"), uuid.New()))
	require.NoError(t, note.Cancel("capturada por duplicado"))

	// installment + paid transition on the order, redemption + cancel on the note
	events := order.GetDomainEvents()
	events = append(events, note.GetDomainEvents()...)
	require.Len(t, events, 4)

	for _, event := range events {
		assert.NoError(t, handler.Handle(context.Background(), event))
	}
}
