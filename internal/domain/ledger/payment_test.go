package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/joyeria/backend/internal/domain/shared"
	"github.com/joyeria/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mxn(s string) valueobject.Money {
	m, err := valueobject.NewMoneyFromString(s, valueobject.MXN)
	if err != nil {
		panic(err)
	}
	return m
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	return derr.Code
}

func TestPaymentBreakdownValidate(t *testing.T) {
	t.Run("exact sum passes", func(t *testing.T) {
		b := PaymentBreakdown{
			NewCashEntry(mxn("100.00")),
			NewCardEntry(mxn("250.50")),
		}
		require.NoError(t, b.Validate(mxn("350.50")))
	})

	t.Run("one cent short is rejected", func(t *testing.T) {
		b := PaymentBreakdown{
			NewCashEntry(mxn("100.00")),
			NewCardEntry(mxn("250.49")),
		}
		err := b.Validate(mxn("350.50"))
		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidBreakdown, domainCode(t, err))
	})

	t.Run("one cent over is rejected", func(t *testing.T) {
		b := PaymentBreakdown{NewCashEntry(mxn("350.51"))}
		err := b.Validate(mxn("350.50"))
		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidBreakdown, domainCode(t, err))
	})

	t.Run("negative entry is rejected", func(t *testing.T) {
		b := PaymentBreakdown{
			PaymentEntry{Method: PaymentMethodCash, Amount: decimal.NewFromFloat(-5)},
			NewCardEntry(mxn("105.00")),
		}
		err := b.Validate(mxn("100.00"))
		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidBreakdown, domainCode(t, err))
	})

	t.Run("zero entries are allowed", func(t *testing.T) {
		b := PaymentBreakdown{
			NewCashEntry(mxn("100.00")),
			NewCardEntry(valueobject.ZeroMXN()),
		}
		require.NoError(t, b.Validate(mxn("100.00")))
	})

	t.Run("unknown method is rejected", func(t *testing.T) {
		b := PaymentBreakdown{
			PaymentEntry{Method: PaymentMethod("CHEQUE"), Amount: decimal.NewFromInt(100)},
		}
		err := b.Validate(mxn("100.00"))
		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidBreakdown, domainCode(t, err))
	})

	t.Run("credit note entry requires note id", func(t *testing.T) {
		b := PaymentBreakdown{
			PaymentEntry{Method: PaymentMethodCreditNote, Amount: decimal.NewFromInt(50)},
		}
		err := b.Validate(mxn("50.00"))
		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidBreakdown, domainCode(t, err))
	})

	t.Run("empty breakdown matches only a zero total", func(t *testing.T) {
		b := PaymentBreakdown{}
		require.NoError(t, b.Validate(valueobject.ZeroMXN()))
		require.Error(t, b.Validate(mxn("10.00")))
	})
}

func TestPaymentBreakdownTotal(t *testing.T) {
	b := PaymentBreakdown{
		NewCashEntry(mxn("0.10")),
		NewCashEntry(mxn("0.20")),
		NewCardEntry(mxn("0.30")),
	}
	assert.Equal(t, "0.60", b.Total().StringFixed())
}

func TestClassify(t *testing.T) {
	noteID := uuid.New()

	tests := []struct {
		name      string
		breakdown PaymentBreakdown
		want      PaymentLabel
	}{
		{"empty breakdown", PaymentBreakdown{}, LabelNone},
		{"all zero entries", PaymentBreakdown{
			NewCashEntry(valueobject.ZeroMXN()),
			NewCardEntry(valueobject.ZeroMXN()),
		}, LabelNone},
		{"cash only", PaymentBreakdown{NewCashEntry(mxn("100.00"))}, LabelCash},
		{"card only", PaymentBreakdown{NewCardEntry(mxn("100.00"))}, LabelCard},
		{"credit note only", PaymentBreakdown{NewCreditNoteEntry(mxn("100.00"), noteID)}, LabelCreditNote},
		{"zero cash entry does not count", PaymentBreakdown{
			NewCashEntry(valueobject.ZeroMXN()),
			NewCardEntry(mxn("100.00")),
		}, LabelCard},
		{"two instruments", PaymentBreakdown{
			NewCashEntry(mxn("60.00")),
			NewCardEntry(mxn("40.00")),
		}, LabelMixed},
		{"cash and credit note", PaymentBreakdown{
			NewCashEntry(mxn("60.00")),
			NewCreditNoteEntry(mxn("40.00"), noteID),
		}, LabelMixed},
		{"all three instruments", PaymentBreakdown{
			NewCashEntry(mxn("50.00")),
			NewCardEntry(mxn("30.00")),
			NewCreditNoteEntry(mxn("20.00"), noteID),
		}, LabelCombined},
		{"same method twice counts once", PaymentBreakdown{
			NewCashEntry(mxn("50.00")),
			NewCashEntry(mxn("50.00")),
		}, LabelCash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.breakdown))
		})
	}
}

func TestPaymentBreakdownCreditNoteEntries(t *testing.T) {
	noteA := uuid.New()
	noteB := uuid.New()
	b := PaymentBreakdown{
		NewCashEntry(mxn("10.00")),
		NewCreditNoteEntry(mxn("20.00"), noteA),
		NewCreditNoteEntry(mxn("30.00"), noteB),
	}

	entries := b.CreditNoteEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, noteA, *entries[0].CreditNoteID)
	assert.Equal(t, noteB, *entries[1].CreditNoteID)
}
