package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/joyeria/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenOrder(t *testing.T) {
	customerID := uuid.New()
	employeeID := uuid.New()

	t.Run("sale paid in full", func(t *testing.T) {
		o, err := OpenOrder(
			OrderTypeSale, RingKindNone, "NT-20260115-00001",
			customerID, "María López",
			mxn("1500.00"), mxn("1500.00"),
			PaymentBreakdown{NewCashEntry(mxn("1500.00"))},
			employeeID,
		)

		require.NoError(t, err)
		assert.Equal(t, OrderStatusPaid, o.Status)
		assert.True(t, o.Remaining().IsZero())
		assert.NotNil(t, o.PaidAt)
		assert.Equal(t, 1, o.InstallmentCount())
		assert.True(t, o.Installments[0].Founding)
		assert.Len(t, o.GetDomainEvents(), 2) // opened + paid
	})

	t.Run("sale with partial payment is rejected", func(t *testing.T) {
		_, err := OpenOrder(
			OrderTypeSale, RingKindNone, "NT-20260115-00002",
			customerID, "María López",
			mxn("1500.00"), mxn("500.00"),
			PaymentBreakdown{NewCashEntry(mxn("500.00"))},
			employeeID,
		)

		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidBreakdown, domainCode(t, err))
	})

	t.Run("layaway with deposit", func(t *testing.T) {
		o, err := OpenOrder(
			OrderTypeLayaway, RingKindNone, "NT-20260115-00003",
			customerID, "María López",
			mxn("3000.00"), mxn("500.00"),
			PaymentBreakdown{NewCardEntry(mxn("500.00"))},
			employeeID,
		)

		require.NoError(t, err)
		assert.Equal(t, OrderStatusPartial, o.Status)
		assert.Equal(t, "2500.00", o.Remaining().StringFixed())
		assert.Nil(t, o.PaidAt)
	})

	t.Run("layaway with no deposit opens pending", func(t *testing.T) {
		o, err := OpenOrder(
			OrderTypeLayaway, RingKindNone, "NT-20260115-00004",
			customerID, "María López",
			mxn("3000.00"), valueobject.ZeroMXN(),
			PaymentBreakdown{NewCashEntry(valueobject.ZeroMXN())},
			employeeID,
		)

		require.NoError(t, err)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, "3000.00", o.Remaining().StringFixed())
	})

	t.Run("founding breakdown must match declared amount", func(t *testing.T) {
		_, err := OpenOrder(
			OrderTypeCustomWork, RingKindNone, "NT-20260115-00005",
			customerID, "María López",
			mxn("800.00"), mxn("200.00"),
			PaymentBreakdown{NewCashEntry(mxn("150.00"))},
			employeeID,
		)

		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidBreakdown, domainCode(t, err))
	})

	t.Run("founding payment above total is rejected", func(t *testing.T) {
		_, err := OpenOrder(
			OrderTypeLayaway, RingKindNone, "NT-20260115-00006",
			customerID, "María López",
			mxn("800.00"), mxn("800.01"),
			PaymentBreakdown{NewCashEntry(mxn("800.01"))},
			employeeID,
		)

		require.Error(t, err)
		assert.Equal(t, ErrCodeExceedsRemaining, domainCode(t, err))
	})

	t.Run("custom ring requires a ring kind", func(t *testing.T) {
		_, err := OpenOrder(
			OrderTypeCustomRing, RingKindNone, "NT-20260115-00007",
			customerID, "María López",
			mxn("5000.00"), valueobject.ZeroMXN(),
			PaymentBreakdown{NewCashEntry(valueobject.ZeroMXN())},
			employeeID,
		)
		require.Error(t, err)

		o, err := OpenOrder(
			OrderTypeCustomRing, RingKindMadeToOrder, "NT-20260115-00007",
			customerID, "María López",
			mxn("5000.00"), valueobject.ZeroMXN(),
			PaymentBreakdown{NewCashEntry(valueobject.ZeroMXN())},
			employeeID,
		)
		require.NoError(t, err)
		assert.Equal(t, RingKindMadeToOrder, o.RingKind)
	})

	t.Run("ring kind on non-ring type is rejected", func(t *testing.T) {
		_, err := OpenOrder(
			OrderTypeWatchRepair, RingKindFromStock, "NT-20260115-00008",
			customerID, "María López",
			mxn("350.00"), valueobject.ZeroMXN(),
			PaymentBreakdown{NewCashEntry(valueobject.ZeroMXN())},
			employeeID,
		)
		require.Error(t, err)
	})

	t.Run("zero total is rejected", func(t *testing.T) {
		_, err := OpenOrder(
			OrderTypeLayaway, RingKindNone, "NT-20260115-00009",
			customerID, "María López",
			valueobject.ZeroMXN(), valueobject.ZeroMXN(),
			PaymentBreakdown{NewCashEntry(valueobject.ZeroMXN())},
			employeeID,
		)
		require.Error(t, err)
	})
}

func openLayaway(t *testing.T, total, deposit string) *Order {
	t.Helper()
	depositMoney := mxn(deposit)
	o, err := OpenOrder(
		OrderTypeLayaway, RingKindNone, "NT-20260115-10001",
		uuid.New(), "Cliente Mostrador",
		mxn(total), depositMoney,
		PaymentBreakdown{NewCashEntry(depositMoney)},
		uuid.New(),
	)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestApplyInstallment(t *testing.T) {
	employeeID := uuid.New()

	t.Run("partial then final payment", func(t *testing.T) {
		o := openLayaway(t, "3000.00", "500.00")

		_, err := o.ApplyInstallment(mxn("1000.00"), PaymentBreakdown{NewCashEntry(mxn("1000.00"))}, employeeID)
		require.NoError(t, err)
		assert.Equal(t, OrderStatusPartial, o.Status)
		assert.Equal(t, "1500.00", o.Remaining().StringFixed())

		_, err = o.ApplyInstallment(mxn("1500.00"), PaymentBreakdown{NewCardEntry(mxn("1500.00"))}, employeeID)
		require.NoError(t, err)
		assert.Equal(t, OrderStatusPaid, o.Status)
		assert.True(t, o.Remaining().IsZero())
		assert.NotNil(t, o.PaidAt)
		assert.Equal(t, 3, o.InstallmentCount())
	})

	t.Run("overshoot by one cent is rejected not clamped", func(t *testing.T) {
		o := openLayaway(t, "3000.00", "2999.00")

		_, err := o.ApplyInstallment(mxn("1.01"), PaymentBreakdown{NewCashEntry(mxn("1.01"))}, employeeID)
		require.Error(t, err)
		assert.Equal(t, ErrCodeExceedsRemaining, domainCode(t, err))

		// the order is untouched after the rejection
		assert.Equal(t, "1.00", o.Remaining().StringFixed())
		assert.Equal(t, 1, o.InstallmentCount())
	})

	t.Run("empty breakdown is rejected", func(t *testing.T) {
		o := openLayaway(t, "3000.00", "500.00")

		_, err := o.ApplyInstallment(valueobject.ZeroMXN(), PaymentBreakdown{}, employeeID)
		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidBreakdown, domainCode(t, err))
	})

	t.Run("zero installment needs exactly one zero entry", func(t *testing.T) {
		o := openLayaway(t, "3000.00", "500.00")

		_, err := o.ApplyInstallment(valueobject.ZeroMXN(), PaymentBreakdown{
			NewCashEntry(valueobject.ZeroMXN()),
			NewCardEntry(valueobject.ZeroMXN()),
		}, employeeID)
		require.Error(t, err)

		record, err := o.ApplyInstallment(valueobject.ZeroMXN(), PaymentBreakdown{
			NewCashEntry(valueobject.ZeroMXN()),
		}, employeeID)
		require.NoError(t, err)
		assert.True(t, record.Amount.IsZero())
		assert.Equal(t, OrderStatusPartial, o.Status)
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		o := openLayaway(t, "3000.00", "500.00")

		negative := valueobject.NewMoneyMXN(mxn("10.00").Amount().Neg())
		_, err := o.ApplyInstallment(negative, PaymentBreakdown{NewCashEntry(mxn("10.00"))}, employeeID)
		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidBreakdown, domainCode(t, err))
	})

	t.Run("breakdown mismatch is rejected", func(t *testing.T) {
		o := openLayaway(t, "3000.00", "500.00")

		_, err := o.ApplyInstallment(mxn("100.00"), PaymentBreakdown{NewCashEntry(mxn("99.99"))}, employeeID)
		require.Error(t, err)
		assert.Equal(t, ErrCodeInvalidBreakdown, domainCode(t, err))
	})

	t.Run("paid event fires once on the transition", func(t *testing.T) {
		o := openLayaway(t, "1000.00", "400.00")

		_, err := o.ApplyInstallment(mxn("600.00"), PaymentBreakdown{NewCashEntry(mxn("600.00"))}, employeeID)
		require.NoError(t, err)

		paidEvents := 0
		for _, ev := range o.GetDomainEvents() {
			if ev.EventType() == EventTypeOrderPaid {
				paidEvents++
			}
		}
		assert.Equal(t, 1, paidEvents)
	})

	t.Run("version increments per installment", func(t *testing.T) {
		o := openLayaway(t, "3000.00", "500.00")
		before := o.Version

		_, err := o.ApplyInstallment(mxn("100.00"), PaymentBreakdown{NewCashEntry(mxn("100.00"))}, employeeID)
		require.NoError(t, err)
		assert.Equal(t, before+1, o.Version)
	})
}

func TestOrderPaymentMethodLabel(t *testing.T) {
	employeeID := uuid.New()
	noteID := uuid.New()

	t.Run("label spans every installment", func(t *testing.T) {
		o := openLayaway(t, "3000.00", "500.00")
		assert.Equal(t, LabelCash, o.PaymentMethodLabel())

		_, err := o.ApplyInstallment(mxn("1000.00"), PaymentBreakdown{NewCardEntry(mxn("1000.00"))}, employeeID)
		require.NoError(t, err)
		assert.Equal(t, LabelMixed, o.PaymentMethodLabel())

		_, err = o.ApplyInstallment(mxn("200.00"), PaymentBreakdown{NewCreditNoteEntry(mxn("200.00"), noteID)}, employeeID)
		require.NoError(t, err)
		assert.Equal(t, LabelCombined, o.PaymentMethodLabel())
	})

	t.Run("zero-deposit order starts with no label", func(t *testing.T) {
		o := openLayaway(t, "3000.00", "0.00")
		assert.Equal(t, LabelNone, o.PaymentMethodLabel())
	})
}

func TestOrderRenumber(t *testing.T) {
	o, err := OpenOrder(
		OrderTypeLayaway, RingKindNone, "NT-20260115-00050",
		uuid.New(), "María López",
		mxn("3000.00"), mxn("500.00"),
		PaymentBreakdown{NewCashEntry(mxn("500.00"))},
		uuid.New(),
	)
	require.NoError(t, err)

	o.Renumber("NT-20260115-00051")

	assert.Equal(t, "NT-20260115-00051", o.OrderNumber)
	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	opened, ok := events[0].(*OrderOpenedEvent)
	require.True(t, ok)
	assert.Equal(t, "NT-20260115-00051", opened.OrderNumber)
}
