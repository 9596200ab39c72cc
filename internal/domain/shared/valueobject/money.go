package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code
type Currency string

const (
	MXN Currency = "MXN" // Mexican Peso (default)
	USD Currency = "USD" // US Dollar
)

// DefaultCurrency is what the store trades in; constructors that take
// no currency assume it
const DefaultCurrency = MXN

// centPlaces is the precision every Money amount is carried at. All
// arithmetic results are rounded once, immediately, to the cent, so no
// operation can introduce fractional-cent drift.
const centPlaces = 2

// Money is a value object representing monetary amounts.
// It is immutable - all operations return new Money instances.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency.
// The amount is rounded half-up to the cent.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{
		amount:   amount.Round(centPlaces),
		currency: currency,
	}, nil
}

// NewMoneyFromString creates Money from a decimal string representation.
// This is the boundary constructor: amounts crossing into the ledger are
// exchanged as decimal strings, never binary floats.
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyFromCents creates Money from integer minor units
func NewMoneyFromCents(cents int64, currency Currency) (Money, error) {
	return NewMoney(decimal.New(cents, -centPlaces), currency)
}

// NewMoneyMXN creates Money in MXN (Mexican Peso)
func NewMoneyMXN(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(centPlaces), currency: MXN}
}

// NewMoneyMXNFromString creates Money in MXN from a decimal string
func NewMoneyMXNFromString(amount string) (Money, error) {
	return NewMoneyFromString(amount, MXN)
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// ZeroMXN returns a zero-value Money in MXN
func ZeroMXN() Money {
	return Zero(MXN)
}

// Amount returns the underlying decimal value
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Cents returns the amount as integer minor units
func (m Money) Cents() int64 {
	return m.amount.Mul(decimal.New(1, centPlaces)).IntPart()
}

// Currency returns the ISO 4217 code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero reports whether the amount is exactly zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive reports whether the amount is above zero
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative reports whether the amount is below zero
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// requireSameCurrency rejects mixed-currency arithmetic. The ledger runs
// in a single currency, so a mismatch means a caller bug, not data.
func (m Money) requireSameCurrency(op string, other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("cannot %s money with different currencies: %s and %s", op, m.currency, other.currency)
	}
	return nil
}

// Add returns the sum of both amounts. Both operands are already at
// cent precision, so the sum needs no further rounding.
func (m Money) Add(other Money) (Money, error) {
	if err := m.requireSameCurrency("add", other); err != nil {
		return Money{}, err
	}
	return Money{
		amount:   m.amount.Add(other.amount),
		currency: m.currency,
	}, nil
}

// MustAdd adds two Money values, panics if currencies don't match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns the difference of both amounts.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.requireSameCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	return Money{
		amount:   m.amount.Sub(other.amount),
		currency: m.currency,
	}, nil
}

// MustSubtract subtracts two Money values, panics if currencies don't match
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// SubtractSaturating returns the difference floored at zero. Balances in
// the ledger domain are never negative; a payment covering more than what
// is owed leaves a remaining balance of exactly zero.
func (m Money) SubtractSaturating(other Money) (Money, error) {
	diff, err := m.Subtract(other)
	if err != nil {
		return Money{}, err
	}
	if diff.amount.IsNegative() {
		return Zero(m.currency), nil
	}
	return diff, nil
}

// PercentageOf returns the given percentage of this Money, rounded
// half-up to the cent in a single step.
func (m Money) PercentageOf(percent decimal.Decimal) Money {
	return Money{
		amount:   m.amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(centPlaces),
		currency: m.currency,
	}
}

// Equals reports whether amount and currency both match.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// LessThan reports whether this amount is below the other.
func (m Money) LessThan(other Money) (bool, error) {
	if err := m.requireSameCurrency("compare", other); err != nil {
		return false, err
	}
	return m.amount.LessThan(other.amount), nil
}

// LessThanOrEqual reports whether this amount is at most the other.
func (m Money) LessThanOrEqual(other Money) (bool, error) {
	if err := m.requireSameCurrency("compare", other); err != nil {
		return false, err
	}
	return m.amount.LessThanOrEqual(other.amount), nil
}

// GreaterThan reports whether this amount is above the other.
func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.requireSameCurrency("compare", other); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(other.amount), nil
}

// GreaterThanOrEqual reports whether this amount is at least the other.
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if err := m.requireSameCurrency("compare", other); err != nil {
		return false, err
	}
	return m.amount.GreaterThanOrEqual(other.amount), nil
}

// String renders the amount at cent precision followed by the currency code
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(centPlaces), m.currency)
}

// StringFixed returns the amount as a decimal string with cent precision
func (m Money) StringFixed() string {
	return m.amount.StringFixed(centPlaces)
}

// MarshalJSON emits the amount as a decimal string so no reader is
// tempted to parse it as a float
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.StringFixed(centPlaces),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler for deserialization scenarios
// (API request binding, reading JSON from external sources). The currency
// defaults to DefaultCurrency when absent.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount.Round(centPlaces)
	m.currency = v.Currency
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// Value implements driver.Valuer for database storage.
// Stores as a numeric value (amount only).
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner for database retrieval. Scans only the
// amount; currency defaults to DefaultCurrency if not already set.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		m.currency = DefaultCurrency
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	amount, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
