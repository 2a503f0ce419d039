package types

import (
	"encoding/json"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/aureliacommerce/storecredit-backend/pkg/enums"
)

// Money pairs a fixed-point amount with the currency of the owning store
// credit account. Amounts are never represented as floats; sums stay exact.
type Money struct {
	Amount   decimal.Decimal
	Currency enums.Currency
}

// NewMoney builds a Money value in the given currency.
func NewMoney(amount decimal.Decimal, currency enums.Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero returns the zero value for the given currency.
func Zero(currency enums.Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add returns the sum of two amounts. Currencies must match; mixing them is a
// programming error upstream, so the receiver's currency wins.
func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Equal reports amount and currency equality.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// Display renders the amount with the currency's symbol and grouping,
// e.g. "-$12.50" for USD.
func (m Money) Display() string {
	code := m.Currency.String()
	fraction := 2
	if cur := gomoney.GetCurrency(code); cur != nil {
		fraction = cur.Fraction
	}
	minor := m.Amount.Shift(int32(fraction)).Round(0).IntPart()
	return gomoney.New(minor, code).Display()
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

// MarshalJSON emits the amount as a string to keep fixed-point precision on
// the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.Amount.StringFixed(2),
		Currency: m.Currency.String(),
		Display:  m.Display(),
	})
}
