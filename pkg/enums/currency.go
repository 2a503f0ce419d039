package enums

import "fmt"

// Currency is the ISO 4217 code a store credit account is denominated in.
// Every entry on an account shares its currency.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCAD Currency = "CAD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

var supportedCurrencies = map[Currency]struct{}{
	CurrencyUSD: {},
	CurrencyCAD: {},
	CurrencyEUR: {},
	CurrencyGBP: {},
}

func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is one the ledger supports.
func (c Currency) IsValid() bool {
	_, ok := supportedCurrencies[c]
	return ok
}

// ParseCurrency validates a raw code from a request or config value.
func ParseCurrency(value string) (Currency, error) {
	c := Currency(value)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid currency %q", value)
	}
	return c, nil
}
