// Package money provides currency-safe totals over payment amounts using
// integer minor units.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// KZT is the currency every supported bank reports in.
const KZT = "KZT"

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a new Money value from minor units and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, currencyCode)}
}

// Zero returns a zero Money value for the given currency
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// NewFromFloat creates Money from a floating-point value, rounding half away
// from zero to the currency's minor unit.
func NewFromFloat(amount float64, currencyCode string) *Money {
	return NewFromDecimal(decimal.NewFromFloat(amount), currencyCode)
}

// NewFromDecimal creates Money from a decimal.Decimal value.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(KZT)
		currencyCode = KZT
	}
	multiplier := decimal.New(1, int32(currency.Fraction))
	return New(amount.Mul(multiplier).Round(0).IntPart(), currencyCode)
}

// Amount returns the amount in minor units
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Add adds two Money values. Returns error if currencies don't match.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Display returns a formatted string with grouping and currency sign.
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return Zero(KZT).Display()
	}
	return m.m.Display()
}

// String returns the amount as a fixed-point decimal string (e.g., "1234.50")
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0.00"
	}
	return m.ToDecimal().StringFixed(int32(m.m.Currency().Fraction))
}

// ToDecimal converts to decimal.Decimal for precise calculations
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	divisor := decimal.New(1, int32(m.m.Currency().Fraction))
	return decimal.NewFromInt(m.m.Amount()).Div(divisor)
}

// Sum totals amounts in one currency. Each amount is rounded to the minor
// unit before adding, so the total matches the printed rows.
func Sum(amounts []float64, currencyCode string) *Money {
	total := Zero(currencyCode)
	for _, a := range amounts {
		// same currency on both sides, Add cannot fail
		total, _ = total.Add(NewFromFloat(a, currencyCode))
	}
	return total
}
