package domain

import "math"

// Currency is an ISO 4217 code. Only the currencies the storefront actually
// sells in are accepted.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

// ParseCurrency validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(s); c {
	case USD, EUR, GBP:
		return c, nil
	default:
		return "", newError(KindUnknownCurrency, "unknown currency %q", s)
	}
}

// Money is an amount in minor units (cents, pence) of a single currency.
// It is a value type: every operation returns a new Money and never mutates
// its operands. Arithmetic stays in minor units to avoid precision loss.
type Money struct {
	AmountMinor int64    `json:"amount_minor"`
	Currency    Currency `json:"currency"`
}

// NewMoney creates a Money from an amount in minor units.
func NewMoney(amountMinor int64, currency Currency) (Money, error) {
	if _, err := ParseCurrency(string(currency)); err != nil {
		return Money{}, err
	}
	if amountMinor < 0 {
		return Money{}, newError(KindInvalidAmount, "amount must not be negative, got %d", amountMinor)
	}
	return Money{AmountMinor: amountMinor, Currency: currency}, nil
}

// NewMoneyFromMajor creates a Money from an amount in major units (e.g.
// 19.99 dollars), rounding half-up to the nearest minor unit.
func NewMoneyFromMajor(amountMajor float64, currency Currency) (Money, error) {
	if math.IsNaN(amountMajor) || math.IsInf(amountMajor, 0) {
		return Money{}, newError(KindInvalidAmount, "amount must be a finite number")
	}
	return NewMoney(int64(math.Round(amountMajor*100)), currency)
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currency Currency) Money {
	return Money{AmountMinor: 0, Currency: currency}
}

// Add returns the sum of two amounts of the same currency.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, newError(KindCurrencyMismatch, "cannot add %s to %s", o.Currency, m.Currency)
	}
	return Money{AmountMinor: m.AmountMinor + o.AmountMinor, Currency: m.Currency}, nil
}

// Subtract returns m minus o. The result must not go negative.
func (m Money) Subtract(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, newError(KindCurrencyMismatch, "cannot subtract %s from %s", o.Currency, m.Currency)
	}
	if m.AmountMinor < o.AmountMinor {
		return Money{}, newError(KindNegativeResult, "subtracting %d from %d would go negative", o.AmountMinor, m.AmountMinor)
	}
	return Money{AmountMinor: m.AmountMinor - o.AmountMinor, Currency: m.Currency}, nil
}

// Multiply scales the amount by a non-negative integer factor.
func (m Money) Multiply(factor int) (Money, error) {
	if factor < 0 {
		return Money{}, newError(KindInvalidFactor, "factor must not be negative, got %d", factor)
	}
	return Money{AmountMinor: m.AmountMinor * int64(factor), Currency: m.Currency}, nil
}

// Equals reports whether amount and currency both match.
func (m Money) Equals(o Money) bool {
	return m.AmountMinor == o.AmountMinor && m.Currency == o.Currency
}

// MajorUnits converts to major units for display and serialization only;
// never feed the result back into arithmetic.
func (m Money) MajorUnits() float64 {
	return float64(m.AmountMinor) / 100
}
