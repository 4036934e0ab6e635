// Package core provides the domain types shared across the service:
// fixed-point monetary values, reporting periods, and ledger records.
//
// Money keeps every calculation in exact decimal form. Binary floats never
// enter the arithmetic path, so sums over many rows cannot drift by a cent.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a monetary value quantized to exactly two fractional digits.
// The zero value is valid and renders as "0.00".
type Money struct {
	dec decimal.Decimal
}

// ParseAmount validates a user-supplied amount and returns it as Money.
//
// The value must be a finite decimal greater than zero with at most two
// fractional digits in the raw input. More than two decimals is rejected
// rather than silently rounded, so "19.999" is an error, not "20.00".
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.Exponent() < -2 {
		return Money{}, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	return Money{dec: d.Round(2)}, nil
}

// ParseOptionalAmount behaves like ParseAmount but treats an empty string
// as zero and accepts zero. Negative values are still rejected. Used for
// split amounts, which default to 0.
func ParseOptionalAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.Exponent() < -2 {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	return Money{dec: d.Round(2)}, nil
}

// MoneyFromCents converts an integer cent count to Money. Storage keeps
// amounts as cents so SQL aggregates stay exact; this is the boundary back.
func MoneyFromCents(cents int64) Money {
	return Money{dec: decimal.New(cents, -2)}
}

// MoneyFromDecimal quantizes an arbitrary decimal to two fractional digits
// using half-up rounding. Intermediate aggregator math stays unrounded;
// this is applied once at the output boundary.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{dec: d.Round(2)}
}

// Cents returns the value as an integer cent count.
func (m Money) Cents() int64 {
	return m.dec.Round(2).Shift(2).IntPart()
}

// Decimal returns the underlying decimal for exact intermediate arithmetic
// (averages, percentages, projections).
func (m Money) Decimal() decimal.Decimal {
	return m.dec
}

func (m Money) Add(o Money) Money {
	return Money{dec: m.dec.Add(o.dec)}
}

func (m Money) Sub(o Money) Money {
	return Money{dec: m.dec.Sub(o.dec)}
}

func (m Money) IsZero() bool {
	return m.dec.IsZero()
}

func (m Money) IsPositive() bool {
	return m.dec.IsPositive()
}

func (m Money) IsNegative() bool {
	return m.dec.IsNegative()
}

func (m Money) Equal(o Money) bool {
	return m.dec.Equal(o.dec)
}

// String renders the value as a plain fixed two-decimal string, e.g. "123.45".
func (m Money) String() string {
	return m.dec.StringFixed(2)
}

// MarshalJSON renders Money as a JSON string ("123.45") so clients never
// see float artifacts.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.dec.StringFixed(2) + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	m.dec = d.Round(2)
	return nil
}
