// Package money implements the fixed-point value type used for every
// tradable price and every account-currency amount in the engine.
//
// Binary floats are never used for money: shopspring/decimal backs every
// arithmetic op so that repeated add/sub across a long tick replay stays
// exact and reproducible.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a decimal value rounded to a fixed number of places after every
// operation that produces a new Amount. Two Amounts with different scales
// compare and combine using the wider of the two scales.
type Amount struct {
	d     decimal.Decimal
	scale int32
}

// Zero returns the zero amount at the given scale.
func Zero(scale int32) Amount {
	return Amount{d: decimal.Zero, scale: scale}
}

// New builds an Amount from a float64, rounding to scale places.
func New(value float64, scale int32) Amount {
	return Amount{d: decimal.NewFromFloat(value), scale: scale}.round()
}

// FromDecimal wraps an existing decimal.Decimal at the given scale.
func FromDecimal(d decimal.Decimal, scale int32) Amount {
	return Amount{d: d, scale: scale}.round()
}

// Parse parses a decimal string at the given scale.
func Parse(s string, scale int32) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return Amount{d: d, scale: scale}.round(), nil
}

func (a Amount) round() Amount {
	a.d = a.d.Round(a.scale)
	return a
}

func (a Amount) widerScale(b Amount) int32 {
	if a.scale > b.scale {
		return a.scale
	}
	return b.scale
}

// Scale reports the number of digits after the decimal point this amount is
// rounded to.
func (a Amount) Scale() int32 { return a.scale }

// AtScale returns the same value rounded to a different scale, e.g.
// converting a five-decimal price into a two-decimal account-currency
// amount.
func (a Amount) AtScale(scale int32) Amount {
	return Amount{d: a.d, scale: scale}.round()
}

// Decimal exposes the underlying decimal value, e.g. to feed a collaborator
// that wants full precision (exchange-rate multiplication, commission calc).
func (a Amount) Decimal() decimal.Decimal { return a.d }

// Float64 converts to a float64. Only ever used at the edges (logging,
// wire-format events); internal arithmetic always stays in decimal.
func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

// Add returns a+b, rounded to the wider of the two scales.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d), scale: a.widerScale(b)}.round()
}

// Sub returns a-b, rounded to the wider of the two scales.
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d), scale: a.widerScale(b)}.round()
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{d: a.d.Neg(), scale: a.scale}
}

// MulFloat returns a*f, rounded to a's scale. Used for slippage-unit
// multiples, rate conversions and similar scalar scaling.
func (a Amount) MulFloat(f float64) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromFloat(f)), scale: a.scale}.round()
}

// MulInt returns a*n, rounded to a's scale. Used for price*quantity.
func (a Amount) MulInt(n int64) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(n)), scale: a.scale}.round()
}

// DivInt returns a/n, rounded to a's scale. Used for weighted-average price
// recomputation, where dividing as a float would reintroduce the drift
// fixed-point money exists to avoid.
func (a Amount) DivInt(n int64) Amount {
	return Amount{d: a.d.Div(decimal.NewFromInt(n)), scale: a.scale}.round()
}

// Lt, Gt, Le, Ge, Eq compare two amounts by decimal value, independent of
// their nominal scale (a value is a value regardless of how it is rounded).
func (a Amount) Lt(b Amount) bool { return a.d.LessThan(b.d) }
func (a Amount) Gt(b Amount) bool { return a.d.GreaterThan(b.d) }
func (a Amount) Le(b Amount) bool { return a.d.LessThanOrEqual(b.d) }
func (a Amount) Ge(b Amount) bool { return a.d.GreaterThanOrEqual(b.d) }
func (a Amount) Eq(b Amount) bool { return a.d.Equal(b.d) }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.d.IsZero() }

// String renders the amount at its fixed scale, e.g. "1.10020".
func (a Amount) String() string {
	return a.d.StringFixed(a.scale)
}
