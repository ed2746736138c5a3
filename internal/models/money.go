package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultCurrency is the currency all event prices are quoted in.
const DefaultCurrency = "GHS"

// Money represents an amount of money in minor units (pesewas for GHS).
type Money struct {
	Currency   string `json:"currency"`
	MinorUnits int64  `json:"minor_units"`
}

// NewMoney creates a Money value in the default currency.
func NewMoney(minorUnits int64) Money {
	return Money{Currency: DefaultCurrency, MinorUnits: minorUnits}
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.MinorUnits == 0
}

// Amount returns the amount in major currency units as a float.
func (m Money) Amount() float64 {
	return float64(m.MinorUnits) / 100.0
}

// Add returns the sum of two amounts. Currencies are assumed to match.
func (m Money) Add(other Money) Money {
	return Money{Currency: m.Currency, MinorUnits: m.MinorUnits + other.MinorUnits}
}

// Multiply returns the amount multiplied by a quantity.
func (m Money) Multiply(quantity int) Money {
	return Money{Currency: m.Currency, MinorUnits: m.MinorUnits * int64(quantity)}
}

// String formats the amount for display, e.g. "GHS 19.00".
func (m Money) String() string {
	return fmt.Sprintf("%s %.2f", m.Currency, m.Amount())
}

// ParsePrice parses a display price string into Money.
//
// Ticket prices are stored as free-form display strings ("GH₵950", "Free",
// "GHS 1,500.00"). A price containing "free" is zero. Otherwise every rune
// that is not a digit or a dot is stripped and the remainder parsed as a
// decimal; an empty remainder also yields zero. This mirrors the historical
// client contract and is lossy for exotic locales, so callers must not treat
// the result as authoritative for anything other than booking totals.
func ParsePrice(display string) Money {
	if strings.Contains(strings.ToLower(display), "free") {
		return NewMoney(0)
	}

	var b strings.Builder
	for _, r := range display {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	numeric := b.String()
	if numeric == "" {
		return NewMoney(0)
	}

	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return NewMoney(0)
	}

	return NewMoney(int64(math.Round(value * 100)))
}
