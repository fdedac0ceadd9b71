package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice parses a user-supplied price and rejects negative or malformed values.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, Invalid("price required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, Invalid("price must be a number")
	}
	if d.IsNegative() {
		return decimal.Zero, Invalid("price must not be negative")
	}
	return d.Round(2), nil
}

// LineTotal is unit price times quantity rounded to two decimals.
func LineTotal(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Round(2).Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
