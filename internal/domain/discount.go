package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountPercent = "percent"
	DiscountAmount  = "amount"
)

type Discount struct {
	ID    string          `json:"id"`
	Code  string          `json:"code"`
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
	Start time.Time       `json:"start"`
	End   time.Time       `json:"end"`
}

// ActiveAt reports whether now falls within [Start, End].
func (d Discount) ActiveAt(now time.Time) bool {
	return !now.Before(d.Start) && !now.After(d.End)
}

// Amount is the reduction the discount grants on subtotal, never more than subtotal itself.
func (d Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	var off decimal.Decimal
	switch d.Type {
	case DiscountPercent:
		off = subtotal.Mul(d.Value).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountAmount:
		off = d.Value.Round(2)
	default:
		return decimal.Zero
	}
	if off.GreaterThan(subtotal) {
		return subtotal
	}
	if off.IsNegative() {
		return decimal.Zero
	}
	return off
}
