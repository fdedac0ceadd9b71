package domain

import "github.com/shopspring/decimal"

// CartItem is one line of a cart, keyed in the cart mapping by its content-derived cart key.
type CartItem struct {
	ProductID      string                 `json:"productId"`
	Title          string                 `json:"title"`
	Quantity       int                    `json:"quantity"`
	UnitPrice      decimal.Decimal        `json:"unitPrice"`
	TotalItemPrice decimal.Decimal        `json:"totalItemPrice"`
	Options        map[string]interface{} `json:"options"`
	Image          string                 `json:"productImage,omitempty"`
	Comment        string                 `json:"productComment,omitempty"`
	Subscription   bool                   `json:"productSubscription"`
	Store          string                 `json:"store,omitempty"`
	Link           string                 `json:"link"`
}

// Cart maps cart keys to line items.
type Cart map[string]CartItem

// Quantity sums item quantities.
func (c Cart) Quantity() int {
	n := 0
	for _, item := range c {
		n += item.Quantity
	}
	return n
}

// Subtotal sums line totals.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c {
		sum = sum.Add(item.TotalItemPrice)
	}
	return sum
}

// SubscriptionProduct returns the product id of the first subscription line, if any.
func (c Cart) SubscriptionProduct() string {
	for _, item := range c {
		if item.Subscription {
			return item.ProductID
		}
	}
	return ""
}

// Clone returns a shallow copy of the mapping so mutations do not leak into the original.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
