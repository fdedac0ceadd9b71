package domain

import "github.com/shopspring/decimal"

// Session is the per-visitor state kept between requests.
// Cart is a read-through copy of the persisted cart row; nil means it has not been loaded yet.
type Session struct {
	ID string `json:"id"`

	Cart              Cart            `json:"cart,omitempty"`
	TotalCartItems    int             `json:"totalCartItems"`
	TotalCartProducts int             `json:"totalCartProducts"`
	TotalCartNet      decimal.Decimal `json:"totalCartNetAmount"`
	TotalCartDiscount decimal.Decimal `json:"totalCartDiscount"`
	TotalCartShipping decimal.Decimal `json:"totalCartShipping"`
	ShippingMessage   string          `json:"shippingMessage,omitempty"`
	TotalCartAmount   decimal.Decimal `json:"totalCartAmount"`
	DiscountCode      string          `json:"discountCode,omitempty"`
	CartSubscription  string          `json:"cartSubscription,omitempty"`

	CustomerEmail     string `json:"customerEmail,omitempty"`
	CustomerFirstName string `json:"customerFirstname,omitempty"`
	CustomerLastName  string `json:"customerLastname,omitempty"`
	CustomerCountry   string `json:"customerCountry,omitempty"`

	User *SessionUser `json:"user,omitempty"`
}

// SessionUser is the logged-in administrator.
type SessionUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	StoreID string `json:"store,omitempty"`
}

// ClearCart resets every cart-derived field.
func (s *Session) ClearCart() {
	s.Cart = nil
	s.TotalCartItems = 0
	s.TotalCartProducts = 0
	s.TotalCartNet = decimal.Zero
	s.TotalCartDiscount = decimal.Zero
	s.TotalCartShipping = decimal.Zero
	s.ShippingMessage = ""
	s.TotalCartAmount = decimal.Zero
	s.DiscountCode = ""
	s.CartSubscription = ""
}
