package shipping

import (
	"strings"

	"storefront/internal/config"
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// GatewayInStore is the payment gateway for in-store pickup, where shipping is waived.
const GatewayInStore = "instore"

const (
	MessageInStore       = "home delivery"
	MessageFree          = "free shipping"
	MessageEstimated     = "estimated shipping"
	MessageInternational = "international shipping"
	MessageDomestic      = "domestic shipping"
)

// Calculator quotes a flat-rate shipping fee from configured tiers.
type Calculator struct {
	rates   config.ShippingConfig
	gateway string
}

func New(rates config.ShippingConfig, gateway string) *Calculator {
	return &Calculator{rates: rates, gateway: gateway}
}

// Quote is a shipping fee with its display message.
type Quote struct {
	Fee     decimal.Decimal
	Message string
}

// Quote picks the first matching tier for the net amount and the buyer's country.
func (c *Calculator) Quote(net decimal.Decimal, country string) Quote {
	switch {
	case c.gateway == GatewayInStore:
		return Quote{Fee: decimal.Zero, Message: MessageInStore}
	case net.GreaterThanOrEqual(c.rates.FreeThreshold):
		return Quote{Fee: decimal.Zero, Message: MessageFree}
	case country == "":
		return Quote{Fee: c.rates.DomesticRate, Message: MessageEstimated}
	case !strings.EqualFold(country, c.rates.HomeCountry):
		return Quote{Fee: c.rates.InternationalRate, Message: MessageInternational}
	default:
		return Quote{Fee: c.rates.DomesticRate, Message: MessageDomestic}
	}
}

// Apply writes the fee, message and grand total (net + fee) onto the session.
func (c *Calculator) Apply(s *domain.Session, net decimal.Decimal) {
	q := c.Quote(net, s.CustomerCountry)
	s.TotalCartShipping = q.Fee
	s.ShippingMessage = q.Message
	s.TotalCartAmount = net.Add(q.Fee)
}
