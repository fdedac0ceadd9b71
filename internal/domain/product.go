package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID             string                 `json:"id"`
	StoreID        string                 `json:"productStore"`
	Permalink      string                 `json:"productPermalink,omitempty"`
	Title          string                 `json:"productTitle"`
	Description    string                 `json:"productDescription,omitempty"`
	Price          decimal.Decimal        `json:"productPrice"`
	Published      bool                   `json:"productPublished"`
	Tags           string                 `json:"productTags,omitempty"`
	Options        map[string]interface{} `json:"productOptions,omitempty"`
	CommentEnabled bool                   `json:"productComment"`
	Stock          *int                   `json:"productStock,omitempty"`
	StockDisabled  bool                   `json:"productStockDisable"`
	Subscription   bool                   `json:"productSubscription"`
	Image          string                 `json:"productImage,omitempty"`
	AddedAt        time.Time              `json:"productAddedDate"`
}

// Link returns the slug used by storefront links: the permalink, or the id when none is set.
func (p Product) Link() string {
	if p.Permalink != "" {
		return p.Permalink
	}
	return p.ID
}

// TracksStock reports whether stock limits apply to the product when tracking is enabled globally.
func (p Product) TracksStock() bool {
	return !p.StockDisabled && p.Stock != nil
}
