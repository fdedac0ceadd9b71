package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists one cart document per session.
type Repository interface {
	Get(ctx context.Context, sessionID string) (domain.Cart, error)
	Put(ctx context.Context, sessionID string, cart domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
	// HeldQuantity sums the quantity of productID across every persisted cart.
	HeldQuantity(ctx context.Context, productID string) (int, error)
}
