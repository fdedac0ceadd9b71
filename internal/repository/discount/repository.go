package discount

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Discount, error)
	GetByID(ctx context.Context, id string) (*domain.Discount, error)
	GetByCode(ctx context.Context, code string) (*domain.Discount, error)
	// CodeTaken reports whether code is used by any discount other than excludeID.
	CodeTaken(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, d domain.Discount) (*domain.Discount, error)
	Update(ctx context.Context, d domain.Discount) (*domain.Discount, error)
	Delete(ctx context.Context, id string) error
}
