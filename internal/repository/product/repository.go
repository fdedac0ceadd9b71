package product

import (
	"context"

	"storefront/internal/domain"
)

// ListFilter narrows product listings. A non-nil IDs slice restricts results to those ids,
// so an empty non-nil slice matches nothing.
type ListFilter struct {
	IDs           []string
	PublishedOnly bool
	Limit         int
	Offset        int
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]domain.Product, int, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDOrPermalink(ctx context.Context, ref string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
	SetOptions(ctx context.Context, id string, options map[string]interface{}) error
	PermalinkTaken(ctx context.Context, permalink, excludeID string) (bool, error)
}
