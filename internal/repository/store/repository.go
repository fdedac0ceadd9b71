package store

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context, ids []string) ([]domain.Store, error)
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	GetByTitle(ctx context.Context, title string) (*domain.Store, error)
	Create(ctx context.Context, s domain.Store) (*domain.Store, error)
	Update(ctx context.Context, s domain.Store) (*domain.Store, error)
	Delete(ctx context.Context, id string) error
}
