package user

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists and fetches admin users.
type Repository interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByAPIKey(ctx context.Context, key string) (*domain.User, error)
	SetAPIKey(ctx context.Context, id, key string) error
}
