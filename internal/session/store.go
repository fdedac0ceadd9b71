package session

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no state is stored for a session id.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps per-visitor session state between requests.
type Store interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}
