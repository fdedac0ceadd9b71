package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, `SELECT cart FROM carts WHERE session_id = $1`, sessionID).Scan(&cart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	return cart, nil
}

func (r *postgresRepo) Put(ctx context.Context, sessionID string, cart domain.Cart) error {
	if cart == nil {
		cart = domain.Cart{}
	}
	const q = `
INSERT INTO carts (session_id, cart, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (session_id) DO UPDATE SET
    cart = EXCLUDED.cart,
    updated_at = EXCLUDED.updated_at
`
	_, err := r.pool.Exec(ctx, q, sessionID, cart)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE session_id = $1`, sessionID)
	return err
}

func (r *postgresRepo) HeldQuantity(ctx context.Context, productID string) (int, error) {
	const q = `
SELECT COALESCE(SUM((line.item->>'quantity')::bigint), 0)::bigint
FROM carts c
CROSS JOIN LATERAL jsonb_each(c.cart) AS line(key, item)
WHERE line.item->>'productId' = $1
`
	var held int64
	if err := r.pool.QueryRow(ctx, q, productID).Scan(&held); err != nil {
		return 0, err
	}
	return int(held), nil
}
