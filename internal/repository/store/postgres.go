package store

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// List returns all stores, or only those in ids when ids is non-nil.
func (r *postgresRepo) List(ctx context.Context, ids []string) ([]domain.Store, error) {
	q := `SELECT id::text, title, address, description, added_at FROM stores`
	var args []any
	if ids != nil {
		if len(ids) == 0 {
			return []domain.Store{}, nil
		}
		q += ` WHERE id::text = ANY($1::text[])`
		args = append(args, ids)
	}
	q += ` ORDER BY title ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Store{}
	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(&s.ID, &s.Title, &s.Address, &s.Description, &s.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return r.get(ctx, `SELECT id::text, title, address, description, added_at FROM stores WHERE id = $1`, id)
}

func (r *postgresRepo) GetByTitle(ctx context.Context, title string) (*domain.Store, error) {
	return r.get(ctx, `SELECT id::text, title, address, description, added_at FROM stores WHERE title = $1 ORDER BY added_at LIMIT 1`, title)
}

func (r *postgresRepo) get(ctx context.Context, q string, arg string) (*domain.Store, error) {
	var s domain.Store
	err := r.pool.QueryRow(ctx, q, arg).Scan(&s.ID, &s.Title, &s.Address, &s.Description, &s.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) Create(ctx context.Context, s domain.Store) (*domain.Store, error) {
	const q = `
INSERT INTO stores (title, address, description)
VALUES ($1, $2, $3)
RETURNING id::text, added_at
`
	if err := r.pool.QueryRow(ctx, q, s.Title, s.Address, s.Description).Scan(&s.ID, &s.AddedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) Update(ctx context.Context, s domain.Store) (*domain.Store, error) {
	if _, err := uuid.Parse(s.ID); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE stores SET title = $2, address = $3, description = $4
WHERE id = $1
RETURNING added_at
`
	if err := r.pool.QueryRow(ctx, q, s.ID, s.Title, s.Address, s.Description).Scan(&s.AddedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
