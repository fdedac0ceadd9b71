package discount

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const selectColumns = `SELECT id::text, code, type, value::text, start_at, end_at FROM discounts `

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDiscount(row scanner) (*domain.Discount, error) {
	var d domain.Discount
	var value string
	if err := row.Scan(&d.ID, &d.Code, &d.Type, &value, &d.Start, &d.End); err != nil {
		return nil, err
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("discount %s: parse value %q: %w", d.Code, value, err)
	}
	d.Value = v
	return &d, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Discount, error) {
	rows, err := r.pool.Query(ctx, selectColumns+"ORDER BY start_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Discount{}
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Discount, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return r.get(ctx, selectColumns+"WHERE id = $1", id)
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.Discount, error) {
	return r.get(ctx, selectColumns+"WHERE code = $1", code)
}

func (r *postgresRepo) get(ctx context.Context, q, arg string) (*domain.Discount, error) {
	d, err := scanDiscount(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *postgresRepo) CodeTaken(ctx context.Context, code, excludeID string) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM discounts
WHERE code = $1 AND ($2 = '' OR id::text <> $2)
`, code, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postgresRepo) Create(ctx context.Context, d domain.Discount) (*domain.Discount, error) {
	const q = `
INSERT INTO discounts (code, type, value, start_at, end_at)
VALUES ($1, $2, $3::numeric, $4, $5)
RETURNING id::text
`
	if err := r.pool.QueryRow(ctx, q, d.Code, d.Type, d.Value.String(), d.Start, d.End).Scan(&d.ID); err != nil {
		return nil, mapWriteErr(err)
	}
	return &d, nil
}

func (r *postgresRepo) Update(ctx context.Context, d domain.Discount) (*domain.Discount, error) {
	if _, err := uuid.Parse(d.ID); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE discounts SET code = $2, type = $3, value = $4::numeric, start_at = $5, end_at = $6
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, d.ID, d.Code, d.Type, d.Value.String(), d.Start, d.End)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}
