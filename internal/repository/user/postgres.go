package user

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `
SELECT id::text, name, email, password_hash, is_admin, is_owner, COALESCE(api_key, ''),
       COALESCE(store_id::text, ''), created_at
FROM users
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (name, email, password_hash, is_admin, is_owner, store_id)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid)
RETURNING id::text, name, email, password_hash, is_admin, is_owner, COALESCE(api_key, ''),
          COALESCE(store_id::text, ''), created_at
`
	return r.scanUser(r.pool.QueryRow(ctx, q,
		u.Name, strings.ToLower(u.Email), u.PasswordHash, u.IsAdmin, u.IsOwner, u.StoreID,
	))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, selectColumns+"WHERE lower(email) = lower($1) LIMIT 1", email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return r.scanUser(r.pool.QueryRow(ctx, selectColumns+"WHERE id = $1", id))
}

func (r *postgresRepo) GetByAPIKey(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, domain.ErrNotFound
	}
	return r.scanUser(r.pool.QueryRow(ctx, selectColumns+"WHERE api_key = $1", key))
}

func (r *postgresRepo) SetAPIKey(ctx context.Context, id, key string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET api_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("user repo: api key rotated id=%s", id)
	return nil
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsOwner, &u.APIKey, &u.StoreID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: scan error=%v", err)
		return nil, err
	}
	return &u, nil
}
