package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const selectColumns = `
SELECT id::text, COALESCE(store_id::text, ''), COALESCE(permalink, ''), title, description, price::text,
       published, tags, options, comment_enabled, stock, stock_disabled, subscription, image, added_at
FROM products
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*domain.Product, error) {
	var p domain.Product
	var price string
	if err := row.Scan(
		&p.ID,
		&p.StoreID,
		&p.Permalink,
		&p.Title,
		&p.Description,
		&price,
		&p.Published,
		&p.Tags,
		&p.Options,
		&p.CommentEnabled,
		&p.Stock,
		&p.StockDisabled,
		&p.Subscription,
		&p.Image,
		&p.AddedAt,
	); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("product %s: parse price %q: %w", p.ID, price, err)
	}
	p.Price = d
	return &p, nil
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Product, int, error) {
	var (
		conds []string
		args  []any
	)
	order := " ORDER BY added_at DESC"
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []domain.Product{}, 0, nil
		}
		args = append(args, f.IDs)
		conds = append(conds, fmt.Sprintf("id::text = ANY($%d::text[])", len(args)))
		// ids arrive ranked by the search index
		order = fmt.Sprintf(" ORDER BY array_position($%d::text[], id::text), added_at DESC", len(args))
	}
	if f.PublishedOnly {
		conds = append(conds, "published = TRUE")
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		r.logger.Printf("product repo: count error=%v", err)
		return nil, 0, err
	}

	q := selectColumns + where + order
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, 0, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	r.logger.Printf("product repo: list count=%d total=%d", len(result), total)
	return result, total, nil
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	list, _, err := r.List(ctx, ListFilter{})
	return list, err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := scanProduct(r.pool.QueryRow(ctx, selectColumns+"WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetByIDOrPermalink(ctx context.Context, ref string) (*domain.Product, error) {
	if _, err := uuid.Parse(ref); err == nil {
		p, err := r.GetByID(ctx, ref)
		if !errors.Is(err, domain.ErrNotFound) {
			return p, err
		}
	}
	p, err := scanProduct(r.pool.QueryRow(ctx, selectColumns+"WHERE permalink = $1", ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (store_id, permalink, title, description, price, published, tags, options,
                      comment_enabled, stock, stock_disabled, subscription, image)
VALUES (NULLIF($1, '')::uuid, NULLIF($2, ''), $3, $4, $5::numeric, $6, $7, COALESCE($8, '{}'::jsonb),
        $9, $10, $11, $12, $13)
RETURNING id::text, added_at
`
	err := r.pool.QueryRow(ctx, q,
		p.StoreID, p.Permalink, p.Title, p.Description, p.Price.StringFixed(2), p.Published, p.Tags, p.Options,
		p.CommentEnabled, p.Stock, p.StockDisabled, p.Subscription, p.Image,
	).Scan(&p.ID, &p.AddedAt)
	if err != nil {
		r.logger.Printf("product repo: create title=%q error=%v", p.Title, err)
		return nil, mapWriteErr(err)
	}
	r.logger.Printf("product repo: created id=%s permalink=%s", p.ID, p.Permalink)
	return &p, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if _, err := uuid.Parse(p.ID); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE products SET
    store_id = NULLIF($2, '')::uuid,
    permalink = NULLIF($3, ''),
    title = $4,
    description = $5,
    price = $6::numeric,
    published = $7,
    tags = $8,
    options = COALESCE($9, '{}'::jsonb),
    comment_enabled = $10,
    stock = $11,
    stock_disabled = $12,
    subscription = $13,
    image = $14
WHERE id = $1
RETURNING added_at
`
	err := r.pool.QueryRow(ctx, q,
		p.ID, p.StoreID, p.Permalink, p.Title, p.Description, p.Price.StringFixed(2), p.Published, p.Tags, p.Options,
		p.CommentEnabled, p.Stock, p.StockDisabled, p.Subscription, p.Image,
	).Scan(&p.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, mapWriteErr(err)
	}
	r.logger.Printf("product repo: updated id=%s", p.ID)
	return &p, nil
}

// Upsert inserts or updates by permalink. It is used by the importer.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(p.Permalink) == "" {
		return nil, errors.New("product repo: upsert requires a permalink")
	}
	const q = `
INSERT INTO products (store_id, permalink, title, description, price, published, tags, stock)
VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5::numeric, $6, $7, $8)
ON CONFLICT (permalink) WHERE permalink IS NOT NULL AND permalink <> '' DO UPDATE SET
    store_id = EXCLUDED.store_id,
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    published = EXCLUDED.published,
    tags = EXCLUDED.tags,
    stock = EXCLUDED.stock
RETURNING id::text, added_at
`
	err := r.pool.QueryRow(ctx, q,
		p.StoreID, p.Permalink, p.Title, p.Description, p.Price.StringFixed(2), p.Published, p.Tags, p.Stock,
	).Scan(&p.ID, &p.AddedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert permalink=%s error=%v", p.Permalink, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted permalink=%s id=%s", p.Permalink, p.ID)
	return &p, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) SetPublished(ctx context.Context, id string, published bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET published = $2 WHERE id = $1`, id, published)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetOptions(ctx context.Context, id string, options map[string]interface{}) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	if options == nil {
		options = map[string]interface{}{}
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET options = $2 WHERE id = $1`, id, options)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) PermalinkTaken(ctx context.Context, permalink, excludeID string) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM products
WHERE permalink = $1 AND ($2 = '' OR id::text <> $2)
`, permalink, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}
