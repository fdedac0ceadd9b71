package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Permalink    string
	Title        string
	Description  string
	Price        decimal.Decimal
	Tags         string
	Stock        *int
	Subscription bool
	Options      string
}

// Admin is the demo administrator created by Apply.
type Admin struct {
	Name     string
	Email    string
	Password string
}

// DefaultAdmin is used when Apply is given an empty Admin.
var DefaultAdmin = Admin{Name: "Demo Owner", Email: "owner@example.com", Password: "change-me-please"}

// Apply inserts a demo store, products, an owner account and a discount code for manual testing.
// It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool, admin Admin) error {
	if admin.Email == "" {
		admin = DefaultAdmin
	}

	storeID, err := ensureStore(ctx, pool, "Demo Store", "1 Main Street, Santiago", "Store used for local development")
	if err != nil {
		return fmt.Errorf("ensure store: %w", err)
	}

	stock := 25
	products := []productSeed{
		{
			Permalink:   "demo-shirt",
			Title:       "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			Price:       decimal.RequireFromString("19.99"),
			Tags:        "clothes,shirt",
			Stock:       &stock,
			Options:     `{"size":{"optName":"size","optLabel":"Size","optType":"select","optOptions":["S","M","L"]}}`,
		},
		{
			Permalink:   "demo-mug",
			Title:       "Demo Mug",
			Description: "Ceramic mug with demo logo",
			Price:       decimal.RequireFromString("12.99"),
			Tags:        "kitchen,mug",
		},
		{
			Permalink:    "demo-coffee-club",
			Title:        "Coffee Club Subscription",
			Description:  "A bag of fresh beans every month",
			Price:        decimal.RequireFromString("24.00"),
			Tags:         "coffee,subscription",
			Subscription: true,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, storeID, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Permalink, err)
		}
	}

	if err := ensureAdmin(ctx, pool, admin); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	now := time.Now().UTC()
	if err := upsertDiscount(ctx, pool, "WELCOME10", "percent", decimal.NewFromInt(10), now, now.AddDate(0, 3, 0)); err != nil {
		return fmt.Errorf("upsert discount: %w", err)
	}

	return nil
}

func ensureStore(ctx context.Context, pool *pgxpool.Pool, title, address, description string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM stores WHERE title = $1 ORDER BY added_at LIMIT 1`, title).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	const q = `
INSERT INTO stores (title, address, description)
VALUES ($1, $2, $3)
RETURNING id::text
`
	if err := pool.QueryRow(ctx, q, title, address, description).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, storeID string, p productSeed) error {
	options := p.Options
	if options == "" {
		options = "{}"
	}
	const q = `
INSERT INTO products (store_id, permalink, title, description, price, published, tags, options, stock, subscription)
VALUES ($1::uuid, $2, $3, $4, $5::numeric, TRUE, $6, $7::jsonb, $8, $9)
ON CONFLICT (permalink) WHERE permalink IS NOT NULL AND permalink <> '' DO UPDATE
SET store_id = EXCLUDED.store_id,
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    tags = EXCLUDED.tags,
    options = EXCLUDED.options,
    stock = EXCLUDED.stock,
    subscription = EXCLUDED.subscription
`
	_, err := pool.Exec(ctx, q, storeID, p.Permalink, p.Title, p.Description, p.Price.StringFixed(2), p.Tags, options, p.Stock, p.Subscription)
	return err
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, a Admin) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	const q = `
INSERT INTO users (name, email, password_hash, is_admin, is_owner)
VALUES ($1, lower($2), $3, TRUE, TRUE)
ON CONFLICT (email) DO NOTHING
`
	_, err = pool.Exec(ctx, q, a.Name, a.Email, string(hash))
	return err
}

func upsertDiscount(ctx context.Context, pool *pgxpool.Pool, code, kind string, value decimal.Decimal, start, end time.Time) error {
	const q = `
INSERT INTO discounts (code, type, value, start_at, end_at)
VALUES ($1, $2, $3::numeric, $4, $5)
ON CONFLICT (code) DO UPDATE
SET type = EXCLUDED.type,
    value = EXCLUDED.value,
    start_at = EXCLUDED.start_at,
    end_at = EXCLUDED.end_at
`
	_, err := pool.Exec(ctx, q, code, kind, value.StringFixed(2), start, end)
	return err
}
