package cart

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestPostgres_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	if _, err := repo.Get(ctx, "sess-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	cart := domain.Cart{
		"k1": {ProductID: "p1", Title: "Apple", Quantity: 2, TotalItemPrice: decimal.RequireFromString("2.50"), Link: "apple"},
	}
	if err := repo.Put(ctx, "sess-1", cart); err != nil {
		t.Fatalf("Put: %v", err)
	}
	cart["k1"] = domain.CartItem{ProductID: "p1", Quantity: 3, TotalItemPrice: decimal.RequireFromString("3.75")}
	if err := repo.Put(ctx, "sess-1", cart); err != nil {
		t.Fatalf("Put upsert: %v", err)
	}

	got, err := repo.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["k1"].Quantity != 3 || !got["k1"].TotalItemPrice.Equal(decimal.RequireFromString("3.75")) {
		t.Fatalf("unexpected cart %+v", got)
	}

	if err := repo.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "sess-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgres_HeldQuantitySumsAcrossCarts(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	if err := repo.Put(ctx, "a", domain.Cart{
		"k1": {ProductID: "p1", Quantity: 2},
		"k2": {ProductID: "p1", Quantity: 1, Options: map[string]interface{}{"size": "L"}},
		"k3": {ProductID: "p2", Quantity: 9},
	}); err != nil {
		t.Fatalf("Put a: %v", err)
	}
	if err := repo.Put(ctx, "b", domain.Cart{"k1": {ProductID: "p1", Quantity: 4}}); err != nil {
		t.Fatalf("Put b: %v", err)
	}

	held, err := repo.HeldQuantity(ctx, "p1")
	if err != nil {
		t.Fatalf("HeldQuantity: %v", err)
	}
	if held != 7 {
		t.Fatalf("expected 7 held, got %d", held)
	}
	held, err = repo.HeldQuantity(ctx, "missing")
	if err != nil || held != 0 {
		t.Fatalf("expected 0 held, got %d %v", held, err)
	}

	if err := repo.Put(ctx, "c", domain.Cart{"k1": {ProductID: "p2", Quantity: math.MaxInt32}}); err != nil {
		t.Fatalf("Put c: %v", err)
	}
	held, err = repo.HeldQuantity(ctx, "p2")
	if err != nil {
		t.Fatalf("HeldQuantity p2: %v", err)
	}
	if held != math.MaxInt32+9 {
		t.Fatalf("expected %d held, got %d", math.MaxInt32+9, held)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE carts, discounts, users, products, stores RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
