package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_StoreLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE carts, discounts, users, products, stores RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	repo := NewPostgres(pool)
	created, err := repo.Create(ctx, domain.Store{Title: "Centro", Address: "Av. 1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	byTitle, err := repo.GetByTitle(ctx, "Centro")
	if err != nil || byTitle.ID != created.ID {
		t.Fatalf("GetByTitle: %+v %v", byTitle, err)
	}

	created.Title = "Centro Norte"
	if _, err := repo.Update(ctx, *created); err != nil {
		t.Fatalf("Update: %v", err)
	}
	list, err := repo.List(ctx, []string{created.ID})
	if err != nil || len(list) != 1 || list[0].Title != "Centro Norte" {
		t.Fatalf("List: %+v %v", list, err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
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
