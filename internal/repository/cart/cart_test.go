package cart

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"cartbridge/internal/domain"
	"cartbridge/internal/migrate"
	productrepo "cartbridge/internal/repository/product"
)

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
	if _, err := pool.Exec(ctx, `TRUNCATE cart_items, products`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func seedProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string, price int64) domain.Product {
	t.Helper()
	p, err := productrepo.NewPostgres(pool).Upsert(ctx, productrepo.UpsertInput{
		Name:       name,
		PriceCents: price,
		ImageURL:   "https://img/" + name + ".jpg",
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return *p
}

func TestPostgres_AddIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	tee := seedProduct(ctx, t, pool, "Tee", 1999)
	repo := NewPostgres(pool)

	if err := repo.AddItem(ctx, "u1", tee, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := repo.AddItem(ctx, "u1", tee, 3); err != nil {
		t.Fatalf("AddItem again: %v", err)
	}

	items, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("expected one line with quantity 5, got %+v", items)
	}
	if items[0].Name != "Tee" || items[0].UnitPrice != 1999 {
		t.Fatalf("expected denormalized product data, got %+v", items[0])
	}
}

func TestPostgres_InsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	tee := seedProduct(ctx, t, pool, "Tee", 1999)
	mug := seedProduct(ctx, t, pool, "Mug", 1299)
	repo := NewPostgres(pool)

	if err := repo.AddItem(ctx, "u1", tee, 1); err != nil {
		t.Fatalf("AddItem tee: %v", err)
	}
	if err := repo.AddItem(ctx, "u1", mug, 1); err != nil {
		t.Fatalf("AddItem mug: %v", err)
	}

	items, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(items) != 2 || items[0].ID != tee.ID || items[1].ID != mug.ID {
		t.Fatalf("expected insertion order [tee mug], got %+v", items)
	}
}

func TestPostgres_SetQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	tee := seedProduct(ctx, t, pool, "Tee", 1999)
	repo := NewPostgres(pool)

	if err := repo.AddItem(ctx, "u1", tee, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := repo.SetQuantity(ctx, "u1", tee.ID, 7); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	items, _ := repo.Get(ctx, "u1")
	if len(items) != 1 || items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %+v", items)
	}

	if err := repo.SetQuantity(ctx, "u1", "00000000-0000-0000-0000-000000000000", 2); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing line, got %v", err)
	}

	if err := repo.RemoveItem(ctx, "u1", tee.ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if err := repo.RemoveItem(ctx, "u1", tee.ID); err != nil {
		t.Fatalf("RemoveItem twice should be a no-op: %v", err)
	}
	items, _ = repo.Get(ctx, "u1")
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}

func TestPostgres_ClearIsScopedToUser(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	tee := seedProduct(ctx, t, pool, "Tee", 1999)
	repo := NewPostgres(pool)

	if err := repo.AddItem(ctx, "u1", tee, 1); err != nil {
		t.Fatalf("AddItem u1: %v", err)
	}
	if err := repo.AddItem(ctx, "u2", tee, 1); err != nil {
		t.Fatalf("AddItem u2: %v", err)
	}

	if err := repo.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	u1Items, _ := repo.Get(ctx, "u1")
	u2Items, _ := repo.Get(ctx, "u2")
	if len(u1Items) != 0 || len(u2Items) != 1 {
		t.Fatalf("expected u1 empty and u2 untouched, got %+v / %+v", u1Items, u2Items)
	}
}
