package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"

	"cartbridge/internal/repository/product"
)

// Apply inserts catalog data for manual testing. A fixed faker seed keeps the
// generated names stable, so reruns upsert the same rows instead of growing
// the table.
func Apply(ctx context.Context, pool *pgxpool.Pool, count int) error {
	if count <= 0 {
		count = 20
	}
	faker := gofakeit.New(42)
	repo := product.NewPostgres(pool)

	for i := 0; i < count; i++ {
		name := fmt.Sprintf("%s %s", faker.ProductName(), faker.AdjectiveDescriptive())
		in := product.UpsertInput{
			Name:        name,
			Description: faker.ProductDescription(),
			PriceCents:  int64(faker.Price(500, 50000)),
			ImageURL:    fmt.Sprintf("https://img.example.com/%s.jpg", faker.UUID()),
		}
		if _, err := repo.Upsert(ctx, in); err != nil {
			return fmt.Errorf("upsert product %q: %w", in.Name, err)
		}
	}
	return nil
}
