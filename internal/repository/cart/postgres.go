package cart

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"cartbridge/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, userID string) ([]domain.LineItem, error) {
	const q = `
SELECT product_id::text, name, unit_price_cents, image_url, quantity
FROM cart_items
WHERE user_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.UnitPrice,
			&item.ImageURL,
			&item.Quantity,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, userID string, product domain.Product, quantity int) error {
	const q = `
INSERT INTO cart_items (user_id, product_id, name, unit_price_cents, image_url, quantity)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
`
	_, err := r.pool.Exec(ctx, q, userID, product.ID, product.Name, product.PriceCents, product.ImageURL, quantity)
	return err
}

func (r *postgresRepo) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	const q = `
UPDATE cart_items
SET quantity = $1
WHERE user_id = $2 AND product_id = $3
`
	cmd, err := r.pool.Exec(ctx, q, quantity, userID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, userID, productID string) error {
	const q = `
DELETE FROM cart_items
WHERE user_id = $1 AND product_id = $2
`
	// Removing a line that is not there is a no-op by contract.
	_, err := r.pool.Exec(ctx, q, userID, productID)
	return err
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	const q = `
DELETE FROM cart_items
WHERE user_id = $1
`
	_, err := r.pool.Exec(ctx, q, userID)
	return err
}
