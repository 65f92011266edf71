package cart

import (
	"context"

	"cartbridge/internal/domain"
)

// Repository stores each user's cart lines in insertion order. Adding a
// product that is already in the cart increments its quantity in place.
type Repository interface {
	Get(ctx context.Context, userID string) ([]domain.LineItem, error)
	AddItem(ctx context.Context, userID string, product domain.Product, quantity int) error
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}
