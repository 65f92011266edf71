// Package cart is the server-side cart service behind the /client/cart
// routes. It owns validation and product denormalization; quantity summation
// for repeated adds happens in the repository.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cartbridge/internal/domain"
)

type Service struct {
	repo     cartRepo
	products productRepo
}

type cartRepo interface {
	Get(ctx context.Context, userID string) ([]domain.LineItem, error)
	AddItem(ctx context.Context, userID string, product domain.Product, quantity int) error
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartRepo, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

// Get returns the user's cart lines in insertion order.
func (s *Service) Get(ctx context.Context, userID string) ([]domain.LineItem, error) {
	return s.repo.Get(ctx, userID)
}

// AddItem adds or increments a line by the given quantity delta. The product
// is looked up so its name, price and image are copied into the line as they
// are now.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ErrProductRequired
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		return err
	}
	return s.repo.AddItem(ctx, userID, *product, quantity)
}

// SetQuantity sets a line's quantity to an absolute value. The line must
// already exist; non-positive quantities are rejected rather than treated as
// removal.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ErrProductRequired
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return s.repo.SetQuantity(ctx, userID, productID, quantity)
}

// RemoveItem removes one line; removing an absent line is a no-op.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ErrProductRequired
	}
	return s.repo.RemoveItem(ctx, userID, productID)
}

// Clear removes every line of the user's cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}
