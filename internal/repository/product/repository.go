package product

import (
	"context"

	"cartbridge/internal/domain"
)

type UpsertInput struct {
	Name        string
	Description string
	PriceCents  int64
	ImageURL    string
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Upsert(ctx context.Context, in UpsertInput) (*domain.Product, error)
}
