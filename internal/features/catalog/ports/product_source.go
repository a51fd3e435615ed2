package ports

import (
	"context"

	"storefront/internal/features/catalog/domain"
)

// ProductSource defines the interface for reading the remote product catalog.
// This is a Secondary Port (Driven Port).
type ProductSource interface {
	// ListProducts returns every product the catalog serves, undecodable records dropped.
	ListProducts(ctx context.Context) ([]domain.Product, error)
	// GetProduct returns one product or domain.ErrProductNotFound.
	GetProduct(ctx context.Context, id int) (*domain.Product, error)
	// ListCategories returns the category display names.
	ListCategories(ctx context.Context) ([]string, error)
}

// CatalogService is the Primary Port consumed by HTTP handlers.
type CatalogService interface {
	ListProducts(ctx context.Context) []domain.Product
	GetProduct(ctx context.Context, id int) (*domain.Product, error)
	ListCategories(ctx context.Context) []domain.Category
	PriceRange(ctx context.Context) domain.PriceRange
}
