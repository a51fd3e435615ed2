package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/core/cache"
	"storefront/internal/core/logger"
	"storefront/internal/core/metrics"
	"storefront/internal/features/catalog/domain"
	"storefront/internal/features/catalog/ports"

	"go.uber.org/zap"
)

// Cache keys of the catalog resources.
const (
	ProductsCacheKey   = "catalog:products"
	CategoriesCacheKey = "catalog:categories"
)

// Options tunes cache lifetimes of the CatalogService.
type Options struct {
	// ProductsTTL is how long the product list stays cached.
	ProductsTTL time.Duration
	// CategoriesTTL is how long the category list stays cached.
	CategoriesTTL time.Duration
	// Metrics records cache hits and invalid records. May be nil.
	Metrics *metrics.Metrics
}

// CatalogService serves validated catalog data with a cache-aside strategy.
// Remote or cache failures never surface to list callers; they degrade to empty results.
type CatalogService struct {
	source ports.ProductSource
	cache  cache.Cache
	opts   Options
	log    *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService. c may be nil to disable caching.
func NewCatalogService(source ports.ProductSource, c cache.Cache, opts Options) *CatalogService {
	return &CatalogService{
		source: source,
		cache:  c,
		opts:   opts,
		log:    logger.Named("catalog"),
	}
}

// ListProducts returns the valid products of the catalog.
func (s *CatalogService) ListProducts(ctx context.Context) []domain.Product {
	var cached []domain.Product
	if s.readCache(ctx, ProductsCacheKey, &cached) {
		s.opts.Metrics.CatalogFetch("products", metrics.SourceCache)
		return cached
	}

	products, err := s.source.ListProducts(ctx)
	if err != nil {
		s.opts.Metrics.CatalogFetch("products", metrics.SourceError)
		s.log.Error("Failed to fetch products", zap.Error(err))
		return []domain.Product{}
	}

	valid := s.filterValid(products)
	s.opts.Metrics.CatalogFetch("products", metrics.SourceRemote)
	s.writeCache(ctx, ProductsCacheKey, valid, s.opts.ProductsTTL)

	return valid
}

// GetProduct returns one valid product, served from the cached list when possible.
func (s *CatalogService) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	var cached []domain.Product
	if s.readCache(ctx, ProductsCacheKey, &cached) {
		for i := range cached {
			if cached[i].ID == id {
				s.opts.Metrics.CatalogFetch("product", metrics.SourceCache)
				p := cached[i]
				return &p, nil
			}
		}
	}

	p, err := s.source.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		s.opts.Metrics.CatalogFetch("product", metrics.SourceError)
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}

	if err := p.Validate(); err != nil {
		s.opts.Metrics.InvalidProducts(1)
		s.log.Warn("Catalog returned invalid product", zap.Int("product_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}

	s.opts.Metrics.CatalogFetch("product", metrics.SourceRemote)
	return p, nil
}

// ListCategories returns the catalog categories with their slugs.
func (s *CatalogService) ListCategories(ctx context.Context) []domain.Category {
	var names []string
	if s.readCache(ctx, CategoriesCacheKey, &names) {
		s.opts.Metrics.CatalogFetch("categories", metrics.SourceCache)
		return toCategories(names)
	}

	names, err := s.source.ListCategories(ctx)
	if err != nil {
		s.opts.Metrics.CatalogFetch("categories", metrics.SourceError)
		s.log.Error("Failed to fetch categories", zap.Error(err))
		return []domain.Category{}
	}

	s.opts.Metrics.CatalogFetch("categories", metrics.SourceRemote)
	s.writeCache(ctx, CategoriesCacheKey, names, s.opts.CategoriesTTL)

	return toCategories(names)
}

// PriceRange returns the rounded price span of the current catalog.
func (s *CatalogService) PriceRange(ctx context.Context) domain.PriceRange {
	return domain.ComputePriceRange(s.ListProducts(ctx))
}

func (s *CatalogService) filterValid(products []domain.Product) []domain.Product {
	valid := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			s.log.Warn("Dropping invalid product", zap.Int("product_id", p.ID), zap.Error(err))
			continue
		}
		valid = append(valid, p)
	}

	s.opts.Metrics.InvalidProducts(len(products) - len(valid))
	return valid
}

func (s *CatalogService) readCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}

	found, err := cache.GetJSON(ctx, s.cache, key, dst)
	if err != nil {
		s.log.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (s *CatalogService) writeCache(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.cache == nil {
		return
	}

	if err := cache.SetJSON(ctx, s.cache, key, value, ttl); err != nil {
		s.log.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func toCategories(names []string) []domain.Category {
	categories := make([]domain.Category, 0, len(names))
	for _, name := range names {
		categories = append(categories, domain.NewCategory(name))
	}
	return categories
}
