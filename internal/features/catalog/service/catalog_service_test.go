package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/core/cache"
	"storefront/internal/core/logger"
	"storefront/internal/features/catalog/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductSource is a mock implementation of ports.ProductSource
type MockProductSource struct {
	mock.Mock
}

func (m *MockProductSource) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductSource) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductSource) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func product(id int, price float64) domain.Product {
	return domain.Product{
		ID:       id,
		Title:    "Product",
		Price:    price,
		Category: "electronics",
		Image:    "https://fakestoreapi.com/img/x.jpg",
		Rating:   domain.Rating{Rate: 4, Count: 10},
	}
}

func newTestCache(t *testing.T) (cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func newService(t *testing.T, source *MockProductSource, c cache.Cache) *CatalogService {
	t.Helper()
	logger.Init("development", "debug")
	return NewCatalogService(source, c, Options{ProductsTTL: time.Hour, CategoriesTTL: 24 * time.Hour})
}

func TestCatalogService_ListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("DropsInvalidAndCaches", func(t *testing.T) {
		source := new(MockProductSource)
		c, mr := newTestCache(t)
		svc := newService(t, source, c)

		invalid := product(2, -5)
		source.On("ListProducts", mock.Anything).Return([]domain.Product{product(1, 10), invalid}, nil).Once()

		products := svc.ListProducts(ctx)
		require.Len(t, products, 1)
		assert.Equal(t, 1, products[0].ID)
		assert.True(t, mr.Exists(ProductsCacheKey))
		assert.Equal(t, time.Hour, mr.TTL(ProductsCacheKey))

		// Second call is served from cache.
		products = svc.ListProducts(ctx)
		require.Len(t, products, 1)
		source.AssertExpectations(t)
	})

	t.Run("RemoteFailureDegrades", func(t *testing.T) {
		source := new(MockProductSource)
		svc := newService(t, source, nil)

		source.On("ListProducts", mock.Anything).Return(nil, errors.New("timeout")).Once()

		products := svc.ListProducts(ctx)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})

	t.Run("CorruptCacheFallsBackToRemote", func(t *testing.T) {
		source := new(MockProductSource)
		c, mr := newTestCache(t)
		svc := newService(t, source, c)

		require.NoError(t, mr.Set(ProductsCacheKey, "{not json"))
		source.On("ListProducts", mock.Anything).Return([]domain.Product{product(3, 20)}, nil).Once()

		products := svc.ListProducts(ctx)
		require.Len(t, products, 1)
		assert.Equal(t, 3, products[0].ID)
	})
}

func TestCatalogService_GetProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("FromCachedList", func(t *testing.T) {
		source := new(MockProductSource)
		c, _ := newTestCache(t)
		svc := newService(t, source, c)

		require.NoError(t, cache.SetJSON(ctx, c, ProductsCacheKey, []domain.Product{product(7, 15)}, 0))

		p, err := svc.GetProduct(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, p.ID)
		source.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
	})

	t.Run("FromRemote", func(t *testing.T) {
		source := new(MockProductSource)
		svc := newService(t, source, nil)

		p := product(9, 30)
		source.On("GetProduct", mock.Anything, 9).Return(&p, nil).Once()

		got, err := svc.GetProduct(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, 9, got.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		source := new(MockProductSource)
		svc := newService(t, source, nil)

		source.On("GetProduct", mock.Anything, 404).Return(nil, domain.ErrProductNotFound).Once()

		_, err := svc.GetProduct(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("InvalidIsNotFound", func(t *testing.T) {
		source := new(MockProductSource)
		svc := newService(t, source, nil)

		p := product(5, 0)
		source.On("GetProduct", mock.Anything, 5).Return(&p, nil).Once()

		_, err := svc.GetProduct(ctx, 5)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("RemoteError", func(t *testing.T) {
		source := new(MockProductSource)
		svc := newService(t, source, nil)

		source.On("GetProduct", mock.Anything, 6).Return(nil, errors.New("connection refused")).Once()

		_, err := svc.GetProduct(ctx, 6)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestCatalogService_ListCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("SlugsAndCaches", func(t *testing.T) {
		source := new(MockProductSource)
		c, mr := newTestCache(t)
		svc := newService(t, source, c)

		source.On("ListCategories", mock.Anything).Return([]string{"men's clothing", "jewelery"}, nil).Once()

		categories := svc.ListCategories(ctx)
		assert.Equal(t, []domain.Category{
			{ID: "men's-clothing", Name: "men's clothing"},
			{ID: "jewelery", Name: "jewelery"},
		}, categories)
		assert.Equal(t, 24*time.Hour, mr.TTL(CategoriesCacheKey))

		assert.Len(t, svc.ListCategories(ctx), 2)
		source.AssertExpectations(t)
	})

	t.Run("RemoteFailureDegrades", func(t *testing.T) {
		source := new(MockProductSource)
		svc := newService(t, source, nil)

		source.On("ListCategories", mock.Anything).Return(nil, errors.New("boom")).Once()
		assert.Empty(t, svc.ListCategories(ctx))
	})
}

func TestCatalogService_PriceRange(t *testing.T) {
	source := new(MockProductSource)
	svc := newService(t, source, nil)

	source.On("ListProducts", mock.Anything).Return([]domain.Product{product(1, 12.5), product(2, 87)}, nil).Once()
	assert.Equal(t, domain.PriceRange{Min: 10, Max: 90}, svc.PriceRange(context.Background()))

	source.On("ListProducts", mock.Anything).Return(nil, errors.New("down")).Once()
	assert.Equal(t, domain.DefaultPriceRange, svc.PriceRange(context.Background()))
}
