package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"storefront/internal/core/logger"
	"storefront/internal/features/filters/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCriteriaRepository is a mock implementation of ports.CriteriaRepository
type MockCriteriaRepository struct {
	mock.Mock
}

func (m *MockCriteriaRepository) Save(ctx context.Context, sessionID string, c domain.Criteria) error {
	args := m.Called(ctx, sessionID, c)
	return args.Error(0)
}

func (m *MockCriteriaRepository) Get(ctx context.Context, sessionID string) (*domain.Criteria, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Criteria), args.Error(1)
}

func (m *MockCriteriaRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

var bounds = domain.Bounds{Min: 0, Max: 1000}

func newService(repo *MockCriteriaRepository) *FilterService {
	logger.Init("development", "debug")
	return NewFilterService(repo)
}

func ptr[T any](v T) *T { return &v }

func TestFilterService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("URLWinsAndIsPersisted", func(t *testing.T) {
		repo := new(MockCriteriaRepository)
		svc := newService(repo)

		saved := &domain.Criteria{Category: "jewelery", MinPrice: 0, MaxPrice: 1000}
		repo.On("Get", ctx, "s1").Return(saved, nil).Once()
		expected := domain.Criteria{SearchQuery: "bag", MinPrice: 0, MaxPrice: 1000}
		repo.On("Save", ctx, "s1", expected).Return(nil).Once()

		state := svc.Resolve(ctx, "s1", url.Values{"q": {"bag"}}, bounds)
		assert.Equal(t, expected, state.Criteria)
		assert.Equal(t, "q=bag", state.Query)
		repo.AssertExpectations(t)
	})

	t.Run("FallsBackToStored", func(t *testing.T) {
		repo := new(MockCriteriaRepository)
		svc := newService(repo)

		saved := &domain.Criteria{Category: "jewelery", MinPrice: 0, MaxPrice: 1000}
		repo.On("Get", ctx, "s1").Return(saved, nil).Once()

		state := svc.Resolve(ctx, "s1", url.Values{"page": {"1"}}, bounds)
		assert.Equal(t, "jewelery", state.Criteria.Category)
		assert.Equal(t, "category=jewelery", state.Query)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DefaultURLKeepsStored", func(t *testing.T) {
		repo := new(MockCriteriaRepository)
		svc := newService(repo)

		saved := &domain.Criteria{Category: "jewelery", TopRated: true, MinPrice: 0, MaxPrice: 1000}
		repo.On("Get", ctx, "s1").Return(saved, nil).Once()

		state := svc.Resolve(ctx, "s1", url.Values{"q": {""}, "sort": {""}}, bounds)
		assert.Equal(t, *saved, state.Criteria)
		assert.Equal(t, "category=jewelery&top_rated=true", state.Query)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("RepositoryFailureIsNotFatal", func(t *testing.T) {
		repo := new(MockCriteriaRepository)
		svc := newService(repo)

		repo.On("Get", ctx, "s1").Return(nil, errors.New("redis down")).Once()

		state := svc.Resolve(ctx, "s1", url.Values{}, bounds)
		assert.Equal(t, domain.Defaults(bounds), state.Criteria)
	})

	t.Run("StoredCriteriaClampedToNewBounds", func(t *testing.T) {
		repo := new(MockCriteriaRepository)
		svc := newService(repo)

		repo.On("Get", ctx, "s1").Return(&domain.Criteria{MinPrice: 5, MaxPrice: 900}, nil).Once()

		state := svc.Resolve(ctx, "s1", url.Values{}, domain.Bounds{Min: 10, Max: 100})
		assert.Equal(t, 10.0, state.Criteria.MinPrice)
		assert.Equal(t, 100.0, state.Criteria.MaxPrice)
	})
}

func TestFilterService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliesPatch", func(t *testing.T) {
		repo := new(MockCriteriaRepository)
		svc := newService(repo)

		repo.On("Get", ctx, "s1").Return(nil, nil).Once()
		repo.On("Save", ctx, "s1", mock.AnythingOfType("domain.Criteria")).Return(nil)

		state, err := svc.Update(ctx, "s1", domain.Patch{
			Category:  ptr("electronics"),
			MaxPrice:  ptr(250.0),
			PriceSort: ptr("desc"),
		}, bounds)
		require.NoError(t, err)

		expected := domain.Criteria{Category: "electronics", MinPrice: 0, MaxPrice: 250, PriceSort: domain.SortDesc}
		assert.Equal(t, expected, state.Criteria)
		repo.AssertNumberOfCalls(t, "Save", 1)
		repo.AssertCalled(t, "Save", ctx, "s1", expected)
	})

	t.Run("EmptyPatchSkipsWrite", func(t *testing.T) {
		repo := new(MockCriteriaRepository)
		svc := newService(repo)

		repo.On("Get", ctx, "s1").Return(&domain.Criteria{Category: "jewelery", MaxPrice: 1000}, nil).Once()

		state, err := svc.Update(ctx, "s1", domain.Patch{}, bounds)
		require.NoError(t, err)
		assert.Equal(t, "jewelery", state.Criteria.Category)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("InvalidSort", func(t *testing.T) {
		repo := new(MockCriteriaRepository)
		svc := newService(repo)

		_, err := svc.Update(ctx, "s1", domain.Patch{PriceSort: ptr("upwards")}, bounds)
		assert.ErrorIs(t, err, domain.ErrInvalidSort)
		repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("BackToDefaultDeletes", func(t *testing.T) {
		repo := new(MockCriteriaRepository)
		svc := newService(repo)

		repo.On("Get", ctx, "s1").Return(&domain.Criteria{SearchQuery: "ring", MaxPrice: 1000}, nil).Once()
		repo.On("Delete", ctx, "s1").Return(nil).Once()

		state, err := svc.Update(ctx, "s1", domain.Patch{SearchQuery: ptr("")}, bounds)
		require.NoError(t, err)
		assert.Empty(t, state.Query)
		repo.AssertExpectations(t)
	})
}

func TestFilterService_Reset(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCriteriaRepository)
	svc := newService(repo)

	repo.On("Delete", ctx, "s1").Return(nil).Once()

	state := svc.Reset(ctx, "s1", bounds)
	assert.Equal(t, domain.Defaults(bounds), state.Criteria)
	assert.Empty(t, state.Query)
	repo.AssertExpectations(t)
}
