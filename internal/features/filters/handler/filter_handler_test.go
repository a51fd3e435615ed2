package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"storefront/internal/core/session"
	catalog "storefront/internal/features/catalog/domain"
	"storefront/internal/features/filters/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFilterService is a mock implementation of ports.FilterService
type MockFilterService struct {
	mock.Mock
}

func (m *MockFilterService) Resolve(ctx context.Context, sessionID string, query url.Values, bounds domain.Bounds) domain.State {
	args := m.Called(ctx, sessionID, query, bounds)
	return args.Get(0).(domain.State)
}

func (m *MockFilterService) Update(ctx context.Context, sessionID string, patch domain.Patch, bounds domain.Bounds) (domain.State, error) {
	args := m.Called(ctx, sessionID, patch, bounds)
	return args.Get(0).(domain.State), args.Error(1)
}

func (m *MockFilterService) Reset(ctx context.Context, sessionID string, bounds domain.Bounds) domain.State {
	args := m.Called(ctx, sessionID, bounds)
	return args.Get(0).(domain.State)
}

type staticBounds catalog.PriceRange

func (b staticBounds) PriceRange(context.Context) catalog.PriceRange { return catalog.PriceRange(b) }

var bounds = domain.Bounds{Min: 0, Max: 200}

func setupApp(svc *MockFilterService) *fiber.App {
	app := fiber.New()
	app.Use(session.WithID("s1"))
	h := NewFilterHandler(svc, staticBounds{Min: 0, Max: 200})
	app.Get("/filters", h.GetFilters)
	app.Patch("/filters", h.UpdateFilters)
	app.Delete("/filters", h.ResetFilters)
	return app
}

func decodeState(t *testing.T, resp *http.Response) domain.State {
	t.Helper()
	var state domain.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	return state
}

func TestFilterHandler_GetFilters(t *testing.T) {
	svc := new(MockFilterService)
	app := setupApp(svc)

	expectedQuery := url.Values{"q": {"bag"}, "price[min]": {"10"}}
	state := domain.State{Criteria: domain.Criteria{SearchQuery: "bag", MinPrice: 10, MaxPrice: 200}, Bounds: bounds, Query: "price%5Bmin%5D=10&q=bag"}
	svc.On("Resolve", mock.Anything, "s1", expectedQuery, bounds).Return(state).Once()

	req := httptest.NewRequest("GET", "/filters?q=bag&price%5Bmin%5D=10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, state, decodeState(t, resp))
	svc.AssertExpectations(t)
}

func TestFilterHandler_UpdateFilters(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockFilterService)
		app := setupApp(svc)

		state := domain.State{Criteria: domain.Criteria{TopRated: true, MaxPrice: 200}, Bounds: bounds, Query: "top_rated=true"}
		svc.On("Update", mock.Anything, "s1", mock.MatchedBy(func(p domain.Patch) bool {
			return p.TopRated != nil && *p.TopRated
		}), bounds).Return(state, nil).Once()

		req := httptest.NewRequest("PATCH", "/filters", strings.NewReader(`{"top_rated":true}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "top_rated=true", decodeState(t, resp).Query)
	})

	t.Run("InvalidSort", func(t *testing.T) {
		svc := new(MockFilterService)
		app := setupApp(svc)

		svc.On("Update", mock.Anything, "s1", mock.Anything, bounds).Return(domain.State{}, domain.ErrInvalidSort).Once()

		req := httptest.NewRequest("PATCH", "/filters", strings.NewReader(`{"price_sort":"sideways"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		svc := new(MockFilterService)
		app := setupApp(svc)

		req := httptest.NewRequest("PATCH", "/filters", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFilterHandler_ResetFilters(t *testing.T) {
	svc := new(MockFilterService)
	app := setupApp(svc)

	svc.On("Reset", mock.Anything, "s1", bounds).Return(domain.State{Criteria: domain.Defaults(bounds), Bounds: bounds}).Once()

	resp, err := app.Test(httptest.NewRequest("DELETE", "/filters", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeState(t, resp).Query)
}
