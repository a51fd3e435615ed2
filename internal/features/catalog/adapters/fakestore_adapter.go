package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/core/config"
	"storefront/internal/core/httpclient"
	"storefront/internal/core/logger"
	"storefront/internal/features/catalog/domain"

	"go.uber.org/zap"
)

// FakeStoreAdapter implements the ProductSource interface using the Fake Store REST API.
type FakeStoreAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// baseURL is the catalog root, without trailing slash.
	baseURL string
}

// NewFakeStoreAdapter creates a new instance of FakeStoreAdapter.
func NewFakeStoreAdapter(cfg config.CatalogConfig) *FakeStoreAdapter {
	return &FakeStoreAdapter{
		client:  httpclient.NewClient("catalog", time.Duration(cfg.Timeout)*time.Second),
		baseURL: strings.TrimRight(cfg.URL, "/"),
	}
}

// ListProducts fetches /products. Records that cannot be decoded into a Product are skipped.
func (a *FakeStoreAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := a.get(ctx, "/products")
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]domain.Product, 0, len(raw))
	for i, item := range raw {
		var p domain.Product
		if err := json.Unmarshal(item, &p); err != nil {
			logger.Get().Warn("Skipping undecodable product",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		products = append(products, p)
	}

	return products, nil
}

// GetProduct fetches /products/{id}. The API answers unknown ids with an empty body.
func (a *FakeStoreAdapter) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	body, err := a.get(ctx, fmt.Sprintf("/products/%d", id))
	if err != nil {
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}

	var p domain.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to decode product %d: %w", id, err)
	}

	return &p, nil
}

// ListCategories fetches /products/categories.
func (a *FakeStoreAdapter) ListCategories(ctx context.Context) ([]string, error) {
	body, err := a.get(ctx, "/products/categories")
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(body, &names); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	return names, nil
}

// HealthCheck verifies that the catalog API is reachable.
func (a *FakeStoreAdapter) HealthCheck(ctx context.Context) error {
	if _, err := a.get(ctx, "/products?limit=1"); err != nil {
		return fmt.Errorf("catalog health check failed: %w", err)
	}
	return nil
}

func (a *FakeStoreAdapter) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
