package ports

import (
	"context"
	"net/url"

	catalog "storefront/internal/features/catalog/domain"
	"storefront/internal/features/filters/domain"
)

// CriteriaRepository persists filter criteria per shopper session.
type CriteriaRepository interface {
	// Save stores the criteria of a session.
	Save(ctx context.Context, sessionID string, c domain.Criteria) error
	// Get returns the stored criteria, or nil when the session has none.
	Get(ctx context.Context, sessionID string) (*domain.Criteria, error)
	// Delete forgets the criteria of a session.
	Delete(ctx context.Context, sessionID string) error
}

// FilterService is the Primary Port used by HTTP handlers.
type FilterService interface {
	Resolve(ctx context.Context, sessionID string, query url.Values, bounds domain.Bounds) domain.State
	Update(ctx context.Context, sessionID string, patch domain.Patch, bounds domain.Bounds) (domain.State, error)
	Reset(ctx context.Context, sessionID string, bounds domain.Bounds) domain.State
}

// BoundsProvider supplies the current catalog price range.
type BoundsProvider interface {
	PriceRange(ctx context.Context) catalog.PriceRange
}
