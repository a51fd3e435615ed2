package service

import (
	"context"
	"net/url"

	"storefront/internal/core/logger"
	"storefront/internal/features/filters/domain"
	"storefront/internal/features/filters/ports"

	"go.uber.org/zap"
)

// FilterService resolves and mutates the filter state of a shopper session.
// Persistence failures are logged and never fail a request.
type FilterService struct {
	repo ports.CriteriaRepository
	log  *zap.Logger
}

// NewFilterService creates a new instance of FilterService.
func NewFilterService(repo ports.CriteriaRepository) *FilterService {
	return &FilterService{
		repo: repo,
		log:  logger.Named("filters"),
	}
}

// Resolve returns the effective filters for a request. Filter parameters in the
// query win when they select something other than the defaults; otherwise the
// session's stored criteria apply and stay untouched.
func (s *FilterService) Resolve(ctx context.Context, sessionID string, query url.Values, bounds domain.Bounds) domain.State {
	store := s.load(ctx, sessionID, bounds, nil)

	if domain.HasFilterKeys(query) {
		if decoded := domain.Decode(query, store.Bounds()); !decoded.IsDefault(store.Bounds()) {
			store.Hydrate(decoded)
			s.persist(ctx, sessionID, store.Criteria(), store.Bounds())
		}
	}

	return store.State()
}

// Update applies patch to the session's stored criteria.
func (s *FilterService) Update(ctx context.Context, sessionID string, patch domain.Patch, bounds domain.Bounds) (domain.State, error) {
	sort := domain.SortNone
	if patch.PriceSort != nil {
		parsed, err := domain.ParseSort(*patch.PriceSort)
		if err != nil {
			return domain.State{}, err
		}
		sort = parsed
	}

	dirty := false
	store := s.load(ctx, sessionID, bounds, func(domain.Criteria, domain.Bounds) { dirty = true })

	if patch.SearchQuery != nil {
		store.SetSearchQuery(*patch.SearchQuery)
	}
	if patch.Category != nil {
		store.SetCategory(*patch.Category)
	}
	if patch.ResetPrice {
		store.ResetPriceRange()
	}
	if patch.MinPrice != nil || patch.MaxPrice != nil {
		current := store.Criteria()
		lo, hi := current.MinPrice, current.MaxPrice
		if patch.MinPrice != nil {
			lo = *patch.MinPrice
		}
		if patch.MaxPrice != nil {
			hi = *patch.MaxPrice
		}
		store.SetPriceRange(lo, hi)
	}
	if patch.TopRated != nil {
		store.SetTopRated(*patch.TopRated)
	}
	if patch.PriceSort != nil {
		store.SetPriceSort(sort)
	}

	if dirty {
		s.persist(ctx, sessionID, store.Criteria(), store.Bounds())
	}
	return store.State(), nil
}

// Reset restores default criteria for the session.
func (s *FilterService) Reset(ctx context.Context, sessionID string, bounds domain.Bounds) domain.State {
	store := domain.NewStore(bounds, nil)
	store.ResetAll()
	s.persist(ctx, sessionID, store.Criteria(), store.Bounds())
	return store.State()
}

// load builds a store from persisted criteria. Hydration does not fire onChange.
func (s *FilterService) load(ctx context.Context, sessionID string, bounds domain.Bounds, onChange domain.ChangeFunc) *domain.Store {
	store := domain.NewStore(bounds, onChange)

	saved, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		s.log.Warn("Failed to load stored filters", zap.String("session_id", sessionID), zap.Error(err))
		return store
	}
	if saved != nil {
		store.Hydrate(*saved)
	}
	return store
}

// persist stores non-default criteria and forgets default ones.
func (s *FilterService) persist(ctx context.Context, sessionID string, c domain.Criteria, b domain.Bounds) {
	var err error
	if c.IsDefault(b) {
		err = s.repo.Delete(ctx, sessionID)
	} else {
		err = s.repo.Save(ctx, sessionID, c)
	}

	if err != nil {
		s.log.Warn("Failed to persist filters", zap.String("session_id", sessionID), zap.Error(err))
	}
}
