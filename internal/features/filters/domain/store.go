package domain

// ChangeFunc observes every mutation of a Store.
type ChangeFunc func(c Criteria, b Bounds)

// Store holds filter criteria within catalog price bounds.
// Each setter fires the change hook with the resulting state.
type Store struct {
	criteria Criteria
	bounds   Bounds
	onChange ChangeFunc
}

// NewStore returns a Store at default criteria for b. onChange may be nil.
func NewStore(b Bounds, onChange ChangeFunc) *Store {
	b = b.normalize()
	return &Store{
		criteria: Defaults(b),
		bounds:   b,
		onChange: onChange,
	}
}

// Criteria returns the current criteria.
func (s *Store) Criteria() Criteria { return s.criteria }

// Bounds returns the current price bounds.
func (s *Store) Bounds() Bounds { return s.bounds }

// Hydrate replaces the criteria without firing the change hook.
func (s *Store) Hydrate(c Criteria) {
	s.criteria = c.Clamp(s.bounds)
}

func (s *Store) SetSearchQuery(q string) {
	s.criteria.SearchQuery = q
	s.changed()
}

func (s *Store) SetCategory(slug string) {
	s.criteria.Category = slug
	s.changed()
}

// SetPriceRange selects [min, max], clamped to the bounds. A min above max is lowered to max.
func (s *Store) SetPriceRange(min, max float64) {
	s.criteria.MinPrice = min
	s.criteria.MaxPrice = max
	s.criteria = s.criteria.Clamp(s.bounds)
	s.changed()
}

// SetDefaultPriceRange replaces the bounds and resets the selected window to them.
func (s *Store) SetDefaultPriceRange(min, max float64) {
	s.bounds = Bounds{Min: min, Max: max}.normalize()
	s.criteria.MinPrice = s.bounds.Min
	s.criteria.MaxPrice = s.bounds.Max
	s.changed()
}

// ResetPriceRange selects the full bounds again.
func (s *Store) ResetPriceRange() {
	s.criteria.MinPrice = s.bounds.Min
	s.criteria.MaxPrice = s.bounds.Max
	s.changed()
}

func (s *Store) SetTopRated(top bool) {
	s.criteria.TopRated = top
	s.changed()
}

func (s *Store) SetPriceSort(dir SortDirection) {
	if dir != SortAsc && dir != SortDesc {
		dir = SortNone
	}
	s.criteria.PriceSort = dir
	s.changed()
}

// ResetAll restores default criteria.
func (s *Store) ResetAll() {
	s.criteria = Defaults(s.bounds)
	s.changed()
}

// Query returns the canonical query string of the current state.
func (s *Store) Query() string {
	return Encode(s.criteria, s.bounds).Encode()
}

// State returns a snapshot suitable for API responses.
func (s *Store) State() State {
	return State{
		Criteria: s.criteria,
		Bounds:   s.bounds,
		Query:    s.Query(),
	}
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange(s.criteria, s.bounds)
	}
}

// State is the resolved filter state returned to clients.
type State struct {
	Criteria Criteria `json:"criteria"`
	Bounds   Bounds   `json:"bounds"`
	// Query is the canonical, shareable query string; empty when all defaults.
	Query string `json:"query"`
}

// Patch is a partial update of the filter criteria. Nil fields are left unchanged.
type Patch struct {
	SearchQuery *string  `json:"search_query,omitempty"`
	Category    *string  `json:"category,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	TopRated    *bool    `json:"top_rated,omitempty"`
	PriceSort   *string  `json:"price_sort,omitempty"`
	// ResetPrice selects the full price bounds again; applied before MinPrice/MaxPrice.
	ResetPrice bool `json:"reset_price,omitempty"`
}
