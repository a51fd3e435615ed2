package domain

import (
	"errors"
	"math"
	"strings"

	catalog "storefront/internal/features/catalog/domain"
)

// ErrInvalidSort is returned when a sort direction is not asc, desc or empty.
var ErrInvalidSort = errors.New("invalid price sort direction")

// SortDirection orders products by price.
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSort maps user input to a SortDirection. "none" and "" clear the sort.
func ParseSort(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	default:
		return SortNone, ErrInvalidSort
	}
}

// Bounds is the selectable price interval, derived from the catalog.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultBounds applies until the catalog price range is known.
var DefaultBounds = Bounds{Min: 0, Max: 1000}

// BoundsFrom converts a catalog price range into filter bounds.
func BoundsFrom(r catalog.PriceRange) Bounds {
	return Bounds{Min: r.Min, Max: r.Max}.normalize()
}

func (b Bounds) normalize() Bounds {
	if b.Min > b.Max {
		b.Min, b.Max = b.Max, b.Min
	}
	return b
}

func (b Bounds) clamp(v float64) float64 {
	return math.Min(math.Max(v, b.Min), b.Max)
}

// Criteria is the full set of product filters a shopper can apply.
type Criteria struct {
	// SearchQuery is matched case-insensitively against title, description and category.
	SearchQuery string `json:"search_query"`
	// Category is a category slug; empty means all categories.
	Category string `json:"category"`
	// MinPrice is the inclusive lower price limit.
	MinPrice float64 `json:"min_price"`
	// MaxPrice is the inclusive upper price limit.
	MaxPrice float64 `json:"max_price"`
	// TopRated orders products by rating, best first.
	TopRated bool `json:"top_rated"`
	// PriceSort orders products by price.
	PriceSort SortDirection `json:"price_sort"`
}

// Defaults returns the criteria that filter nothing within b.
func Defaults(b Bounds) Criteria {
	return Criteria{MinPrice: b.Min, MaxPrice: b.Max}
}

// IsDefault reports whether c filters nothing within b.
func (c Criteria) IsDefault(b Bounds) bool {
	return c == Defaults(b)
}

// Clamp returns c with its price window inside b and min never above max.
func (c Criteria) Clamp(b Bounds) Criteria {
	b = b.normalize()
	c.MinPrice = b.clamp(c.MinPrice)
	c.MaxPrice = b.clamp(c.MaxPrice)
	if c.MinPrice > c.MaxPrice {
		c.MinPrice = c.MaxPrice
	}
	if c.PriceSort != SortAsc && c.PriceSort != SortDesc {
		c.PriceSort = SortNone
	}
	return c
}

// Matches reports whether p passes the category, price and search filters of c.
func (c Criteria) Matches(p catalog.Product) bool {
	if c.Category != "" && p.CategorySlug() != c.Category {
		return false
	}
	if p.Price < c.MinPrice || p.Price > c.MaxPrice {
		return false
	}
	if c.SearchQuery != "" {
		q := strings.ToLower(c.SearchQuery)
		return strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Category), q)
	}
	return true
}
