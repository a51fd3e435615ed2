package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrProductNotFound is returned when the catalog has no product with the requested id.
var ErrProductNotFound = errors.New("product not found")

// DefaultPriceRange is used when the catalog is empty or unavailable.
var DefaultPriceRange = PriceRange{Min: 0, Max: 1000}

var (
	validate   = validator.New(validator.WithRequiredStructEnabled())
	whitespace = regexp.MustCompile(`\s+`)
)

// Rating holds the aggregated customer rating of a product.
type Rating struct {
	// Rate is the average score.
	Rate float64 `json:"rate"`
	// Count is the number of ratings; must be positive.
	Count int `json:"count" validate:"gt=0"`
}

// Product is a catalog item. It is immutable once fetched.
type Product struct {
	// ID is the positive catalog identifier.
	ID int `json:"id" validate:"gt=0"`
	// Title is the display name of the product.
	Title string `json:"title" validate:"required"`
	// Price is the unit price; must be positive.
	Price float64 `json:"price" validate:"gt=0"`
	// Description is the long-form product text.
	Description string `json:"description"`
	// Category is the human readable category name.
	Category string `json:"category"`
	// Image is the absolute URL of the product picture.
	Image string `json:"image" validate:"required,url"`
	// Rating is the customer rating summary.
	Rating Rating `json:"rating"`
}

// Validate checks the product against the catalog schema.
func (p Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid product %d: %w", p.ID, err)
	}
	return nil
}

// CategorySlug returns the slug of the product's category.
func (p Product) CategorySlug() string {
	return Slugify(p.Category)
}

// Category is a selectable product category.
type Category struct {
	// ID is the slug used in URLs and filters.
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
}

// NewCategory builds a Category from its display name.
func NewCategory(name string) Category {
	return Category{ID: Slugify(name), Name: name}
}

// Slugify lower-cases s and replaces whitespace runs with "-".
func Slugify(s string) string {
	return whitespace.ReplaceAllString(strings.ToLower(s), "-")
}

// PriceRange is the span of prices offered by the catalog.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ComputePriceRange returns the catalog's price span, min rounded down and max rounded up
// to the nearest 10. An empty catalog yields DefaultPriceRange.
func ComputePriceRange(products []Product) PriceRange {
	if len(products) == 0 {
		return DefaultPriceRange
	}

	lo, hi := products[0].Price, products[0].Price
	for _, p := range products[1:] {
		lo = math.Min(lo, p.Price)
		hi = math.Max(hi, p.Price)
	}

	return PriceRange{
		Min: math.Floor(lo/10) * 10,
		Max: math.Ceil(hi/10) * 10,
	}
}
