package domain

import (
	"sort"

	catalog "storefront/internal/features/catalog/domain"
)

// Apply returns the products that match c, in display order.
// Top-rated ordering is applied first and price ordering last, both stable,
// so a price sort keeps rating order among equal prices.
func Apply(products []catalog.Product, c Criteria) []catalog.Product {
	result := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			result = append(result, p)
		}
	}

	if c.TopRated {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Rating.Rate > result[j].Rating.Rate
		})
	}

	switch c.PriceSort {
	case SortAsc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price < result[j].Price
		})
	case SortDesc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price > result[j].Price
		})
	}

	return result
}
