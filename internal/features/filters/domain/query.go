package domain

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Query string keys of the filter state.
const (
	KeySearch    = "q"
	KeyCategory  = "category"
	KeyMinPrice  = "price[min]"
	KeyMaxPrice  = "price[max]"
	KeyTopRated  = "top_rated"
	KeySort      = "sort"
	keyTopLegacy = "has_top_rate"
)

var filterKeys = []string{KeySearch, KeyCategory, KeyMinPrice, KeyMaxPrice, KeyTopRated, KeySort, keyTopLegacy}

// Encode writes the non-default fields of c as query parameters.
// Default criteria encode to an empty set.
func Encode(c Criteria, b Bounds) url.Values {
	v := url.Values{}
	if c.SearchQuery != "" {
		v.Set(KeySearch, c.SearchQuery)
	}
	if c.Category != "" {
		v.Set(KeyCategory, c.Category)
	}
	if c.MinPrice != b.Min {
		v.Set(KeyMinPrice, formatPrice(c.MinPrice))
	}
	if c.MaxPrice != b.Max {
		v.Set(KeyMaxPrice, formatPrice(c.MaxPrice))
	}
	if c.TopRated {
		v.Set(KeyTopRated, "true")
	}
	if c.PriceSort != SortNone {
		v.Set(KeySort, string(c.PriceSort))
	}
	return v
}

// Decode reads criteria from query parameters. Missing or malformed values keep
// their defaults and the result is clamped to b.
func Decode(v url.Values, b Bounds) Criteria {
	c := Defaults(b)

	c.SearchQuery = v.Get(KeySearch)
	c.Category = v.Get(KeyCategory)

	if p, ok := parsePrice(v.Get(KeyMinPrice)); ok {
		c.MinPrice = p
	}
	if p, ok := parsePrice(v.Get(KeyMaxPrice)); ok {
		c.MaxPrice = p
	}

	top := v.Get(KeyTopRated)
	if top == "" {
		top = v.Get(keyTopLegacy)
	}
	if t, err := strconv.ParseBool(strings.TrimSpace(top)); err == nil {
		c.TopRated = t
	}

	if s, err := ParseSort(v.Get(KeySort)); err == nil {
		c.PriceSort = s
	}

	return c.Clamp(b)
}

// HasFilterKeys reports whether v carries any filter parameter.
func HasFilterKeys(v url.Values) bool {
	for _, k := range filterKeys {
		if _, ok := v[k]; ok {
			return true
		}
	}
	return false
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return p, true
}
