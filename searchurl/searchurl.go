// Package searchurl builds marketplace search URLs from free-text terms.
package searchurl

import (
	"fmt"
	"strings"
)

// DefaultBase is the marketplace search endpoint.
const DefaultBase = "https://lista.mercadolivre.com.br"

// Slug converts a search term into the path segment the marketplace expects:
// trimmed, whitespace runs collapsed to a single hyphen.
func Slug(term string) string {
	return strings.Join(strings.Fields(term), "-")
}

// Build returns the search URL for term. When a positive price window is
// given, the marketplace's price-range path segment is appended so the
// server filters results before we ever parse them.
func Build(base, term string, minPrice, maxPrice float64) string {
	if base == "" {
		base = DefaultBase
	}
	u := strings.TrimRight(base, "/") + "/" + Slug(term)
	if maxPrice > minPrice && maxPrice > 0 {
		u += fmt.Sprintf("_PriceRange_%d-%d", int(minPrice), int(maxPrice))
	}
	return u
}

// Label renders a human-readable description of a price window for status
// messages ("R$100-R$500", or "todos os preços" when unbounded).
func Label(minPrice, maxPrice float64) string {
	if maxPrice <= minPrice || maxPrice <= 0 {
		return "todos os preços"
	}
	return fmt.Sprintf("R$%d-R$%d", int(minPrice), int(maxPrice))
}
