// Package selection derives the visible product list from the catalog and the
// active filters. It keeps no state; callers recompute on every change.
package selection

import (
	"slices"
	"strings"

	"github.com/five82/shelf/internal/filters"
	"github.com/five82/shelf/internal/product"
)

// Select keeps the products whose title contains the search term
// (case-insensitive) and whose category matches, then orders them by price
// when a price sort is active. Ties keep catalog order.
func Select(items []product.Product, f filters.Filters) []product.Product {
	term := strings.ToLower(f.SearchTerm)

	out := make([]product.Product, 0, len(items))
	for _, p := range items {
		if term != "" && !strings.Contains(strings.ToLower(p.Title), term) {
			continue
		}
		if !f.AllCategories() && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}

	switch f.SortBy {
	case filters.SortPriceAsc:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case filters.SortPriceDesc:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return b.Price.Cmp(a.Price)
		})
	}
	return out
}
