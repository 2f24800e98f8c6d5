// Package filters holds the product list's search, category and sort settings.
package filters

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// CategoryAll matches every category.
const CategoryAll = "all"

// SortBy selects the price ordering of the product list.
type SortBy string

const (
	SortNone      SortBy = "none"
	SortPriceAsc  SortBy = "price-asc"
	SortPriceDesc SortBy = "price-desc"
)

var sortOrder = []SortBy{SortNone, SortPriceAsc, SortPriceDesc}

// ParseSortBy validates a sort name.
func ParseSortBy(name string) (SortBy, error) {
	for _, s := range sortOrder {
		if string(s) == name {
			return s, nil
		}
	}
	return SortNone, errors.Errorf("unknown sort order %q", name)
}

// Next cycles none → price-asc → price-desc → none.
func (s SortBy) Next() SortBy {
	for i, v := range sortOrder {
		if v == s {
			return sortOrder[(i+1)%len(sortOrder)]
		}
	}
	return SortNone
}

// Label is the human-readable name shown in the sort picker.
func (s SortBy) Label() string {
	switch s {
	case SortPriceAsc:
		return "Price: Low to High"
	case SortPriceDesc:
		return "Price: High to Low"
	default:
		return "None"
	}
}

// PriceRange is carried with the filters but not applied by the product list.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Filters is the product list query.
type Filters struct {
	SearchTerm string
	Category   string
	SortBy     SortBy
	PriceRange PriceRange
}

// Default is the filter set the storefront starts with.
func Default() Filters {
	return Filters{
		Category: CategoryAll,
		SortBy:   SortNone,
		PriceRange: PriceRange{
			Min: decimal.Zero,
			Max: decimal.NewFromInt(1000),
		},
	}
}

func (f Filters) WithSearchTerm(term string) Filters {
	f.SearchTerm = term
	return f
}

func (f Filters) WithCategory(category string) Filters {
	f.Category = category
	return f
}

func (f Filters) WithSortBy(s SortBy) Filters {
	f.SortBy = s
	return f
}

func (f Filters) WithPriceRange(r PriceRange) Filters {
	f.PriceRange = r
	return f
}

// AllCategories reports whether the category filter is off. An unset
// category behaves like "all".
func (f Filters) AllCategories() bool {
	return f.Category == "" || f.Category == CategoryAll
}
