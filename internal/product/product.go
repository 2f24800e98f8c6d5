package product

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry as served by the store API. Products are treated
// as immutable once fetched; cart lines and favorites hold copies.
type Product struct {
	ID          int
	Title       string
	Price       decimal.Decimal
	Category    string
	Image       string
	Description string
	Rating      *Rating
}

// Rating is the aggregate review score the API attaches to some products.
type Rating struct {
	Rate  float64
	Count int
}

// NotFoundError is returned when a product id is absent from the catalog.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ID)
}

// PriceLabel formats the price the way the storefront displays it.
func (p Product) PriceLabel() string {
	return "$" + p.Price.StringFixed(2)
}
