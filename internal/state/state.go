package state

import (
	"github.com/five82/shelf/internal/cart"
	"github.com/five82/shelf/internal/favorites"
	"github.com/five82/shelf/internal/filters"
	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/selection"
)

// State is the whole storefront state tree.
type State struct {
	Products  product.Catalog
	Cart      cart.Cart
	Favorites favorites.Favorites
	Filters   filters.Filters
}

// Default is the state of a fresh session with nothing persisted.
func Default() State {
	return State{Filters: filters.Default()}
}

// Clone returns a state sharing no slices with s.
func (s State) Clone() State {
	s.Products = s.Products.Clone()
	s.Cart = s.Cart.Clone()
	s.Favorites = s.Favorites.Clone()
	return s
}

// Visible is the product list after search, category and sort are applied.
func (s State) Visible() []product.Product {
	return selection.Select(s.Products.Items, s.Filters)
}
