package state

import (
	"github.com/five82/shelf/internal/filters"
	"github.com/five82/shelf/internal/product"
)

// Action is a pure state transition. Apply receives a private copy of the
// current state and returns the next one.
type Action interface {
	Name() string
	Apply(State) State
}

// Catalog fetch lifecycle.

type FetchPending struct{}

func (FetchPending) Name() string { return "products/fetch.pending" }
func (FetchPending) Apply(s State) State {
	s.Products = s.Products.Pending()
	return s
}

type FetchFulfilled struct {
	Items []product.Product
}

func (FetchFulfilled) Name() string { return "products/fetch.fulfilled" }
func (a FetchFulfilled) Apply(s State) State {
	s.Products = s.Products.Fulfilled(a.Items)
	return s
}

type FetchRejected struct {
	Message string
}

func (FetchRejected) Name() string { return "products/fetch.rejected" }
func (a FetchRejected) Apply(s State) State {
	s.Products = s.Products.Rejected(a.Message)
	return s
}

// ResetCatalog returns the catalog to idle so the next trigger refetches.
type ResetCatalog struct{}

func (ResetCatalog) Name() string { return "products/reset" }
func (ResetCatalog) Apply(s State) State {
	s.Products = s.Products.Reset()
	return s
}

// Cart.

type AddToCartStart struct{}

func (AddToCartStart) Name() string { return "cart/add.start" }
func (AddToCartStart) Apply(s State) State {
	s.Cart = s.Cart.StartMutation()
	return s
}

type AddToCartSuccess struct {
	Product product.Product
}

func (AddToCartSuccess) Name() string { return "cart/add.success" }
func (a AddToCartSuccess) Apply(s State) State {
	s.Cart = s.Cart.Add(a.Product)
	return s
}

type RemoveFromCartStart struct{}

func (RemoveFromCartStart) Name() string { return "cart/remove.start" }
func (RemoveFromCartStart) Apply(s State) State {
	s.Cart = s.Cart.StartRemoval()
	return s
}

type RemoveFromCartSuccess struct {
	Product product.Product
}

func (RemoveFromCartSuccess) Name() string { return "cart/remove.success" }
func (a RemoveFromCartSuccess) Apply(s State) State {
	s.Cart = s.Cart.Remove(a.Product)
	return s
}

// UpdateQuantity sets the exact quantity of a line. Callers validate with
// cart.ValidateQuantity first.
type UpdateQuantity struct {
	ProductID int
	Quantity  int
}

func (UpdateQuantity) Name() string { return "cart/quantity" }
func (a UpdateQuantity) Apply(s State) State {
	s.Cart = s.Cart.SetQuantity(a.ProductID, a.Quantity)
	return s
}

type ClearCart struct{}

func (ClearCart) Name() string { return "cart/clear" }
func (ClearCart) Apply(s State) State {
	s.Cart = s.Cart.Clear()
	return s
}

type SetCartBusy struct {
	Busy bool
}

func (SetCartBusy) Name() string { return "cart/busy" }
func (a SetCartBusy) Apply(s State) State {
	s.Cart = s.Cart.SetBusy(a.Busy)
	return s
}

// Favorites.

type AddFavoriteStart struct{}

func (AddFavoriteStart) Name() string { return "favorites/add.start" }
func (AddFavoriteStart) Apply(s State) State {
	s.Favorites = s.Favorites.StartMutation()
	return s
}

type AddFavoriteSuccess struct {
	Product product.Product
}

func (AddFavoriteSuccess) Name() string { return "favorites/add.success" }
func (a AddFavoriteSuccess) Apply(s State) State {
	s.Favorites = s.Favorites.Add(a.Product)
	return s
}

type RemoveFavoriteStart struct{}

func (RemoveFavoriteStart) Name() string { return "favorites/remove.start" }
func (RemoveFavoriteStart) Apply(s State) State {
	s.Favorites = s.Favorites.StartRemoval()
	return s
}

type RemoveFavoriteSuccess struct {
	Product product.Product
}

func (RemoveFavoriteSuccess) Name() string { return "favorites/remove.success" }
func (a RemoveFavoriteSuccess) Apply(s State) State {
	s.Favorites = s.Favorites.Remove(a.Product)
	return s
}

type SetFavoritesBusy struct {
	Busy bool
}

func (SetFavoritesBusy) Name() string { return "favorites/busy" }
func (a SetFavoritesBusy) Apply(s State) State {
	s.Favorites = s.Favorites.SetBusy(a.Busy)
	return s
}

// Filters.

type SetSearchTerm struct {
	Term string
}

func (SetSearchTerm) Name() string { return "filters/search" }
func (a SetSearchTerm) Apply(s State) State {
	s.Filters = s.Filters.WithSearchTerm(a.Term)
	return s
}

type SetCategory struct {
	Category string
}

func (SetCategory) Name() string { return "filters/category" }
func (a SetCategory) Apply(s State) State {
	s.Filters = s.Filters.WithCategory(a.Category)
	return s
}

type SetSortBy struct {
	SortBy filters.SortBy
}

func (SetSortBy) Name() string { return "filters/sort" }
func (a SetSortBy) Apply(s State) State {
	s.Filters = s.Filters.WithSortBy(a.SortBy)
	return s
}

type SetPriceRange struct {
	Range filters.PriceRange
}

func (SetPriceRange) Name() string { return "filters/price-range" }
func (a SetPriceRange) Apply(s State) State {
	s.Filters = s.Filters.WithPriceRange(a.Range)
	return s
}
