// Package persist moves the durable slices of the state tree to and from
// local storage.
//
// Capture and Restore are the pure boundary between state.State and the
// on-disk Snapshot. Gateway adds storage, change detection and the store
// subscription on top.
package persist

import (
	"strings"

	"github.com/go-faster/errors"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/five82/shelf/internal/cart"
	"github.com/five82/shelf/internal/favorites"
	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/state"
)

// RootKey is the storage key of the snapshot.
const RootKey = "persist:root"

// Version is the snapshot layout written by this build. Snapshots with any
// other version are discarded.
const Version = 1

// Whitelist selects the state slices that survive a restart. Filters are
// never persisted.
type Whitelist struct {
	Cart      bool
	Favorites bool
	Products  bool
}

// DefaultWhitelist persists the cart and favorites.
func DefaultWhitelist() Whitelist {
	return Whitelist{Cart: true, Favorites: true}
}

// Snapshot is the persisted document. Busy flags are not stored; a
// mutation in flight at exit is simply lost.
type Snapshot struct {
	Version   int              `toml:"version"`
	Cart      *CartRecord      `toml:"cart,omitempty"`
	Favorites *FavoritesRecord `toml:"favorites,omitempty"`
	Products  *ProductsRecord  `toml:"products,omitempty"`
}

type CartRecord struct {
	Items []LineRecord `toml:"items"`
}

type LineRecord struct {
	Product  ProductRecord `toml:"product"`
	Quantity int           `toml:"quantity"`
}

type FavoritesRecord struct {
	Items []ProductRecord `toml:"items"`
}

type ProductsRecord struct {
	Status string          `toml:"status"`
	Items  []ProductRecord `toml:"items"`
}

// ProductRecord stores the price as a decimal string so it survives the
// round trip exactly.
type ProductRecord struct {
	ID          int           `toml:"id"`
	Title       string        `toml:"title"`
	Price       string        `toml:"price"`
	Category    string        `toml:"category"`
	Image       string        `toml:"image,omitempty"`
	Description string        `toml:"description,omitempty"`
	Rating      *RatingRecord `toml:"rating,omitempty"`
}

type RatingRecord struct {
	Rate  float64 `toml:"rate"`
	Count int     `toml:"count"`
}

// Capture extracts the whitelisted slices of s.
func Capture(s state.State, w Whitelist) Snapshot {
	snap := Snapshot{Version: Version}
	if w.Cart {
		rec := &CartRecord{Items: make([]LineRecord, 0, len(s.Cart.Items))}
		for _, line := range s.Cart.Items {
			rec.Items = append(rec.Items, LineRecord{Product: productRecord(line.Product), Quantity: line.Quantity})
		}
		snap.Cart = rec
	}
	if w.Favorites {
		snap.Favorites = &FavoritesRecord{Items: productRecords(s.Favorites.Items)}
	}
	if w.Products {
		snap.Products = &ProductsRecord{
			Status: s.Products.Status.String(),
			Items:  productRecords(s.Products.Items),
		}
	}
	return snap
}

// Restore builds a state from snap. Slices that are not whitelisted or not
// present start from their defaults. A catalog is restored only if it had
// finished loading; anything else comes back idle so it is fetched again.
func Restore(snap Snapshot, w Whitelist) (state.State, error) {
	s := state.Default()
	if snap.Version != Version {
		return s, errors.Errorf("unsupported snapshot version %d", snap.Version)
	}

	if w.Cart && snap.Cart != nil {
		c := cart.Cart{}
		seen := make(map[int]struct{}, len(snap.Cart.Items))
		for _, rec := range snap.Cart.Items {
			p, err := rec.Product.product()
			if err != nil {
				return state.Default(), errors.Wrap(err, "cart")
			}
			if err := cart.ValidateQuantity(p.ID, rec.Quantity); err != nil {
				return state.Default(), errors.Wrap(err, "cart")
			}
			if _, dup := seen[p.ID]; dup {
				return state.Default(), errors.Errorf("cart: duplicate line for product %d", p.ID)
			}
			seen[p.ID] = struct{}{}
			c.Items = append(c.Items, cart.Line{Product: p, Quantity: rec.Quantity})
		}
		s.Cart = c
	}

	if w.Favorites && snap.Favorites != nil {
		items, err := products(snap.Favorites.Items)
		if err != nil {
			return state.Default(), errors.Wrap(err, "favorites")
		}
		s.Favorites = favorites.New(items...)
	}

	if w.Products && snap.Products != nil &&
		product.ParseStatus(snap.Products.Status) == product.StatusSucceeded {
		items, err := products(snap.Products.Items)
		if err != nil {
			return state.Default(), errors.Wrap(err, "products")
		}
		s.Products = product.Catalog{Items: items, Status: product.StatusSucceeded}
	}

	return s, nil
}

// Encode renders snap as TOML.
func Encode(snap Snapshot) ([]byte, error) {
	data, err := toml.Marshal(snap)
	if err != nil {
		return nil, errors.Wrap(err, "marshal snapshot")
	}
	return data, nil
}

// Decode parses a TOML snapshot.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := toml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, errors.Wrap(err, "unmarshal snapshot")
	}
	return snap, nil
}

func productRecord(p product.Product) ProductRecord {
	rec := ProductRecord{
		ID:          p.ID,
		Title:       validText(p.Title),
		Price:       p.Price.String(),
		Category:    validText(p.Category),
		Image:       validText(p.Image),
		Description: validText(p.Description),
	}
	if p.Rating != nil {
		rec.Rating = &RatingRecord{Rate: p.Rating.Rate, Count: p.Rating.Count}
	}
	return rec
}

// validText replaces invalid UTF-8 so Encode never writes a file Decode
// rejects.
func validText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func productRecords(items []product.Product) []ProductRecord {
	out := make([]ProductRecord, 0, len(items))
	for _, p := range items {
		out = append(out, productRecord(p))
	}
	return out
}

func (r ProductRecord) product() (product.Product, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return product.Product{}, errors.Wrapf(err, "product %d price", r.ID)
	}
	if price.IsNegative() {
		return product.Product{}, errors.Errorf("product %d: negative price %s", r.ID, r.Price)
	}
	p := product.Product{
		ID:          r.ID,
		Title:       r.Title,
		Price:       price,
		Category:    r.Category,
		Image:       r.Image,
		Description: r.Description,
	}
	if r.Rating != nil {
		p.Rating = &product.Rating{Rate: r.Rating.Rate, Count: r.Rating.Count}
	}
	return p, nil
}

func products(recs []ProductRecord) ([]product.Product, error) {
	out := make([]product.Product, 0, len(recs))
	for _, rec := range recs {
		p, err := rec.product()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
