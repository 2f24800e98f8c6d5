package persist

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shelf/internal/localstore"
	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/state"
)

func testProducts() []product.Product {
	return []product.Product{
		{ID: 1, Title: "Red Shirt", Price: decimal.RequireFromString("10.99"), Category: "clothing",
			Rating: &product.Rating{Rate: 4.1, Count: 259}},
		{ID: 2, Title: "Blue Ring", Price: decimal.NewFromInt(5), Category: "jewelery"},
	}
}

func populated() state.State {
	p := testProducts()
	s := state.Default()
	for _, a := range []state.Action{
		state.FetchPending{},
		state.FetchFulfilled{Items: p},
		state.AddToCartSuccess{Product: p[0]},
		state.AddToCartSuccess{Product: p[0]},
		state.AddToCartSuccess{Product: p[1]},
		state.AddFavoriteSuccess{Product: p[1]},
		state.SetSearchTerm{Term: "ring"},
	} {
		s = a.Apply(s)
	}
	return s
}

func newGateway(t *testing.T, w Whitelist) (*Gateway, *localstore.Store) {
	t.Helper()
	ls, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	return NewGateway(ls, w), ls
}

func TestCaptureRestore_RoundTrip(t *testing.T) {
	in := populated()
	w := Whitelist{Cart: true, Favorites: true, Products: true}

	data, err := Encode(Capture(in, w))
	require.NoError(t, err)
	snap, err := Decode(data)
	require.NoError(t, err)
	out, err := Restore(snap, w)
	require.NoError(t, err)

	require.Len(t, out.Cart.Items, 2)
	assert.Equal(t, 2, out.Cart.Items[0].Quantity)
	assert.True(t, out.Cart.Items[0].Product.Price.Equal(decimal.RequireFromString("10.99")))
	assert.Equal(t, 259, out.Cart.Items[0].Product.Rating.Count)
	assert.Equal(t, in.Cart.Total().String(), out.Cart.Total().String())
	assert.True(t, out.Favorites.Contains(2))
	assert.Equal(t, product.StatusSucceeded, out.Products.Status)
	assert.Len(t, out.Products.Items, 2)

	// Filters are session-only.
	assert.Empty(t, out.Filters.SearchTerm)
}

func TestRestore_NotWhitelistedStartsFromDefaults(t *testing.T) {
	in := populated()
	snap := Capture(in, Whitelist{Cart: true, Favorites: true, Products: true})

	out, err := Restore(snap, DefaultWhitelist())
	require.NoError(t, err)
	assert.Equal(t, product.StatusIdle, out.Products.Status)
	assert.Empty(t, out.Products.Items)
	assert.Equal(t, 2, out.Cart.Len())
}

func TestRestore_UnfinishedCatalogComesBackIdle(t *testing.T) {
	s := state.Default()
	s = state.FetchPending{}.Apply(s)
	w := Whitelist{Products: true}

	out, err := Restore(Capture(s, w), w)
	require.NoError(t, err)
	assert.Equal(t, product.StatusIdle, out.Products.Status)
}

func TestRestore_BusyFlagsNotPersisted(t *testing.T) {
	s := populated()
	s = state.SetCartBusy{Busy: true}.Apply(s)
	s = state.SetFavoritesBusy{Busy: true}.Apply(s)

	out, err := Restore(Capture(s, DefaultWhitelist()), DefaultWhitelist())
	require.NoError(t, err)
	assert.False(t, out.Cart.Busy)
	assert.False(t, out.Favorites.Busy)
}

func TestRestore_Rejects(t *testing.T) {
	line := func(id, qty int, price string) LineRecord {
		return LineRecord{Product: ProductRecord{ID: id, Title: "x", Price: price}, Quantity: qty}
	}
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"version", Snapshot{Version: 99}},
		{"zero quantity", Snapshot{Version: Version, Cart: &CartRecord{Items: []LineRecord{line(1, 0, "1")}}}},
		{"bad price", Snapshot{Version: Version, Cart: &CartRecord{Items: []LineRecord{line(1, 1, "abc")}}}},
		{"negative price", Snapshot{Version: Version, Cart: &CartRecord{Items: []LineRecord{line(1, 1, "-1")}}}},
		{"duplicate line", Snapshot{Version: Version, Cart: &CartRecord{Items: []LineRecord{line(1, 1, "1"), line(1, 2, "1")}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Restore(tt.snap, DefaultWhitelist())
			require.Error(t, err)
			assert.Equal(t, 0, out.Cart.Len())
		})
	}
}

func TestGateway_RehydrateMissingUsesDefaults(t *testing.T) {
	g, _ := newGateway(t, DefaultWhitelist())

	s, err := g.Rehydrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, state.Default().Filters, s.Filters)
	assert.Equal(t, 0, s.Cart.Len())
}

func TestGateway_RehydrateCorruptFallsBack(t *testing.T) {
	g, ls := newGateway(t, DefaultWhitelist())
	require.NoError(t, ls.Set(RootKey, []byte("cart = [[[ not toml")))

	s, err := g.Rehydrate(context.Background())
	var corrupt *CorruptSnapshotError
	require.True(t, errors.As(err, &corrupt), "err = %v", err)
	assert.Equal(t, RootKey, corrupt.Key)
	assert.Equal(t, 0, s.Cart.Len())
	assert.Equal(t, "all", s.Filters.Category)
}

func TestGateway_AttachWritesThroughAndRehydrates(t *testing.T) {
	ctx := context.Background()
	g, ls := newGateway(t, DefaultWhitelist())

	store := state.New(state.Default())
	detach := g.Attach(ctx, store)
	p := testProducts()
	store.Dispatch(state.AddToCartStart{})
	store.Dispatch(state.AddToCartSuccess{Product: p[0]})
	store.Dispatch(state.AddFavoriteSuccess{Product: p[1]})
	detach()

	// A second session reads what the first wrote.
	next := NewGateway(ls, DefaultWhitelist())
	s, err := next.Rehydrate(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, s.Cart.Len())
	assert.Equal(t, "Red Shirt", s.Cart.Items[0].Product.Title)
	assert.True(t, s.Favorites.Contains(2))
}

func TestGateway_InvalidUTF8TitleSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	g, ls := newGateway(t, DefaultWhitelist())

	bad := product.Product{ID: 9, Title: "bad\xffname", Price: decimal.NewFromInt(1), Category: "odd\xfe"}
	store := state.New(state.Default())
	detach := g.Attach(ctx, store)
	store.Dispatch(state.AddToCartSuccess{Product: bad})
	store.Dispatch(state.AddFavoriteSuccess{Product: bad})
	detach()

	s, err := NewGateway(ls, DefaultWhitelist()).Rehydrate(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, s.Cart.Len())
	assert.Equal(t, "bad\uFFFDname", s.Cart.Items[0].Product.Title)
	assert.Equal(t, "odd\uFFFD", s.Cart.Items[0].Product.Category)
	assert.True(t, s.Favorites.Contains(9))
}

type countingStorage struct {
	data   map[string][]byte
	writes int
}

func (c *countingStorage) Get(key string) ([]byte, error) {
	v, ok := c.data[key]
	if !ok {
		return nil, localstore.ErrNotFound
	}
	return v, nil
}

func (c *countingStorage) Set(key string, value []byte) error {
	c.writes++
	c.data[key] = value
	return nil
}

func TestGateway_SkipsUnchangedSlices(t *testing.T) {
	storage := &countingStorage{data: map[string][]byte{}}
	g := NewGateway(storage, DefaultWhitelist())
	store := state.New(state.Default())
	g.Attach(context.Background(), store)

	store.Dispatch(state.AddToCartSuccess{Product: testProducts()[0]})
	require.Equal(t, 1, storage.writes)

	// Filter and catalog changes do not touch persisted slices.
	store.Dispatch(state.SetSearchTerm{Term: "shirt"})
	store.Dispatch(state.FetchPending{})
	assert.Equal(t, 1, storage.writes)

	store.Dispatch(state.ClearCart{})
	assert.Equal(t, 2, storage.writes)
}
