package state

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/five82/shelf/internal/filters"
	"github.com/five82/shelf/internal/product"
)

func shirt() product.Product {
	return product.Product{ID: 1, Title: "Red Shirt", Price: decimal.NewFromInt(10), Category: "clothing"}
}

func ring() product.Product {
	return product.Product{ID: 2, Title: "Blue Ring", Price: decimal.NewFromInt(5), Category: "jewelery"}
}

func TestStore_DispatchAndSnapshotClone(t *testing.T) {
	s := New(Default())

	s.Dispatch(AddToCartStart{})
	if !s.Snapshot().Cart.Busy {
		t.Fatalf("cart busy = false after add start")
	}
	next := s.Dispatch(AddToCartSuccess{Product: shirt()})
	if next.Cart.Busy {
		t.Fatalf("cart busy = true after add success")
	}
	if next.Version != 2 {
		t.Fatalf("Version = %d, want 2", next.Version)
	}

	snap := s.Snapshot()
	if len(snap.Cart.Items) != 1 || snap.Cart.Items[0].Quantity != 1 {
		t.Fatalf("cart items = %#v, want one line qty 1", snap.Cart.Items)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Cart.Items[0].Quantity = 99
	if got := s.Snapshot().Cart.Items[0].Quantity; got != 1 {
		t.Fatalf("Snapshot should clone cart; got qty %d want 1", got)
	}
}

func TestStore_ZeroValueUsable(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.Version != 0 || snap.Cart.Len() != 0 {
		t.Fatalf("zero snapshot = %#v", snap)
	}
	s.Dispatch(AddFavoriteSuccess{Product: ring()})
	if !s.Snapshot().Favorites.Contains(2) {
		t.Fatalf("favorite not saved on zero-value store")
	}
}

func TestStore_SubscribersSeeChangesInOrder(t *testing.T) {
	s := New(Default())

	var names []string
	var versions []uint64
	unsubscribe := s.Subscribe(func(c Change) {
		names = append(names, c.Action.Name())
		versions = append(versions, c.Next.Version)
		if c.Next.Version != c.Prev.Version+1 {
			t.Errorf("change %s: prev %d next %d", c.Action.Name(), c.Prev.Version, c.Next.Version)
		}
	})

	s.Dispatch(FetchPending{})
	s.Dispatch(FetchFulfilled{Items: []product.Product{shirt(), ring()}})
	s.Dispatch(SetSearchTerm{Term: "ring"})

	want := []string{"products/fetch.pending", "products/fetch.fulfilled", "filters/search"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], want[i])
		}
		if versions[i] != uint64(i+1) {
			t.Fatalf("versions[%d] = %d, want %d", i, versions[i], i+1)
		}
	}

	unsubscribe()
	unsubscribe()
	s.Dispatch(ClearCart{})
	if len(names) != 3 {
		t.Fatalf("unsubscribed callback still called: %v", names)
	}
}

func TestStore_UnsubscribeKeepsOthers(t *testing.T) {
	s := New(Default())

	var a, b int
	unsubA := s.Subscribe(func(Change) { a++ })
	s.Subscribe(func(Change) { b++ })

	s.Dispatch(ClearCart{})
	unsubA()
	s.Dispatch(ClearCart{})

	if a != 1 || b != 2 {
		t.Fatalf("a=%d b=%d, want 1 and 2", a, b)
	}
}

func TestStore_FetchLifecycle(t *testing.T) {
	tests := []struct {
		name       string
		actions    []Action
		wantStatus product.Status
		wantItems  int
		wantErr    bool
	}{
		{
			name:       "success",
			actions:    []Action{FetchPending{}, FetchFulfilled{Items: []product.Product{shirt(), ring()}}},
			wantStatus: product.StatusSucceeded,
			wantItems:  2,
		},
		{
			name:       "failure",
			actions:    []Action{FetchPending{}, FetchRejected{Message: "Network Error"}},
			wantStatus: product.StatusFailed,
			wantErr:    true,
		},
		{
			name:       "late result ignored",
			actions:    []Action{FetchFulfilled{Items: []product.Product{shirt()}}},
			wantStatus: product.StatusIdle,
		},
		{
			name: "refetch after reset",
			actions: []Action{
				FetchPending{}, FetchFulfilled{Items: []product.Product{shirt()}},
				ResetCatalog{}, FetchPending{}, FetchFulfilled{Items: []product.Product{shirt(), ring()}},
			},
			wantStatus: product.StatusSucceeded,
			wantItems:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Default())
			for _, a := range tt.actions {
				s.Dispatch(a)
			}
			got := s.Snapshot().Products
			if got.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s", got.Status, tt.wantStatus)
			}
			if len(got.Items) != tt.wantItems {
				t.Fatalf("items = %d, want %d", len(got.Items), tt.wantItems)
			}
			if (got.Error != "") != tt.wantErr {
				t.Fatalf("error = %q, wantErr %v", got.Error, tt.wantErr)
			}
		})
	}
}

func TestStore_FiltersDriveVisible(t *testing.T) {
	s := New(Default())
	s.Dispatch(FetchPending{})
	s.Dispatch(FetchFulfilled{Items: []product.Product{shirt(), ring()}})

	s.Dispatch(SetSortBy{SortBy: filters.SortPriceAsc})
	visible := s.Snapshot().Visible()
	if len(visible) != 2 || visible[0].ID != 2 {
		t.Fatalf("visible = %#v, want Blue Ring first", visible)
	}

	s.Dispatch(SetCategory{Category: "clothing"})
	visible = s.Snapshot().Visible()
	if len(visible) != 1 || visible[0].ID != 1 {
		t.Fatalf("visible = %#v, want only Red Shirt", visible)
	}
}

func TestStore_CartActions(t *testing.T) {
	s := New(Default())
	s.Dispatch(AddToCartSuccess{Product: shirt()})
	s.Dispatch(AddToCartSuccess{Product: shirt()})
	s.Dispatch(AddToCartSuccess{Product: ring()})
	s.Dispatch(UpdateQuantity{ProductID: 2, Quantity: 3})

	c := s.Snapshot().Cart
	if c.Count() != 5 {
		t.Fatalf("Count = %d, want 5", c.Count())
	}
	if got := c.Total().StringFixed(2); got != "35.00" {
		t.Fatalf("Total = %s, want 35.00", got)
	}

	s.Dispatch(SetCartBusy{Busy: true})
	s.Dispatch(RemoveFromCartSuccess{Product: shirt()})
	c = s.Snapshot().Cart
	if c.Busy || c.Len() != 1 {
		t.Fatalf("after remove: busy=%v len=%d", c.Busy, c.Len())
	}

	s.Dispatch(SetCartBusy{Busy: true})
	s.Dispatch(ClearCart{})
	c = s.Snapshot().Cart
	if !c.Busy || c.Len() != 0 {
		t.Fatalf("after clear: busy=%v len=%d, want busy kept and empty", c.Busy, c.Len())
	}
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	s := New(Default())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(AddToCartSuccess{Product: shirt()})
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.Version != 50 {
		t.Fatalf("Version = %d, want 50", snap.Version)
	}
	if line, ok := snap.Cart.Line(1); !ok || line.Quantity != 50 {
		t.Fatalf("line = %#v, want qty 50", line)
	}
}
