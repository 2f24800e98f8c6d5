// Package favorites holds the user's saved products.
package favorites

import (
	"strconv"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/five82/shelf/internal/product"
)

const (
	minBloomCapacity = 64
	bloomFPR         = 0.01
)

// Favorites is a set of products keyed by id, kept in the order they were
// saved. Like cart.Cart it is a value type with copy-on-write operations.
type Favorites struct {
	Items []product.Product
	Busy  bool

	index *membership
}

// New builds a Favorites from items, dropping repeated ids.
func New(items ...product.Product) Favorites {
	var f Favorites
	seen := make(map[int]struct{}, len(items))
	for _, p := range items {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		f.Items = append(f.Items, p)
	}
	f.index = newMembership(f.Items)
	return f
}

// StartMutation raises the busy flag for an add in flight.
func (f Favorites) StartMutation() Favorites {
	f.Busy = true
	return f
}

// Add saves p unless a product with the same id is already saved.
func (f Favorites) Add(p product.Product) Favorites {
	f.Busy = false
	if f.Contains(p.ID) {
		return f
	}
	items := make([]product.Product, len(f.Items), len(f.Items)+1)
	copy(items, f.Items)
	f.Items = append(items, p)
	f.index = f.index.with(f.Items, p.ID)
	return f
}

// StartRemoval raises the busy flag for a removal in flight.
func (f Favorites) StartRemoval() Favorites {
	f.Busy = true
	return f
}

// Remove drops the product with p's id if present.
func (f Favorites) Remove(p product.Product) Favorites {
	f.Busy = false
	if !f.Contains(p.ID) {
		return f
	}
	items := make([]product.Product, 0, len(f.Items)-1)
	for _, it := range f.Items {
		if it.ID != p.ID {
			items = append(items, it)
		}
	}
	f.Items = items
	f.index = newMembership(f.Items)
	return f
}

// SetBusy overrides the busy flag.
func (f Favorites) SetBusy(busy bool) Favorites {
	f.Busy = busy
	return f
}

// Contains reports whether a product with id is saved. It is called for every
// visible row, so misses are rejected by the bloom filter before any scan.
func (f Favorites) Contains(id int) bool {
	if f.index != nil && !f.index.mayContain(id) {
		return false
	}
	return containsLinear(f.Items, id)
}

// Len is the number of saved products.
func (f Favorites) Len() int {
	return len(f.Items)
}

// Clone returns favorites sharing no backing array with f.
func (f Favorites) Clone() Favorites {
	if len(f.Items) > 0 {
		items := make([]product.Product, len(f.Items))
		copy(items, f.Items)
		f.Items = items
	}
	return f
}

// membership is an immutable bloom filter over the saved ids. A negative is
// final; a positive is confirmed by scanning Items. Filters cannot forget, so
// a removal rebuilds it.
type membership struct {
	filter   *bloom.BloomFilter
	capacity uint
}

func newMembership(items []product.Product) *membership {
	capacity := max(uint(2*len(items)), minBloomCapacity)
	m := &membership{
		filter:   bloom.NewWithEstimates(capacity, bloomFPR),
		capacity: capacity,
	}
	for _, p := range items {
		m.filter.Add(idKey(p.ID))
	}
	return m
}

// with returns a copy of m that also holds id. items must already include
// it; they are used to rebuild once the filter outgrows its estimate.
func (m *membership) with(items []product.Product, id int) *membership {
	if m == nil || uint(len(items)) > m.capacity {
		return newMembership(items)
	}
	next := &membership{filter: m.filter.Copy(), capacity: m.capacity}
	next.filter.Add(idKey(id))
	return next
}

func (m *membership) mayContain(id int) bool {
	return m.filter.Test(idKey(id))
}

func idKey(id int) []byte {
	return strconv.AppendInt(nil, int64(id), 10)
}

func containsLinear(items []product.Product, id int) bool {
	for _, p := range items {
		if p.ID == id {
			return true
		}
	}
	return false
}
