// Package cart holds the shopping cart state and its quantity-merging rules.
//
// Cart is a value type. Every operation returns a new Cart and never writes
// through to the receiver's backing array, so a Cart handed to a reader stays
// stable while the store moves on.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/five82/shelf/internal/product"
)

// Line pairs a product snapshot with how many of it are in the cart.
type Line struct {
	Product  product.Product
	Quantity int
}

// Subtotal is price times quantity for the line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the ordered list of lines plus the busy flag raised while a
// mutation is in flight. There is at most one line per product id and every
// quantity is at least one.
type Cart struct {
	Items []Line
	Busy  bool
}

// InvalidQuantityError rejects a quantity below one before it reaches the cart.
type InvalidQuantityError struct {
	ProductID int
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %d, got %d", e.ProductID, e.Quantity)
}

// ValidateQuantity is the guard callers run before SetQuantity.
func ValidateQuantity(productID, quantity int) error {
	if quantity < 1 {
		return &InvalidQuantityError{ProductID: productID, Quantity: quantity}
	}
	return nil
}

// StartMutation raises the busy flag for an add in flight.
func (c Cart) StartMutation() Cart {
	c.Busy = true
	return c
}

// Add merges p into the cart: an existing line gains one, otherwise a new
// line with quantity one is appended.
func (c Cart) Add(p product.Product) Cart {
	items := cloneLines(c.Items)
	if i := indexOf(items, p.ID); i >= 0 {
		items[i].Quantity++
	} else {
		items = append(items, Line{Product: p, Quantity: 1})
	}
	c.Items = items
	c.Busy = false
	return c
}

// StartRemoval raises the busy flag for a removal in flight.
func (c Cart) StartRemoval() Cart {
	c.Busy = true
	return c
}

// Remove drops the line for p. Removing an absent product is a no-op apart
// from clearing busy.
func (c Cart) Remove(p product.Product) Cart {
	c.Busy = false
	i := indexOf(c.Items, p.ID)
	if i < 0 {
		return c
	}
	items := make([]Line, 0, len(c.Items)-1)
	items = append(items, c.Items[:i]...)
	items = append(items, c.Items[i+1:]...)
	c.Items = items
	return c
}

// SetQuantity sets the exact quantity on the matching line. It does not clamp;
// run ValidateQuantity first.
func (c Cart) SetQuantity(productID, quantity int) Cart {
	i := indexOf(c.Items, productID)
	if i < 0 {
		return c
	}
	items := cloneLines(c.Items)
	items[i].Quantity = quantity
	c.Items = items
	return c
}

// Clear empties the cart. Busy is left as is.
func (c Cart) Clear() Cart {
	c.Items = nil
	return c
}

// SetBusy overrides the busy flag, used when a mutation is abandoned.
func (c Cart) SetBusy(busy bool) Cart {
	c.Busy = busy
	return c
}

// Total is recomputed on every call.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Items {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Count is the number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// Len is the number of distinct lines.
func (c Cart) Len() int {
	return len(c.Items)
}

// Line returns the line for productID.
func (c Cart) Line(productID int) (Line, bool) {
	if i := indexOf(c.Items, productID); i >= 0 {
		return c.Items[i], true
	}
	return Line{}, false
}

// Clone returns a cart that shares no backing array with c.
func (c Cart) Clone() Cart {
	c.Items = cloneLines(c.Items)
	return c
}

func indexOf(items []Line, productID int) int {
	for i, l := range items {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func cloneLines(items []Line) []Line {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Line, len(items), len(items)+1)
	copy(dup, items)
	return dup
}
