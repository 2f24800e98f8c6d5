package product

// Status is the fetch lifecycle state of the catalog.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ParseStatus maps a status name back to a Status. Unknown names map to idle.
func ParseStatus(name string) Status {
	switch name {
	case "loading":
		return StatusLoading
	case "succeeded":
		return StatusSucceeded
	case "failed":
		return StatusFailed
	default:
		return StatusIdle
	}
}

// Catalog holds the remote product list and where its fetch currently stands.
// The zero value is an empty idle catalog.
type Catalog struct {
	Items  []Product
	Status Status
	Error  string
}

// Pending moves an idle catalog to loading. Any other status is left alone so
// a single trigger produces at most one fetch.
func (c Catalog) Pending() Catalog {
	if c.Status != StatusIdle {
		return c
	}
	c.Status = StatusLoading
	c.Error = ""
	return c
}

// Fulfilled replaces the items with a complete fetch result.
func (c Catalog) Fulfilled(items []Product) Catalog {
	if c.Status != StatusLoading {
		return c
	}
	c.Items = cloneProducts(items)
	c.Status = StatusSucceeded
	c.Error = ""
	return c
}

// Rejected records a failed fetch. The message is never empty.
func (c Catalog) Rejected(message string) Catalog {
	if c.Status != StatusLoading {
		return c
	}
	if message == "" {
		message = "failed to fetch products"
	}
	c.Status = StatusFailed
	c.Error = message
	return c
}

// Reset returns the catalog to idle so the next trigger fetches again. Items
// already loaded stay visible until the new result lands.
func (c Catalog) Reset() Catalog {
	if c.Status == StatusLoading {
		return c
	}
	c.Status = StatusIdle
	c.Error = ""
	return c
}

// Find looks a product up by id within the fetched items.
func (c Catalog) Find(id int) (Product, error) {
	for _, p := range c.Items {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, &NotFoundError{ID: id}
}

// Categories returns the distinct categories in first-seen order.
func (c Catalog) Categories() []string {
	seen := make(map[string]struct{}, 8)
	var out []string
	for _, p := range c.Items {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Clone returns a catalog that shares no backing array with c.
func (c Catalog) Clone() Catalog {
	c.Items = cloneProducts(c.Items)
	return c
}

func cloneProducts(items []Product) []Product {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Product, len(items))
	copy(dup, items)
	return dup
}
