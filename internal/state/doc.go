// Package state holds the storefront state tree and the store that owns it.
//
// # Overview
//
// The state tree has four slices:
//
//   - Products: the catalog and its fetch lifecycle (product.Catalog)
//   - Cart: lines and the busy flag (cart.Cart)
//   - Favorites: saved products and the busy flag (favorites.Favorites)
//   - Filters: search term, category, sort and price range (filters.Filters)
//
// Every slice is a value type whose methods return a new value, so an
// action is a plain function from one State to the next.
//
// # Architecture
//
//	Producers:                     Store:                 Subscribers:
//	┌──────────────────┐          ┌───────────────┐      ┌──────────────────┐
//	│ UI key handlers  │          │               │      │ persist.Gateway  │
//	│ mutation.Sim     │─Dispatch→│ Apply(clone)  │─────→│ UI activity chan │
//	│ CatalogLoader    │          │ version++     │      │ loggers          │
//	│ checkout.Flow    │          │               │      │                  │
//	└──────────────────┘          └───────────────┘      └──────────────────┘
//	                                     ↑
//	                               Snapshot() (readers)
//
// The store is created once by the composition root and handed to every
// component that reads or writes state. There is no package-level store.
//
// # Concurrency Model
//
// Dispatch holds an exclusive lock for the whole apply-and-notify cycle, so
// transitions are applied one at a time and subscribers observe them in the
// same order. Snapshot takes only a read lock and never waits on a slow
// subscriber's work beyond the copy itself.
//
// Subscribers are called synchronously on the dispatching goroutine. They
// must return quickly and must not call Dispatch; a subscriber that needs to
// react with another action hands it to a goroutine. The UI uses a buffered
// channel for this.
//
// # Copying
//
// Apply receives a private clone of the current state and Snapshot returns a
// clone of the stored one. Callers may keep or modify a Snapshot freely.
//
// # Usage Example
//
//	store := state.New(state.Default())
//	unsubscribe := store.Subscribe(func(c state.Change) {
//		log.Debug("state changed", zap.String("action", c.Action.Name()))
//	})
//	defer unsubscribe()
//
//	store.Dispatch(state.AddToCartStart{})
//	store.Dispatch(state.AddToCartSuccess{Product: p})
//
//	snap := store.Snapshot()
//	fmt.Println(snap.Cart.Total())
//
// # Versions
//
// Each dispatch increments Snapshot.Version by one, including dispatches
// whose action left the state unchanged (for example a fetch result that
// arrives outside the loading status). Subscribers that only care about
// real changes compare the slices they own.
package state
