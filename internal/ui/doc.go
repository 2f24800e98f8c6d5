// Package ui provides the terminal storefront for the shelf application.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model is a value type; every handler takes
// a copy, changes it and returns it together with the commands to run. Work
// that blocks (API calls, simulated mutation delays, log reads) runs inside
// tea.Cmd closures and reports back with a message.
//
// The state.Store is the single source of truth for the catalog, cart,
// favorites and filters. The model subscribes to it with a one-slot channel;
// a change wakes waitForChange, the model reloads its snapshot and re-arms
// the wait. Bursts of dispatches collapse into one redraw.
//
// # Package Structure
//
//   - app.go: Model, view routing, global keys and Run
//   - header.go: Status bar and command hints
//   - products.go: Catalog list, filters and debounced search
//   - detail.go: Single product view with its own fetch fallback
//   - favorites.go, cart.go: Saved products and the shopping cart
//   - checkout.go: Shipping, payment and confirmation steps
//   - auth.go: Sign in, registration and password reset forms
//   - activity.go: Tail of the application log
//   - form.go, layout.go, strings.go: Shared rendering helpers
//   - theme.go, style_helpers.go: Color themes and background-safe styling
//   - keys.go, help.go: Key bindings and the help overlay
//
// # Views
//
//   - Products: Filtered, sorted catalog with search, category and sort
//   - Detail: Description, rating and actions for one product
//   - Favorites: Saved products in the order they were saved
//   - Cart: Lines with quantities, subtotals and the total
//   - Checkout: Three-step flow ending in an order confirmation
//   - Activity: Structured log entries, refreshed while visible
//
// # Mutations
//
// Adding to and removing from the cart or favorites goes through
// mutation.Simulator. Begin runs on the UI goroutine so the busy flag is
// visible immediately; Complete runs in a command after the configured
// delay. A result superseded by a newer mutation is dropped quietly.
//
// # Search
//
// Keystrokes in the search box push the term into a debounce.Debouncer and
// schedule a tick. Only the tick holding the newest token dispatches the
// search term, so typing a word filters once. Leaving the products view
// cancels a pending search.
//
// # Key Bindings
//
//   - 1-4 or Tab: Products, Favorites, Cart, Activity
//   - /: Search products
//   - c / s: Cycle category / sort order
//   - a / f: Add to cart / toggle favorite
//   - + / - / x: Change quantity / remove from cart
//   - o: Checkout
//   - T: Cycle theme
//   - L: Sign out
//   - ?: Help
//   - q or Ctrl+C: Quit
package ui
