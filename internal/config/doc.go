// Package config loads the shelf configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shelf/config.toml (default)
//  3. If the config file doesn't exist, start from hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. Apply SHELF_* environment variables on top
//
// # Default Values
//
//   - Config file: ~/.config/shelf/config.toml
//   - API: https://fakestoreapi.com
//   - Data directory: ~/.local/share/shelf (persisted state, session token)
//   - Log file: <data_dir>/shelf.log
//   - Search debounce: 300ms
//   - Mutation delay: 700ms (cart removal: 300ms)
//   - Checkout delay: 2s
//
// # TOML Format
//
//	api_url = "https://fakestoreapi.com"
//	data_dir = "~/.local/share/shelf"
//	log_level = "info"
//	search_debounce = "300ms"
//	mutation_delay = "700ms"
//	removal_delay = "300ms"
//	checkout_delay = "2s"
//	persist_products = false
//	sequenced_mutations = false
//
// # Environment
//
// Every field has an override named after its key with the SHELF_ prefix,
// for example SHELF_API_URL or SHELF_PERSIST_PRODUCTS=true. Empty variables
// are ignored.
//
// # Error Handling
//
// A missing file is not an error. An unreadable file fails Load. Malformed
// TOML, an unparseable duration or an unknown log level fails it with an
// error mentioning "parse config". cmd/shelf exits on any of them.
package config
