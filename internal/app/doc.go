// Package app provides the orchestration layer for the shelf application.
//
// # Overview
//
// This package wires together configuration, logging, local storage, the
// state store, the API client and the UI. It serves as the composition root
// where all dependencies are initialized and connected.
//
// # Architecture
//
// Run follows a simple initialization pattern:
//
//  1. Load ~/.config/shelf/config.toml with SHELF_* overrides
//  2. Open the JSON log file and put the logger in the context
//  3. Open local storage and rehydrate the persisted snapshot
//  4. Build the store, API client, mutation simulator and auth service
//  5. Attach the persistence gateway so every change is written through
//  6. Trigger the catalog fetch in the background
//  7. Start the TUI and block until the user exits or the context cancels
//
// # Components
//
//   - app.go: Run, New and the App service bundle
//   - catalog.go: CatalogLoader, the product fetch lifecycle
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read config + env
//	       ├─────> logging.New()          JSON log file
//	       ├─────> persist.Rehydrate()    Initial state
//	       ├─────> state.New()            Shared store
//	       ├─────> persist.Attach()       Write-through subscriber
//	       ├─────> CatalogLoader.Start()  Background fetch
//	       └─────> ui.Run()               Start TUI (blocks)
//
// # Catalog Fetching
//
// CatalogLoader.Fetch only acts on an idle catalog: it dispatches the pending
// action, calls GET /products once and dispatches the fulfilled or rejected
// action. Concurrent triggers share one request through singleflight. A failed
// fetch is not retried; the user refreshes, which resets the catalog to idle
// and fetches again. Each fetch is recorded as an OpenTelemetry span.
//
// # Error Handling
//
// Only configuration, logger and storage failures abort startup. A corrupt
// persisted snapshot is logged and replaced by defaults; API failures surface
// in the catalog status and never stop the UI.
package app
