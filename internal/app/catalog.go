package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/state"
	"github.com/five82/shelf/internal/storeapi"
)

const tracerName = "github.com/five82/shelf/internal/app"

// CatalogLoader runs the product fetch lifecycle against the store.
type CatalogLoader struct {
	store  *state.Store
	api    storeapi.Catalog
	tracer trace.Tracer
	group  singleflight.Group
}

// LoaderOption configures a CatalogLoader.
type LoaderOption func(*CatalogLoader)

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) LoaderOption {
	return func(l *CatalogLoader) { l.tracer = tp.Tracer(tracerName) }
}

// NewCatalogLoader returns a loader dispatching into store.
func NewCatalogLoader(store *state.Store, api storeapi.Catalog, opts ...LoaderOption) *CatalogLoader {
	l := &CatalogLoader{
		store:  store,
		api:    api,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch triggers a fetch when the catalog is idle and waits for it. A catalog
// that is loading, loaded or failed is left alone; concurrent callers share
// the in-flight request. The returned error is the fetch failure, if any.
func (l *CatalogLoader) Fetch(ctx context.Context) error {
	_, err, _ := l.group.Do("products", func() (any, error) {
		return nil, l.fetch(ctx)
	})
	return err
}

func (l *CatalogLoader) fetch(ctx context.Context) error {
	if l.store.Snapshot().Products.Status != product.StatusIdle {
		return nil
	}
	lg := zctx.From(ctx).Named("catalog")

	ctx, span := l.tracer.Start(ctx, "catalog.fetch")
	defer span.End()

	l.store.Dispatch(state.FetchPending{})
	items, err := l.api.Products(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		l.store.Dispatch(state.FetchRejected{Message: err.Error()})
		lg.Warn("Fetch products failed", zap.Error(err))
		return errors.Wrap(err, "fetch products")
	}
	span.SetAttributes(attribute.Int("catalog.items", len(items)))
	l.store.Dispatch(state.FetchFulfilled{Items: items})
	lg.Debug("Fetched products", zap.Int("count", len(items)))
	return nil
}

// Refresh resets the catalog to idle and fetches again. A fetch already in
// flight is joined instead.
func (l *CatalogLoader) Refresh(ctx context.Context) error {
	l.store.Dispatch(state.ResetCatalog{})
	return l.Fetch(ctx)
}

// Start launches Fetch in the background and returns immediately.
func (l *CatalogLoader) Start(ctx context.Context) {
	go func() { _ = l.Fetch(ctx) }()
}
