package persist

import (
	"bytes"
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/localstore"
	"github.com/five82/shelf/internal/state"
)

// Storage is the keyed storage the gateway writes to. *localstore.Store
// implements it.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// CorruptSnapshotError reports a stored snapshot that could not be used.
// It is never fatal: the session starts from defaults instead.
type CorruptSnapshotError struct {
	Key string
	Err error
}

func (e *CorruptSnapshotError) Error() string {
	return "corrupt snapshot " + e.Key + ": " + e.Err.Error()
}

func (e *CorruptSnapshotError) Unwrap() error { return e.Err }

// Gateway persists the whitelisted state slices under RootKey.
type Gateway struct {
	storage   Storage
	whitelist Whitelist

	mu   sync.Mutex
	last []byte
}

// NewGateway returns a gateway over storage.
func NewGateway(storage Storage, w Whitelist) *Gateway {
	return &Gateway{storage: storage, whitelist: w}
}

// Rehydrate loads the stored snapshot. The returned state is always usable:
// a missing snapshot yields defaults with a nil error, and an unreadable one
// yields defaults with a *CorruptSnapshotError.
func (g *Gateway) Rehydrate(ctx context.Context) (state.State, error) {
	lg := zctx.From(ctx)

	data, err := g.storage.Get(RootKey)
	if err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			lg.Debug("No persisted state")
			return state.Default(), nil
		}
		return state.Default(), &CorruptSnapshotError{Key: RootKey, Err: err}
	}

	snap, err := Decode(data)
	if err != nil {
		return state.Default(), &CorruptSnapshotError{Key: RootKey, Err: err}
	}
	restored, err := Restore(snap, g.whitelist)
	if err != nil {
		return state.Default(), &CorruptSnapshotError{Key: RootKey, Err: err}
	}

	if encoded, err := Encode(Capture(restored, g.whitelist)); err == nil {
		g.mu.Lock()
		g.last = encoded
		g.mu.Unlock()
	}
	lg.Debug("Rehydrated state",
		zap.Int("cart_lines", restored.Cart.Len()),
		zap.Int("favorites", restored.Favorites.Len()),
		zap.Int("products", len(restored.Products.Items)),
	)
	return restored, nil
}

// Save writes the whitelisted slices of s when they differ from what was
// last written. It reports whether a write happened.
func (g *Gateway) Save(s state.State) (bool, error) {
	data, err := Encode(Capture(s, g.whitelist))
	if err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last != nil && bytes.Equal(g.last, data) {
		return false, nil
	}
	if err := g.storage.Set(RootKey, data); err != nil {
		return false, errors.Wrap(err, "save snapshot")
	}
	g.last = data
	return true, nil
}

// Attach writes through every store change. Write failures are logged and
// retried on the next change.
func (g *Gateway) Attach(ctx context.Context, store *state.Store) (detach func()) {
	lg := zctx.From(ctx).Named("persist")
	return store.Subscribe(func(c state.Change) {
		wrote, err := g.Save(c.Next.State)
		if err != nil {
			lg.Warn("Persist state", zap.String("action", c.Action.Name()), zap.Error(err))
			return
		}
		if wrote {
			lg.Debug("Persisted state", zap.String("action", c.Action.Name()), zap.Uint64("version", c.Next.Version))
		}
	})
}
