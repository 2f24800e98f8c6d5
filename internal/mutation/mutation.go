// Package mutation runs the two-phase cart and favorites updates.
//
// A mutation raises the owning slice's busy flag immediately, waits an
// artificial delay that stands in for a server round trip, then applies the
// change and clears the flag. Nothing is sent anywhere.
package mutation

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/state"
)

const (
	DefaultDelay        = 700 * time.Millisecond
	DefaultRemovalDelay = 300 * time.Millisecond
)

// ErrSuperseded is returned by Complete when sequencing is on and a newer
// mutation for the same product was started after this one.
var ErrSuperseded = errors.New("mutation superseded")

// Kind is the mutation type.
type Kind int

const (
	AddToCart Kind = iota
	RemoveFromCart
	AddFavorite
	RemoveFavorite
)

func (k Kind) String() string {
	switch k {
	case AddToCart:
		return "add-to-cart"
	case RemoveFromCart:
		return "remove-from-cart"
	case AddFavorite:
		return "add-favorite"
	case RemoveFavorite:
		return "remove-favorite"
	default:
		return "unknown"
	}
}

func (k Kind) cart() bool {
	return k == AddToCart || k == RemoveFromCart
}

func (k Kind) start() state.Action {
	switch k {
	case AddToCart:
		return state.AddToCartStart{}
	case RemoveFromCart:
		return state.RemoveFromCartStart{}
	case AddFavorite:
		return state.AddFavoriteStart{}
	default:
		return state.RemoveFavoriteStart{}
	}
}

func (k Kind) success(p product.Product) state.Action {
	switch k {
	case AddToCart:
		return state.AddToCartSuccess{Product: p}
	case RemoveFromCart:
		return state.RemoveFromCartSuccess{Product: p}
	case AddFavorite:
		return state.AddFavoriteSuccess{Product: p}
	default:
		return state.RemoveFavoriteSuccess{Product: p}
	}
}

func (k Kind) idle() state.Action {
	if k.cart() {
		return state.SetCartBusy{Busy: false}
	}
	return state.SetFavoritesBusy{Busy: false}
}

// Mutation is one requested change.
type Mutation struct {
	Kind    Kind
	Product product.Product
}

// Ticket is a started mutation waiting for completion.
type Ticket struct {
	Mutation
	Started time.Time

	seq uint64
}

type seqKey struct {
	cart bool
	id   int
}

// Simulator starts and completes mutations against a store.
type Simulator struct {
	store        *state.Store
	delay        time.Duration
	removalDelay time.Duration
	sequenced    bool
	meter        metric.Meter

	mu   sync.Mutex
	seqs map[seqKey]uint64

	started    metric.Int64Counter
	applied    metric.Int64Counter
	superseded metric.Int64Counter
	cancelled  metric.Int64Counter
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithDelay sets the delay of adds and favorite removals.
func WithDelay(d time.Duration) Option {
	return func(s *Simulator) { s.delay = d }
}

// WithRemovalDelay sets the delay of cart removals.
func WithRemovalDelay(d time.Duration) Option {
	return func(s *Simulator) { s.removalDelay = d }
}

// WithSequencing discards completions that were overtaken by a newer
// mutation of the same product in the same slice. Without it the last
// completion to arrive wins.
func WithSequencing() Option {
	return func(s *Simulator) { s.sequenced = true }
}

// WithMeter records mutation counters on m instead of the global meter.
func WithMeter(m metric.Meter) Option {
	return func(s *Simulator) { s.meter = m }
}

// New returns a simulator dispatching to store.
func New(store *state.Store, opts ...Option) *Simulator {
	s := &Simulator{
		store:        store,
		delay:        DefaultDelay,
		removalDelay: DefaultRemovalDelay,
		seqs:         make(map[seqKey]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.meter == nil {
		s.meter = otel.Meter("github.com/five82/shelf/internal/mutation")
	}
	s.started = counter(s.meter, "shelf.mutation.started")
	s.applied = counter(s.meter, "shelf.mutation.applied")
	s.superseded = counter(s.meter, "shelf.mutation.superseded")
	s.cancelled = counter(s.meter, "shelf.mutation.cancelled")
	return s
}

func counter(m metric.Meter, name string) metric.Int64Counter {
	c, err := m.Int64Counter(name)
	if err != nil {
		c, _ = noop.NewMeterProvider().Meter("").Int64Counter(name)
	}
	return c
}

// Delay is the wait applied to mutations of kind k.
func (s *Simulator) Delay(k Kind) time.Duration {
	if k == RemoveFromCart {
		return s.removalDelay
	}
	return s.delay
}

// Begin raises the busy flag for m and returns its ticket.
func (s *Simulator) Begin(ctx context.Context, m Mutation) Ticket {
	t := Ticket{Mutation: m, Started: time.Now()}
	if s.sequenced {
		s.mu.Lock()
		key := seqKey{cart: m.Kind.cart(), id: m.Product.ID}
		s.seqs[key]++
		t.seq = s.seqs[key]
		s.mu.Unlock()
	}
	s.started.Add(ctx, 1, kindAttr(m.Kind))
	s.store.Dispatch(m.Kind.start())
	return t
}

// Complete waits out the delay and applies the mutation. If ctx ends first
// the busy flag is cleared and ctx.Err is returned.
func (s *Simulator) Complete(ctx context.Context, t Ticket) error {
	lg := zctx.From(ctx)

	timer := time.NewTimer(s.Delay(t.Kind))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.cancelled.Add(context.WithoutCancel(ctx), 1, kindAttr(t.Kind))
		if s.current(t) {
			s.store.Dispatch(t.Kind.idle())
		}
		return ctx.Err()
	case <-timer.C:
	}

	if !s.current(t) {
		s.superseded.Add(ctx, 1, kindAttr(t.Kind))
		lg.Debug("Mutation superseded",
			zap.Stringer("kind", t.Kind),
			zap.Int("product_id", t.Product.ID),
		)
		return ErrSuperseded
	}

	s.store.Dispatch(t.Kind.success(t.Product))
	s.applied.Add(ctx, 1, kindAttr(t.Kind))
	lg.Debug("Mutation applied",
		zap.Stringer("kind", t.Kind),
		zap.Int("product_id", t.Product.ID),
		zap.Duration("elapsed", time.Since(t.Started)),
	)
	return nil
}

// current reports whether t is the newest ticket for its product. Versions
// only grow, so an old ticket never becomes current again.
func (s *Simulator) current(t Ticket) bool {
	if !s.sequenced {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqs[seqKey{cart: t.Kind.cart(), id: t.Product.ID}] == t.seq
}

func kindAttr(k Kind) metric.AddOption {
	return metric.WithAttributes(attribute.String("kind", k.String()))
}
