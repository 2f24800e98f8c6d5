// Package checkout runs the Shipping, Payment, Confirmation flow. No
// payment is processed: placing an order waits a fixed delay, issues an
// order id and clears the cart.
package checkout

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/cart"
	"github.com/five82/shelf/internal/state"
)

// DefaultDelay is the simulated order placement time.
const DefaultDelay = 2 * time.Second

var (
	// ErrEmptyCart is returned when there is nothing to check out.
	ErrEmptyCart = errors.New("Your cart is empty")
	// ErrWrongStep is returned when a form is submitted out of order.
	ErrWrongStep = errors.New("checkout step out of order")
)

// Step is a checkout stage.
type Step int

const (
	StepShipping Step = iota
	StepPayment
	StepConfirmation
)

// Steps lists the stages in order, for rendering a progress bar.
var Steps = []Step{StepShipping, StepPayment, StepConfirmation}

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "Shipping"
	case StepPayment:
		return "Payment"
	case StepConfirmation:
		return "Confirmation"
	default:
		return "Unknown"
	}
}

// ValidationError reports form input rejected before submission.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Shipping is the delivery form. Phone is optional.
type Shipping struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	ZipCode   string
}

// Validate checks that every required field is filled.
func (s Shipping) Validate() error {
	for _, v := range []string{s.FirstName, s.LastName, s.Email, s.Address, s.City, s.State, s.ZipCode} {
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Message: "Please fill all shipping fields"}
		}
	}
	return nil
}

// Payment is the card form.
type Payment struct {
	CardName   string
	CardNumber string
	ExpiryDate string
	CVV        string
}

// Validate checks that every field is filled, the card number has exactly
// 16 digits and the CVV exactly 3.
func (p Payment) Validate() error {
	for _, v := range []string{p.CardName, p.CardNumber, p.ExpiryDate, p.CVV} {
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Message: "Please fill all payment fields"}
		}
	}
	if len(p.CardNumber) != 16 || Digits(p.CardNumber) != p.CardNumber {
		return &ValidationError{Message: "Card number must be 16 digits"}
	}
	if len(p.CVV) != 3 || Digits(p.CVV) != p.CVV {
		return &ValidationError{Message: "CVV must be 3 digits"}
	}
	return nil
}

// Digits strips everything but ASCII digits. Card inputs pass keystrokes
// through it.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// Order is a placed order.
type Order struct {
	ID       string
	Lines    []cart.Line
	Total    decimal.Decimal
	Shipping Shipping
	PlacedAt time.Time
}

// Flow is one checkout session.
type Flow struct {
	store *state.Store
	delay time.Duration
	newID func() string

	mu       sync.Mutex
	step     Step
	shipping Shipping
	order    *Order
	placing  bool
}

// Option configures a Flow.
type Option func(*Flow)

// WithDelay sets the simulated placement time.
func WithDelay(d time.Duration) Option {
	return func(f *Flow) { f.delay = d }
}

// New starts a checkout over the cart in store. It fails with ErrEmptyCart
// when the cart has no lines.
func New(store *state.Store, opts ...Option) (*Flow, error) {
	if store.Snapshot().Cart.Len() == 0 {
		return nil, ErrEmptyCart
	}
	f := &Flow{
		store: store,
		delay: DefaultDelay,
		newID: func() string { return "ORD-" + strings.ToUpper(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Step is the current stage.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Placing reports whether an order is being placed.
func (f *Flow) Placing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.placing
}

// Order is the placed order, if any.
func (f *Flow) Order() (Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.order == nil {
		return Order{}, false
	}
	return *f.order, true
}

// SubmitShipping validates s and moves to payment.
func (f *Flow) SubmitShipping(s Shipping) error {
	if err := s.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepShipping {
		return ErrWrongStep
	}
	f.shipping = s
	f.step = StepPayment
	return nil
}

// Back returns from payment to shipping.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepPayment && !f.placing {
		f.step = StepShipping
	}
}

// SubmitPayment validates p, waits the placement delay and places the
// order. The cart is cleared once the order exists. If ctx ends during the
// wait nothing is placed and the flow stays on payment.
func (f *Flow) SubmitPayment(ctx context.Context, p Payment) (Order, error) {
	if err := p.Validate(); err != nil {
		return Order{}, err
	}

	f.mu.Lock()
	if f.step != StepPayment || f.placing {
		f.mu.Unlock()
		return Order{}, ErrWrongStep
	}
	f.placing = true
	shipping := f.shipping
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.placing = false
		f.mu.Unlock()
	}()

	timer := time.NewTimer(f.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Order{}, ctx.Err()
	case <-timer.C:
	}

	c := f.store.Snapshot().Cart
	if c.Len() == 0 {
		return Order{}, ErrEmptyCart
	}
	order := Order{
		ID:       f.newID(),
		Lines:    c.Items,
		Total:    c.Total(),
		Shipping: shipping,
		PlacedAt: time.Now(),
	}
	f.store.Dispatch(state.ClearCart{})

	f.mu.Lock()
	f.order = &order
	f.step = StepConfirmation
	f.mu.Unlock()

	zctx.From(ctx).Info("Order placed",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Lines)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}
