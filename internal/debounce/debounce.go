// Package debounce coalesces bursts of input into a single trailing update.
//
// A Debouncer is a single slot: every Push supersedes whatever was pending,
// and only the newest Token can Fire. The caller owns the timer (the UI uses
// tea.Tick), so an older timer can fire late without overwriting a newer
// value.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet window applied to search input.
const DefaultDelay = 300 * time.Millisecond

// Token identifies one pushed value.
type Token struct {
	gen uint64
}

// Debouncer holds the latest pending value. The zero value is ready to use
// with the default delay.
type Debouncer[T any] struct {
	Delay time.Duration

	mu      sync.Mutex
	gen     uint64
	pending T
	armed   bool
}

// New returns a debouncer with the given quiet window.
func New[T any](delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{Delay: delay}
}

// Wait is the quiet window in effect.
func (d *Debouncer[T]) Wait() time.Duration {
	if d.Delay <= 0 {
		return DefaultDelay
	}
	return d.Delay
}

// Push records v as the pending value and returns the token that may apply
// it. Earlier tokens become stale.
func (d *Debouncer[T]) Push(v T) Token {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.pending = v
	d.armed = true
	return Token{gen: d.gen}
}

// Fire returns the pending value if t is the newest token and nothing has
// been cancelled or fired since. It disarms the slot.
func (d *Debouncer[T]) Fire(t Token) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	if !d.armed || t.gen != d.gen {
		return zero, false
	}
	d.armed = false
	v := d.pending
	d.pending = zero
	return v, true
}

// Cancel drops the pending value so no outstanding token can fire. Call it
// when the input's view is torn down.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	d.gen++
	d.armed = false
	d.pending = zero
}

// Pending reports whether a value is waiting to fire.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}
