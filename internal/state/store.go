package state

import (
	"sync"
	"time"
)

// Snapshot is an immutable view of the state at one version.
type Snapshot struct {
	State
	Version   uint64
	UpdatedAt time.Time
}

// Change is delivered to subscribers after every dispatch.
type Change struct {
	Action Action
	Prev   Snapshot
	Next   Snapshot
}

type subscriber struct {
	id int
	fn func(Change)
}

// Store owns the state tree. Every transition goes through Dispatch, which
// applies one action at a time and then notifies subscribers in the order
// they subscribed. The zero value holds the zero State; use New for a
// session store.
type Store struct {
	// dispatchMu serialises apply+notify so subscribers see changes in
	// dispatch order. mu guards the fields below for readers.
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	state     State
	version   uint64
	updatedAt time.Time
	subs      []subscriber
	nextSub   int
}

// New returns a store seeded with initial.
func New(initial State) *Store {
	return &Store{state: initial.Clone(), updatedAt: time.Now()}
}

// Dispatch applies a to the current state and notifies subscribers before
// returning. Subscribers run on the dispatching goroutine and must not call
// Dispatch themselves; hand work off to another goroutine instead.
func (s *Store) Dispatch(a Action) Snapshot {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.snapshotLocked()
	s.state = a.Apply(s.state.Clone())
	s.version++
	s.updatedAt = time.Now()
	next := s.snapshotLocked()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	change := Change{Action: a, Prev: prev, Next: next}
	for _, sub := range subs {
		sub.fn(change)
	}
	return next
}

// Subscribe registers fn for every subsequent change and returns a function
// that removes it. Calling the returned function more than once is harmless.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		State:     s.state.Clone(),
		Version:   s.version,
		UpdatedAt: s.updatedAt,
	}
}
