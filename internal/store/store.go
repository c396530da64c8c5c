// Package store holds the application state: session, shopping cart, and
// product cache. Each slice is mutated only through declared actions applied
// by pure reducers; dispatches are serialized so there is a single writer.
package store

import (
	"sync"

	"buyzo/internal/domain"
)

// Action is a declared state transition. Every action is routed through all
// three reducers; each reducer ignores actions that are not its own.
type Action interface {
	action()
}

// State is a snapshot of all three slices
type State struct {
	Session  SessionState
	Cart     CartState
	Products ProductState
}

// Store is an explicit, injectable state container. It is passed to the
// components that need it rather than held as a package-level singleton.
type Store struct {
	mu    sync.Mutex
	state State
}

// New creates a Store with all slices at their initial state
func New() *Store {
	return &Store{
		state: State{
			Session:  initialSessionState(),
			Cart:     initialCartState(),
			Products: initialProductState(),
		},
	}
}

// Dispatch applies an action to all slices. Concurrent dispatches are
// serialized; each runs to completion before the next begins.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Session = reduceSession(s.state.Session, a)
	s.state.Cart = reduceCart(s.state.Cart, a)
	s.state.Products = reduceProducts(s.state.Products, a)
}

// State returns a snapshot of the current state. Slices are copied so the
// caller cannot mutate the store through the snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state
	snapshot.Cart.Items = append([]CartItem(nil), s.state.Cart.Items...)
	snapshot.Products.Products = append([]domain.Product(nil), s.state.Products.Products...)
	snapshot.Products.Featured = append([]domain.Product(nil), s.state.Products.Featured...)
	return snapshot
}
