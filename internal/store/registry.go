package store

import (
	"sync"
)

// Registry hands out one Store per user so the HTTP layer stays stateless
// between requests. Stores are created lazily and dropped on logout.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// ForUser returns the store for a user, creating it on first use
func (r *Registry) ForUser(uid string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[uid]
	if !ok {
		s = New()
		r.stores[uid] = s
	}
	return s
}

// Drop discards a user's store
func (r *Registry) Drop(uid string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.stores, uid)
}
