package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-backend/pkg/types"
)

// Factory builds a new cart for a user with its standard listeners attached.
type Factory func(userID uuid.UUID) *Cart

// Registry maps each user to their live cart. At most one cart exists per
// user until it is removed.
type Registry struct {
	mu      sync.Mutex
	carts   map[uuid.UUID]*Cart
	factory Factory
}

func NewRegistry(factory Factory) *Registry {
	return &Registry{
		carts:   make(map[uuid.UUID]*Cart),
		factory: factory,
	}
}

// GetOrCreate returns the user's cart, creating it on first access.
func (r *Registry) GetOrCreate(userID uuid.UUID) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.carts[userID]; ok {
		return existing
	}
	created := r.factory(userID)
	r.carts[userID] = created
	return created
}

// Get returns the user's cart if one is live.
func (r *Registry) Get(userID uuid.UUID) (*Cart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.carts[userID]
	return existing, ok
}

// Remove drops the user's cart and closes it. Absent users are ignored.
func (r *Registry) Remove(userID uuid.UUID) {
	r.Take(userID)
}

// Take detaches the user's cart and closes it, so a concurrent add that
// resolved the old cart retries against a fresh one.
func (r *Registry) Take(userID uuid.UUID) (*Cart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.carts[userID]
	if !ok {
		return nil, false
	}
	existing.close(false)
	delete(r.carts, userID)
	return existing, true
}

// TakeFilled is Take for carts holding at least one item. It returns the
// contents at the moment the cart was closed. Empty carts stay registered.
func (r *Registry) TakeFilled(userID uuid.UUID) (*Cart, types.CartSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.carts[userID]
	if !ok {
		return nil, types.CartSnapshot{}, false
	}
	snapshot, ok := existing.close(true)
	if !ok {
		return nil, types.CartSnapshot{}, false
	}
	delete(r.carts, userID)
	return existing, snapshot, true
}

// Restore puts back a cart returned by Take. When a new cart was created for
// the user in the meantime, the restored items are placed in front of it.
func (r *Registry) Restore(ctx context.Context, c *Cart) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	live, ok := r.carts[c.UserID()]
	if !ok {
		c.reopen()
		r.carts[c.UserID()] = c
		return
	}
	if live != c {
		live.absorb(ctx, c)
	}
}

// Len reports the number of live carts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
