package cart

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-backend/internal/products"
	"github.com/nutricart/nutricart-backend/pkg/enums"
	"github.com/nutricart/nutricart-backend/pkg/logger"
	"github.com/nutricart/nutricart-backend/pkg/types"
)

// Summary is a read-only view of the cart contents.
type Summary struct {
	TotalItems int                `json:"total_items"`
	Products   []products.Product `json:"products"`
	Nutrition  NutritionTotals    `json:"nutrition"`
}

// Cart is one user's in-progress product selection. Lookups and listener
// dispatch run outside the lock. A cart taken out of its registry is closed
// and rejects further mutation.
type Cart struct {
	mu        sync.Mutex
	userID    uuid.UUID
	lookup    products.Lookup
	items     []products.Product
	listeners []Listener
	closed    bool
	nutrition *NutritionTracker
	logg      *logger.Logger
	now       func() time.Time
}

// NewCart builds an empty cart with its nutrition tracker attached.
func NewCart(userID uuid.UUID, lookup products.Lookup, logg *logger.Logger) *Cart {
	if logg == nil {
		logg = logger.Nop()
	}
	c := &Cart{
		userID:    userID,
		lookup:    lookup,
		nutrition: NewNutritionTracker(),
		logg:      logg,
		now:       func() time.Time { return time.Now().UTC() },
	}
	c.Attach(c.nutrition)
	return c
}

// UserID returns the owner of the cart.
func (c *Cart) UserID() uuid.UUID {
	return c.userID
}

// Attach registers a listener. Listeners run in attachment order.
func (c *Cart) Attach(listener Listener) {
	if listener == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// Detach unregisters a listener. Unknown listeners are ignored, as are
// listeners whose dynamic type is not comparable.
func (c *Cart) Detach(listener Listener) {
	if listener == nil {
		return
	}
	target := reflect.TypeOf(listener)
	if !target.Comparable() {
		c.logg.Warn(c.logg.WithField(context.Background(), "listener", target.String()), "cart.detach_uncomparable")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, candidate := range c.listeners {
		if reflect.TypeOf(candidate) == target && candidate == listener {
			c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
			return
		}
	}
}

// Add looks the barcode up and appends the product when found. A closed cart
// reports false.
func (c *Cart) Add(ctx context.Context, barcode string) (*products.Product, bool) {
	item, ok := c.find(ctx, barcode)
	if !ok {
		return nil, false
	}
	if !c.appendItem(ctx, item) {
		return nil, false
	}
	return &item, true
}

// find resolves the barcode without touching the cart.
func (c *Cart) find(ctx context.Context, barcode string) (products.Product, bool) {
	product, ok := c.lookup.Lookup(ctx, barcode)
	if !ok || product == nil {
		return products.Product{}, false
	}
	item := *product
	item.Code = barcode
	return item, true
}

// appendItem adds a resolved product and reports false when the cart is closed.
func (c *Cart) appendItem(ctx context.Context, item products.Product) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.items = append(c.items, item)
	listeners := c.listenersLocked()
	c.mu.Unlock()

	notify(ctx, c.logg, listeners, productEvent(enums.CartEventProductAdded, c.userID, item, c.now()))
	return true
}

// Remove deletes the first item matching barcode and reports whether one was removed.
func (c *Cart) Remove(ctx context.Context, barcode string) bool {
	removed, _ := c.removeItem(ctx, barcode)
	return removed
}

func (c *Cart) removeItem(ctx context.Context, barcode string) (removed bool, open bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, false
	}
	index := -1
	for i, item := range c.items {
		if item.Code == barcode {
			index = i
			break
		}
	}
	if index < 0 {
		c.mu.Unlock()
		return false, true
	}
	item := c.items[index]
	c.items = append(c.items[:index:index], c.items[index+1:]...)
	listeners := c.listenersLocked()
	c.mu.Unlock()

	notify(ctx, c.logg, listeners, productEvent(enums.CartEventProductRemoved, c.userID, item, c.now()))
	return true, true
}

// Clear empties the cart. It always succeeds.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	c.items = nil
	listeners := c.listenersLocked()
	c.mu.Unlock()

	notify(ctx, c.logg, listeners, deletedEvent(c.userID, c.now()))
}

// List returns a snapshot of the cart contents.
func (c *Cart) List() Summary {
	c.mu.Lock()
	items := c.itemsLocked()
	c.mu.Unlock()

	return Summary{
		TotalItems: len(items),
		Products:   items,
		Nutrition:  c.nutrition.Totals(),
	}
}

// Len reports the number of items in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Closed reports whether the cart was taken out of its registry.
func (c *Cart) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Snapshot freezes the current contents for persistence.
func (c *Cart) Snapshot() types.CartSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotOf(c.items)
}

// close marks the cart closed. With requireItems an empty cart is left open
// and close reports false. Callers hold the registry lock.
func (c *Cart) close(requireItems bool) (types.CartSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if requireItems && len(c.items) == 0 {
		return types.CartSnapshot{}, false
	}
	c.closed = true
	return snapshotOf(c.items), true
}

func (c *Cart) reopen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = false
}

// absorb puts the items of a closed cart in front of this cart's items. Only
// the nutrition tracker is told; other listeners already saw those adds.
func (c *Cart) absorb(ctx context.Context, from *Cart) {
	from.mu.Lock()
	moved := from.itemsLocked()
	from.mu.Unlock()
	if len(moved) == 0 {
		return
	}

	c.mu.Lock()
	c.items = append(moved, c.items...)
	c.mu.Unlock()

	at := c.now()
	for _, item := range moved {
		_ = c.nutrition.HandleCartEvent(ctx, productEvent(enums.CartEventProductAdded, c.userID, item, at))
	}
}

func (c *Cart) itemsLocked() []products.Product {
	items := make([]products.Product, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) listenersLocked() []Listener {
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	return listeners
}

func snapshotOf(items []products.Product) types.CartSnapshot {
	snapshot := types.CartSnapshot{
		TotalItems: len(items),
		Products:   make([]types.SnapshotProduct, 0, len(items)),
	}
	for _, item := range items {
		snapshot.Products = append(snapshot.Products, types.SnapshotProduct{
			Code:       item.Code,
			Name:       item.Name,
			Nutriments: item.Nutriments,
		})
	}
	return snapshot
}
