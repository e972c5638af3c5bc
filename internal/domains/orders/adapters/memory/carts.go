package memory

import (
	"context"
	"sync"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

var _ ports.CartReader = (*Carts)(nil)

// Carts is an in-memory cart collaborator for development and tests.
type Carts struct {
	mu    sync.RWMutex
	items map[int64][]ports.CartItem
}

func NewCarts() *Carts {
	return &Carts{items: map[int64][]ports.CartItem{}}
}

// Put replaces the cart content of a customer.
func (c *Carts) Put(customerID int64, items ...ports.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[customerID] = append([]ports.CartItem(nil), items...)
}

func (c *Carts) Items(_ context.Context, customerID int64) ([]ports.CartItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ports.CartItem(nil), c.items[customerID]...), nil
}

func (c *Carts) Clear(_ context.Context, customerID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, customerID)
	return nil
}
