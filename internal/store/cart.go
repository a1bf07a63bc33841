package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain"
)

// CartState is a point-in-time copy of the cart
type CartState struct {
	Items      []domain.CartLine `json:"items"`
	IsOpen     bool              `json:"isOpen"`
	TotalItems int               `json:"totalItems"`
	TotalPrice int64             `json:"totalPrice"`
}

// cartSnapshot is the persisted subset of the cart
type cartSnapshot struct {
	Items []domain.CartLine `json:"items"`
}

// Cart holds line items keyed by product id. Only the items are persisted;
// the drawer flag resets on reload.
type Cart struct {
	Observable

	mu        sync.Mutex
	flushMu   sync.Mutex
	items     []domain.CartLine
	isOpen    bool
	persister *Persister
	now       func() time.Time
}

// NewCart creates an empty cart
func NewCart(persister *Persister) *Cart {
	return &Cart{
		items:     []domain.CartLine{},
		persister: persister,
		now:       time.Now,
	}
}

// Hydrate restores persisted items, rebinding products through resolver
func (c *Cart) Hydrate(ctx context.Context, resolver ProductResolver) error {
	var snap cartSnapshot
	found, err := c.persister.load(ctx, CartStorageKey, &snap)
	if err != nil || !found {
		return err
	}

	items := make([]domain.CartLine, 0, len(snap.Items))
	for _, line := range snap.Items {
		line.Product = rebind(resolver, line.Product)
		if line.Product == nil {
			continue
		}
		items = append(items, line)
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()

	c.notify()
	return nil
}

// AddItem adds quantity of product. An existing line for the product is
// incremented instead of duplicated. Quantity is not validated here.
func (c *Cart) AddItem(product *domain.Product, quantity int) {
	c.AddItemWithSpecs(product, quantity, nil)
}

// AddItemWithSpecs is AddItem with the product option choices made on the
// product page. Specs only apply when a new line is created.
func (c *Cart) AddItemWithSpecs(product *domain.Product, quantity int, specs map[string]string) {
	c.mu.Lock()
	if i := c.indexOf(product.ID); i >= 0 {
		c.items[i].Quantity += quantity
	} else {
		c.items = append(c.items, domain.CartLine{
			ID:            fmt.Sprintf("%s-%d", product.ID, c.now().UnixMilli()),
			Product:       product,
			Quantity:      quantity,
			SelectedSpecs: specs,
		})
	}
	c.commit()
}

// RemoveItem deletes the line for productID; unknown ids are ignored
func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	c.removeLocked(productID)
	c.commit()
}

// UpdateQuantity sets the line quantity exactly. A quantity <= 0 removes the line.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	c.mu.Lock()
	if quantity <= 0 {
		c.removeLocked(productID)
	} else if i := c.indexOf(productID); i >= 0 {
		c.items[i].Quantity = quantity
	}
	c.commit()
}

// ClearCart removes every line
func (c *Cart) ClearCart() {
	c.mu.Lock()
	c.items = []domain.CartLine{}
	c.commit()
}

// ToggleCart flips the drawer-open flag. The flag is never persisted.
func (c *Cart) ToggleCart() {
	c.mu.Lock()
	c.isOpen = !c.isOpen
	c.mu.Unlock()

	c.notify()
}

// IsOpen reports whether the cart drawer is open
func (c *Cart) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

// Items returns a copy of the current lines
func (c *Cart) Items() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyItems()
}

// Line returns the line for productID
func (c *Cart) Line(productID string) (domain.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i], true
	}
	return domain.CartLine{}, false
}

// TotalItems is the sum of all line quantities
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalItems(c.items)
}

// TotalPrice is the sum of price * quantity, read from each product now
func (c *Cart) TotalPrice() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalPrice(c.items)
}

// Snapshot returns the full cart state
func (c *Cart) Snapshot() CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CartState{
		Items:      c.copyItems(),
		IsOpen:     c.isOpen,
		TotalItems: totalItems(c.items),
		TotalPrice: totalPrice(c.items),
	}
}

// commit must be called with c.mu held; it releases the lock, flushes and
// notifies. flushMu keeps snapshot writes in mutation order.
func (c *Cart) commit() {
	snap := cartSnapshot{Items: c.copyItems()}
	c.flushMu.Lock()
	c.mu.Unlock()

	c.persister.flush(CartStorageKey, snap)
	c.flushMu.Unlock()
	c.notify()
}

func (c *Cart) indexOf(productID string) int {
	for i, line := range c.items {
		if line.Product != nil && line.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeLocked(productID string) {
	out := c.items[:0:0]
	for _, line := range c.items {
		if line.Product != nil && line.Product.ID == productID {
			continue
		}
		out = append(out, line)
	}
	c.items = out
}

func (c *Cart) copyItems() []domain.CartLine {
	out := make([]domain.CartLine, len(c.items))
	copy(out, c.items)
	return out
}

func totalItems(items []domain.CartLine) int {
	total := 0
	for _, line := range items {
		total += line.Quantity
	}
	return total
}

func totalPrice(items []domain.CartLine) int64 {
	var total int64
	for _, line := range items {
		total += line.Subtotal()
	}
	return total
}
