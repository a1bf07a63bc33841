package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain"
)

// WishlistState is a point-in-time copy of the wishlist
type WishlistState struct {
	Items []domain.WishlistEntry `json:"items"`
}

// Wishlist is a set of favorited products keyed by product id
type Wishlist struct {
	Observable

	mu        sync.Mutex
	flushMu   sync.Mutex
	items     []domain.WishlistEntry
	persister *Persister
	now       func() time.Time
}

// NewWishlist creates an empty wishlist
func NewWishlist(persister *Persister) *Wishlist {
	return &Wishlist{
		items:     []domain.WishlistEntry{},
		persister: persister,
		now:       time.Now,
	}
}

// Hydrate restores persisted entries, rebinding products through resolver
func (w *Wishlist) Hydrate(ctx context.Context, resolver ProductResolver) error {
	var snap WishlistState
	found, err := w.persister.load(ctx, WishlistStorageKey, &snap)
	if err != nil || !found {
		return err
	}

	items := make([]domain.WishlistEntry, 0, len(snap.Items))
	for _, entry := range snap.Items {
		entry.Product = rebind(resolver, entry.Product)
		if entry.Product == nil {
			continue
		}
		items = append(items, entry)
	}

	w.mu.Lock()
	w.items = items
	w.mu.Unlock()

	w.notify()
	return nil
}

// AddItem favorites product. Adding a product already present changes nothing.
func (w *Wishlist) AddItem(product *domain.Product) {
	w.mu.Lock()
	if w.indexOf(product.ID) >= 0 {
		w.mu.Unlock()
		return
	}

	now := w.now()
	w.items = append(w.items, domain.WishlistEntry{
		ID:      fmt.Sprintf("%s-%d", product.ID, now.UnixMilli()),
		Product: product,
		AddedAt: now.UTC(),
	})
	w.commit()
}

// RemoveItem drops productID from the wishlist; unknown ids are ignored
func (w *Wishlist) RemoveItem(productID string) {
	w.mu.Lock()
	i := w.indexOf(productID)
	if i < 0 {
		w.mu.Unlock()
		return
	}

	w.items = append(w.items[:i:i], w.items[i+1:]...)
	w.commit()
}

// Toggle adds product when absent and removes it when present. It reports
// whether the product is in the wishlist afterwards.
func (w *Wishlist) Toggle(product *domain.Product) bool {
	if w.IsInWishlist(product.ID) {
		w.RemoveItem(product.ID)
		return false
	}
	w.AddItem(product)
	return true
}

// IsInWishlist reports whether productID is favorited
func (w *Wishlist) IsInWishlist(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexOf(productID) >= 0
}

// Items returns a copy of the current entries
func (w *Wishlist) Items() []domain.WishlistEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.copyItems()
}

// Snapshot returns the full wishlist state
func (w *Wishlist) Snapshot() WishlistState {
	return WishlistState{Items: w.Items()}
}

func (w *Wishlist) commit() {
	snap := WishlistState{Items: w.copyItems()}
	w.flushMu.Lock()
	w.mu.Unlock()

	w.persister.flush(WishlistStorageKey, snap)
	w.flushMu.Unlock()
	w.notify()
}

func (w *Wishlist) indexOf(productID string) int {
	for i, entry := range w.items {
		if entry.Product != nil && entry.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (w *Wishlist) copyItems() []domain.WishlistEntry {
	out := make([]domain.WishlistEntry, len(w.items))
	copy(out, w.items)
	return out
}
