package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Store names reported to Stores.Subscribe listeners
const (
	NameCart          = "cart"
	NameWishlist      = "wishlist"
	NameUser          = "user"
	NameNotifications = "notifications"
	NameFilters       = "filters"
)

// State is a copy of every store in a session
type State struct {
	Cart          CartState          `json:"cart"`
	Wishlist      WishlistState      `json:"wishlist"`
	User          AccountState       `json:"user"`
	Notifications NotificationsState `json:"notifications"`
	Filters       FilterState        `json:"filters"`
}

// Stores bundles one instance of each store for a single session
type Stores struct {
	Cart          *Cart
	Wishlist      *Wishlist
	Account       *Account
	Notifications *Notifications
	Filters       *Filters

	persister *Persister
	closeOnce sync.Once
	done      chan struct{}
}

// NewStores creates empty stores sharing one persister
func NewStores(persister *Persister, notificationDuration time.Duration) *Stores {
	return &Stores{
		Cart:          NewCart(persister),
		Wishlist:      NewWishlist(persister),
		Account:       NewAccount(persister),
		Notifications: NewNotifications(notificationDuration),
		Filters:       NewFilters(),
		persister:     persister,
		done:          make(chan struct{}),
	}
}

// Hydrate restores every persisted store. All stores are attempted; the
// returned error joins the individual failures.
func (s *Stores) Hydrate(ctx context.Context, resolver ProductResolver) error {
	return errors.Join(
		s.Cart.Hydrate(ctx, resolver),
		s.Wishlist.Hydrate(ctx, resolver),
		s.Account.Hydrate(ctx),
	)
}

// Subscribe registers fn on every store. fn receives the name of the store
// that changed.
func (s *Stores) Subscribe(fn func(name string)) (unsubscribe func()) {
	unsubs := []func(){
		s.Cart.Subscribe(func() { fn(NameCart) }),
		s.Wishlist.Subscribe(func() { fn(NameWishlist) }),
		s.Account.Subscribe(func() { fn(NameUser) }),
		s.Notifications.Subscribe(func() { fn(NameNotifications) }),
		s.Filters.Subscribe(func() { fn(NameFilters) }),
	}

	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Snapshot copies every store
func (s *Stores) Snapshot() State {
	return State{
		Cart:          s.Cart.Snapshot(),
		Wishlist:      s.Wishlist.Snapshot(),
		User:          s.Account.Snapshot(),
		Notifications: s.Notifications.Snapshot(),
		Filters:       s.Filters.Snapshot(),
	}
}

// Done is closed when the stores are closed. Holders of a closed bundle
// must fetch the session's stores again.
func (s *Stores) Done() <-chan struct{} {
	return s.done
}

// Close stops background work and persistence, then closes Done. Mutations
// after Close still apply in memory but are never written. Close is idempotent.
func (s *Stores) Close() {
	s.closeOnce.Do(func() {
		s.persister.Close()
		s.Notifications.Close()
		close(s.done)
	})
}
