// Package store holds the per-session client state: cart, wishlist, user
// session, notifications and listing filters. Each store is an explicit
// instance owned by its session; consumers read snapshots and subscribe to
// changes instead of polling.
package store

import "sync"

type subscription struct {
	id uint64
	fn func()
}

// Observable is a synchronous pub-sub list embedded by every store.
// Listeners run after the mutation completes, outside the store lock, in
// subscription order.
type Observable struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

// Subscribe registers fn and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (o *Observable) Subscribe(fn func()) (unsubscribe func()) {
	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscription{id: id, fn: fn})
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

// Subscribers returns the number of registered listeners
func (o *Observable) Subscribers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

func (o *Observable) notify() {
	o.mu.Lock()
	subs := make([]subscription, len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn()
	}
}
