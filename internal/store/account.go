package store

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// AccountState is the persisted user session
type AccountState struct {
	User            *domain.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// ProfileUpdate carries the fields to merge into the current user. Nil
// fields are left untouched.
type ProfileUpdate struct {
	Name    *string         `json:"name,omitempty"`
	Email   *string         `json:"email,omitempty"`
	Phone   *string         `json:"phone,omitempty"`
	Avatar  *string         `json:"avatar,omitempty"`
	Address *domain.Address `json:"address,omitempty"`
	Orders  []domain.Order  `json:"orders,omitempty"`
}

// Account holds the optional signed-in user. IsAuthenticated is true
// exactly when a user is present.
type Account struct {
	Observable

	mu        sync.Mutex
	flushMu   sync.Mutex
	user      *domain.User
	persister *Persister
}

// NewAccount creates a signed-out account store
func NewAccount(persister *Persister) *Account {
	return &Account{persister: persister}
}

// Hydrate restores the persisted session
func (a *Account) Hydrate(ctx context.Context) error {
	var snap AccountState
	found, err := a.persister.load(ctx, UserStorageKey, &snap)
	if err != nil || !found {
		return err
	}

	a.mu.Lock()
	if snap.IsAuthenticated {
		a.user = snap.User
	} else {
		a.user = nil
	}
	a.mu.Unlock()

	a.notify()
	return nil
}

// Login replaces any current session with user
func (a *Account) Login(user domain.User) {
	a.mu.Lock()
	u := user
	a.user = &u
	a.commit()
}

// Logout clears the session
func (a *Account) Logout() {
	a.mu.Lock()
	a.user = nil
	a.commit()
}

// UpdateProfile shallow-merges update into the current user. It is a no-op
// when nobody is signed in.
func (a *Account) UpdateProfile(update ProfileUpdate) {
	a.mu.Lock()
	if a.user == nil {
		a.mu.Unlock()
		return
	}

	u := *a.user
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Phone != nil {
		u.Phone = update.Phone
	}
	if update.Avatar != nil {
		u.Avatar = update.Avatar
	}
	if update.Address != nil {
		addr := *update.Address
		u.Address = &addr
	}
	if update.Orders != nil {
		u.Orders = update.Orders
	}
	a.user = &u
	a.commit()
}

// User returns a copy of the signed-in user, or nil
func (a *Account) User() *domain.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// IsAuthenticated reports whether a user is signed in
func (a *Account) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user != nil
}

// Snapshot returns the account state
func (a *Account) Snapshot() AccountState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *Account) stateLocked() AccountState {
	if a.user == nil {
		return AccountState{}
	}
	u := *a.user
	return AccountState{User: &u, IsAuthenticated: true}
}

func (a *Account) commit() {
	snap := a.stateLocked()
	a.flushMu.Lock()
	a.mu.Unlock()

	a.persister.flush(UserStorageKey, snap)
	a.flushMu.Unlock()
	a.notify()
}
