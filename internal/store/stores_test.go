package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingRepository struct {
	loadErr error
	saveErr error
}

func (f *failingRepository) Load(ctx context.Context, key string) ([]byte, error) {
	return nil, f.loadErr
}

func (f *failingRepository) Save(ctx context.Context, key string, data []byte) error {
	return f.saveErr
}

func (f *failingRepository) Delete(ctx context.Context, key string) error {
	return nil
}

func TestFlushFailureIsLoggedNotSurfaced(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	repo := &failingRepository{saveErr: errors.New("disk full")}
	cart := NewCart(NewPersister(repo, "s", time.Second, zap.New(core)))

	cart.AddItem(testProduct("p", 10), 1)

	assert.Equal(t, 1, cart.TotalItems())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Failed to flush store snapshot", logs.All()[0].Message)
}

func TestHydrateReportsStorageErrors(t *testing.T) {
	repo := &failingRepository{loadErr: errors.New("connection refused")}
	stores := NewStores(NewPersister(repo, "s", 0, nil), 0)
	defer stores.Close()

	err := stores.Hydrate(context.Background(), nil)
	assert.Error(t, err)
	assert.Empty(t, stores.Cart.Items())
}

func TestHydrateRejectsCorruptSnapshot(t *testing.T) {
	repo := repository.NewMemorySnapshotRepository()
	require.NoError(t, repo.Save(context.Background(), "s:"+CartStorageKey, []byte("{not json")))

	cart := NewCart(NewPersister(repo, "s", 0, nil))
	assert.Error(t, cart.Hydrate(context.Background(), nil))
	assert.Empty(t, cart.Items())
}

func TestPurgeDeletesEverySnapshot(t *testing.T) {
	repo := repository.NewMemorySnapshotRepository()
	persister := NewPersister(repo, "s", 0, nil)
	stores := NewStores(persister, 0)
	defer stores.Close()

	stores.Cart.AddItem(testProduct("p", 1), 1)
	stores.Wishlist.AddItem(testProduct("p", 1))
	stores.Account.Login(testUser())

	require.NoError(t, persister.Purge(context.Background()))

	for _, key := range []string{CartStorageKey, WishlistStorageKey, UserStorageKey} {
		_, err := repo.Load(context.Background(), persister.Key(key))
		assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
	}
}

func TestStoresSubscribeReportsStoreName(t *testing.T) {
	stores := NewStores(nil, time.Minute)
	defer stores.Close()

	var changed []string
	unsubscribe := stores.Subscribe(func(name string) { changed = append(changed, name) })

	stores.Cart.AddItem(testProduct("p", 1), 1)
	stores.Wishlist.AddItem(testProduct("p", 1))
	stores.Account.Login(testUser())
	stores.Notifications.AddNotification(domain.Notification{Type: domain.NotificationInfo})
	stores.Filters.SetSearchQuery("printer")

	assert.Equal(t, []string{NameCart, NameWishlist, NameUser, NameNotifications, NameFilters}, changed)

	unsubscribe()
	stores.Cart.ClearCart()
	assert.Len(t, changed, 5)
	assert.Zero(t, stores.Cart.Subscribers())
}

func TestSessionsDoNotShareState(t *testing.T) {
	repo := repository.NewMemorySnapshotRepository()
	a := NewStores(NewPersister(repo, "a", 0, nil), 0)
	b := NewStores(NewPersister(repo, "b", 0, nil), 0)
	defer a.Close()
	defer b.Close()

	a.Cart.AddItem(testProduct("p", 1), 1)

	reloadedB := NewStores(NewPersister(repo, "b", 0, nil), 0)
	defer reloadedB.Close()
	require.NoError(t, reloadedB.Hydrate(context.Background(), nil))

	assert.Empty(t, b.Cart.Items())
	assert.Empty(t, reloadedB.Cart.Items())
}

func TestSnapshotCopiesEveryStore(t *testing.T) {
	stores := NewStores(nil, time.Minute)
	defer stores.Close()

	stores.Cart.AddItem(testProduct("p", 250), 4)
	stores.Account.Login(testUser())

	state := stores.Snapshot()
	assert.Equal(t, 4, state.Cart.TotalItems)
	assert.Equal(t, int64(1000), state.Cart.TotalPrice)
	assert.True(t, state.User.IsAuthenticated)
	assert.Equal(t, DefaultFilterState(), state.Filters)
}

func TestClosedStoresStopWriting(t *testing.T) {
	repo := repository.NewMemorySnapshotRepository()
	stores := NewStores(NewPersister(repo, "s", time.Second, nil), 0)

	stores.Cart.AddItem(testProduct("kept", 10), 1)
	stores.Close()
	stores.Close()

	select {
	case <-stores.Done():
	default:
		t.Fatal("Done should be closed after Close")
	}

	stores.Cart.AddItem(testProduct("dropped", 10), 1)
	stores.Wishlist.AddItem(testProduct("dropped", 10))

	reloaded := NewStores(NewPersister(repo, "s", time.Second, nil), 0)
	defer reloaded.Close()
	require.NoError(t, reloaded.Hydrate(context.Background(), nil))

	items := reloaded.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "kept", items[0].Product.ID)
	assert.Empty(t, reloaded.Wishlist.Items())
}
