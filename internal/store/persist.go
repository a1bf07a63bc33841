package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// Storage keys, one per persisted store
const (
	CartStorageKey     = "cart-storage"
	WishlistStorageKey = "wishlist-storage"
	UserStorageKey     = "user-storage"
)

// DefaultFlushTimeout bounds a single snapshot write
const DefaultFlushTimeout = 2 * time.Second

// ProductResolver maps a product id back to the live catalog record
type ProductResolver interface {
	FindProduct(id string) (*domain.Product, error)
}

// Persister writes store snapshots under a namespace. A nil *Persister
// disables persistence. Once closed it drops every further write.
type Persister struct {
	repo      repository.SnapshotRepository
	namespace string
	timeout   time.Duration
	logger    *zap.Logger

	// mu is held shared by writes in flight and exclusively by Close
	mu     sync.RWMutex
	closed bool
}

// NewPersister creates a Persister writing to repo under namespace
func NewPersister(repo repository.SnapshotRepository, namespace string, timeout time.Duration, logger *zap.Logger) *Persister {
	if timeout <= 0 {
		timeout = DefaultFlushTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{
		repo:      repo,
		namespace: namespace,
		timeout:   timeout,
		logger:    logger,
	}
}

// Key returns the repository key for a store key
func (p *Persister) Key(storeKey string) string {
	if p.namespace == "" {
		return storeKey
	}
	return fmt.Sprintf("%s:%s", p.namespace, storeKey)
}

// load decodes the snapshot under storeKey into v. It reports false when no
// snapshot exists.
func (p *Persister) load(ctx context.Context, storeKey string, v any) (bool, error) {
	if p == nil {
		return false, nil
	}

	data, err := p.repo.Load(ctx, p.Key(storeKey))
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load %s: %w", storeKey, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", storeKey, err)
	}

	return true, nil
}

// flush writes v under storeKey. Failures are logged and dropped: callers
// treat storage as always available.
func (p *Persister) flush(storeKey string, v any) {
	if p == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("Failed to encode store snapshot",
			zap.String("key", p.Key(storeKey)),
			zap.Error(err),
		)
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Debug("Dropped write to closed store", zap.String("key", p.Key(storeKey)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.repo.Save(ctx, p.Key(storeKey), data); err != nil {
		p.logger.Error("Failed to flush store snapshot",
			zap.String("key", p.Key(storeKey)),
			zap.Error(err),
		)
	}
}

// Close waits for writes in flight and disables the persister. Snapshots
// already stored are left alone.
func (p *Persister) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Purge deletes every persisted snapshot in the namespace
func (p *Persister) Purge(ctx context.Context) error {
	if p == nil {
		return nil
	}

	for _, key := range []string{CartStorageKey, WishlistStorageKey, UserStorageKey} {
		if err := p.repo.Delete(ctx, p.Key(key)); err != nil {
			return fmt.Errorf("failed to purge %s: %w", key, err)
		}
	}
	return nil
}

// rebind swaps a decoded product copy for the live catalog record so derived
// values keep following the catalog. Unknown products keep the decoded copy.
func rebind(resolver ProductResolver, product *domain.Product) *domain.Product {
	if resolver == nil || product == nil {
		return product
	}
	if live, err := resolver.FindProduct(product.ID); err == nil {
		return live
	}
	return product
}
