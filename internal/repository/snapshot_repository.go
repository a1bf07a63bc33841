package repository

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// SnapshotRepository defines the interface for durable store snapshots.
// A snapshot is an opaque JSON document saved under a namespaced key.
type SnapshotRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

type memorySnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewMemorySnapshotRepository creates a process-local SnapshotRepository.
// Snapshots survive store re-creation but not a process restart.
func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{
		snapshots: make(map[string][]byte),
	}
}

// Load returns a copy of the snapshot saved under key
func (r *memorySnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.snapshots[key]
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save replaces the snapshot saved under key
func (r *memorySnapshotRepository) Save(ctx context.Context, key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[key] = stored
	return nil
}

// Delete removes the snapshot saved under key, if any
func (r *memorySnapshotRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.snapshots, key)
	return nil
}
