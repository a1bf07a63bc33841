package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisSnapshotRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSnapshotRepository creates a SnapshotRepository backed by Redis.
// A zero ttl keeps snapshots until they are deleted.
func NewRedisSnapshotRepository(client *redis.Client, keyPrefix string, ttl time.Duration) SnapshotRepository {
	return &redisSnapshotRepository{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (r *redisSnapshotRepository) redisKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.keyPrefix, key)
}

// Load retrieves a snapshot by key
func (r *redisSnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return data, nil
}

// Save stores a snapshot, refreshing its expiry
func (r *redisSnapshotRepository) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.redisKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Delete removes a snapshot
func (r *redisSnapshotRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
