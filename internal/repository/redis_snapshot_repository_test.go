package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisSnapshotRepository(t *testing.T) {
	_, client := newMiniredisClient(t)
	testSnapshotRoundTrip(t, NewRedisSnapshotRepository(client, "storefront", 0))
}

// Feature: storefront-state, Property 19: Snapshots round-trip through redis
func TestProperty_RedisSnapshotsRoundTrip(t *testing.T) {
	_, client := newMiniredisClient(t)
	testSnapshotProperty(t, NewRedisSnapshotRepository(client, "storefront", 0))
}

func TestRedisSnapshotRepositoryPrefixesKeys(t *testing.T) {
	mr, client := newMiniredisClient(t)
	repo := NewRedisSnapshotRepository(client, "storefront", 0)

	require.NoError(t, repo.Save(context.Background(), "s:wishlist-storage", []byte(`{"items":[]}`)))

	assert.True(t, mr.Exists("storefront:s:wishlist-storage"))
	assert.Zero(t, mr.TTL("storefront:s:wishlist-storage"))
}

func TestRedisSnapshotRepositoryExpiresSnapshots(t *testing.T) {
	mr, client := newMiniredisClient(t)
	repo := NewRedisSnapshotRepository(client, "", time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "s:user-storage", []byte(`{"user":null,"isAuthenticated":false}`)))
	assert.Equal(t, time.Hour, mr.TTL("s:user-storage"))

	mr.FastForward(2 * time.Hour)

	_, err := repo.Load(ctx, "s:user-storage")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestRedisSnapshotRepositoryReportsConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	repo := NewRedisSnapshotRepository(client, "storefront", 0)

	_, err := repo.Load(context.Background(), "s:cart-storage")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)
}
