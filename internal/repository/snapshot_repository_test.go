package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotDocument mirrors the shape of a persisted cart snapshot
type snapshotDocument struct {
	Items []snapshotLine `json:"items"`
}

type snapshotLine struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// testSnapshotRoundTrip checks the behaviour every SnapshotRepository shares
func testSnapshotRoundTrip(t *testing.T, repo SnapshotRepository) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Load(ctx, "missing:cart-storage")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	require.NoError(t, repo.Save(ctx, "s:cart-storage", []byte(`{"items":[{"id":"a","quantity":1}]}`)))
	require.NoError(t, repo.Save(ctx, "s:cart-storage", []byte(`{"items":[{"id":"a","quantity":3}]}`)))

	data, err := repo.Load(ctx, "s:cart-storage")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"id":"a","quantity":3}]}`, string(data))

	require.NoError(t, repo.Delete(ctx, "s:cart-storage"))
	_, err = repo.Load(ctx, "s:cart-storage")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	// Deleting twice is not an error
	assert.NoError(t, repo.Delete(ctx, "s:cart-storage"))
}

// testSnapshotProperty checks that any saved document loads back unchanged
func testSnapshotProperty(t *testing.T, repo SnapshotRepository) {
	t.Helper()

	properties := gopter.NewProperties(nil)

	properties.Property("saved snapshots load back unchanged", prop.ForAll(
		func(namespace string, ids []string, quantity int) bool {
			ctx := context.Background()
			key := fmt.Sprintf("%s:cart-storage", namespace)

			doc := snapshotDocument{Items: []snapshotLine{}}
			for _, id := range ids {
				doc.Items = append(doc.Items, snapshotLine{ID: id, Quantity: quantity})
			}
			data, err := json.Marshal(doc)
			if err != nil {
				return false
			}

			if err := repo.Save(ctx, key, data); err != nil {
				t.Logf("FAIL: save failed: %v", err)
				return false
			}

			loaded, err := repo.Load(ctx, key)
			if err != nil {
				t.Logf("FAIL: load failed: %v", err)
				return false
			}

			var got snapshotDocument
			if err := json.Unmarshal(loaded, &got); err != nil {
				return false
			}
			if len(got.Items) != len(doc.Items) {
				return false
			}
			for i := range doc.Items {
				if got.Items[i] != doc.Items[i] {
					return false
				}
			}
			return true
		},
		gen.Identifier(),
		gen.SliceOf(gen.Identifier()),
		gen.IntRange(1, 99),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestMemorySnapshotRepository(t *testing.T) {
	testSnapshotRoundTrip(t, NewMemorySnapshotRepository())
}

// Feature: storefront-state, Property 18: Snapshots round-trip through storage
func TestProperty_MemorySnapshotsRoundTrip(t *testing.T) {
	testSnapshotProperty(t, NewMemorySnapshotRepository())
}

func TestMemorySnapshotRepositoryCopiesData(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	ctx := context.Background()

	data := []byte(`{"items":[]}`)
	require.NoError(t, repo.Save(ctx, "k", data))
	data[0] = 'X'

	loaded, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(loaded))

	loaded[0] = 'Y'
	again, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(again))
}
