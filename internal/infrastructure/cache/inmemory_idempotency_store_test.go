package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *InMemoryIdempotencyStore {
	t.Helper()
	store := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInMemoryIdempotencyStoreMarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark reports new", func(t *testing.T) {
		store := newTestStore(t)

		isNew, err := store.MarkProcessed(ctx, "evt-order-opened-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("second mark of a live key reports duplicate", func(t *testing.T) {
		store := newTestStore(t)

		isNew, err := store.MarkProcessed(ctx, "evt-installment-1", time.Hour)
		require.NoError(t, err)
		require.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "evt-installment-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("an expired mark can be taken again", func(t *testing.T) {
		store := newTestStore(t)

		isNew, err := store.MarkProcessed(ctx, "evt-short", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "evt-short", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStoreIsProcessed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("unknown key", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("live key", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "live-key", time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "live-key")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired key reads as unprocessed", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "stale-key", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "stale-key")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStoreSize(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assert.Zero(t, store.Size())

	store.MarkProcessed(ctx, "a", time.Hour)
	store.MarkProcessed(ctx, "b", time.Hour)
	assert.Equal(t, 2, store.Size())

	// Re-marking an existing key does not grow the map.
	store.MarkProcessed(ctx, "a", time.Hour)
	assert.Equal(t, 2, store.Size())
}

func TestInMemoryIdempotencyStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	store.MarkProcessed(ctx, "short-1", 10*time.Millisecond)
	store.MarkProcessed(ctx, "short-2", 10*time.Millisecond)
	store.MarkProcessed(ctx, "long", time.Hour)
	require.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.sweep()

	assert.Equal(t, 1, store.Size())

	processed, err := store.IsProcessed(ctx, "long")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = store.IsProcessed(ctx, "short-1")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStoreConcurrentMarks(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	const workers = 100
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		go func() {
			isNew, err := store.MarkProcessed(ctx, "contested-key", time.Hour)
			results <- err == nil && isNew
		}()
	}

	wins := 0
	for i := 0; i < workers; i++ {
		if <-results {
			wins++
		}
	}

	assert.Equal(t, 1, wins, "exactly one caller may claim the key")
}

func TestInMemoryIdempotencyStoreClose(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close(), "closing twice is safe")
}
