package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *IdempotencyStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, time.Minute)
}

func TestIdempotencyStoreClaimsKeyOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "abc-123", "orders"))
	err := store.CheckAndInsert(ctx, "abc-123", "orders")
	assert.ErrorIs(t, err, ErrIdempotencyConflict)

	// Same key in a different module is independent.
	assert.NoError(t, store.CheckAndInsert(ctx, "abc-123", "audit"))
}

func TestIdempotencyStoreDeleteReleasesKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "k1", "orders"))
	require.NoError(t, store.Delete(ctx, "k1", "orders"))
	assert.NoError(t, store.CheckAndInsert(ctx, "k1", "orders"))
}

func TestIdempotencyStoreRejectsEmptyInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.CheckAndInsert(ctx, "", "orders"))
	assert.Error(t, store.CheckAndInsert(ctx, "k1", ""))
}
