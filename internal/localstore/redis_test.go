package localstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client)
	t.Cleanup(func() {
		client.Close()
	})

	return store, mr
}

func TestRedis_PutGet(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KeyCart, []byte(`[{"_id":"p1"}]`)))

	got, err := store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"_id":"p1"}]`), got)
}

func TestRedis_GetMissing(t *testing.T) {
	store, _ := setupTestRedis(t)

	got, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Nil(t, got)
}

func TestRedis_KeyPrefix(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KeyCart, []byte(`[]`)))

	// stored under the prefixed key, with no TTL
	got, err := mr.Get("storefront:cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)
	assert.Zero(t, mr.TTL("storefront:cart"))
}

func TestRedis_Delete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KeySession, []byte(`{}`)))
	require.NoError(t, store.Delete(ctx, KeySession))

	_, err := store.Get(ctx, KeySession)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedis_ServerGone(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	err := store.Put(context.Background(), KeyCart, []byte(`[]`))
	assert.Error(t, err)
}
