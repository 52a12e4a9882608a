package persist

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type authSlice struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

func setupStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb, ttl, zaptest.NewLogger(t)), mr
}

func TestRedisStore_SaveLoad(t *testing.T) {
	store, mr := setupStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", SliceAuth, authSlice{Token: "tok", Email: "a@b.c"}))
	assert.True(t, mr.Exists("storefront:session:s1:auth"))
	assert.Equal(t, time.Hour, mr.TTL("storefront:session:s1:auth"))

	var got authSlice
	ok, err := store.Load(ctx, "s1", SliceAuth, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, authSlice{Token: "tok", Email: "a@b.c"}, got)
}

func TestRedisStore_OrderSliceRejected(t *testing.T) {
	store, mr := setupStore(t, 0)
	ctx := context.Background()

	err := store.Save(ctx, "s1", SliceOrder, map[string]string{"id": "o1"})
	require.ErrorIs(t, err, ErrNotPersisted)
	assert.False(t, mr.Exists(Key("s1", SliceOrder)))

	_, err = store.Load(ctx, "s1", SliceOrder, &struct{}{})
	assert.ErrorIs(t, err, ErrNotPersisted)
}

func TestRedisStore_LoadMissing(t *testing.T) {
	store, _ := setupStore(t, 0)

	var got authSlice
	ok, err := store.Load(context.Background(), "nobody", SliceAuth, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := setupStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", SliceDelivery, []string{"d1"}))
	mr.FastForward(2 * time.Minute)

	var got []string
	ok, err := store.Load(ctx, "s1", SliceDelivery, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Clear(t *testing.T) {
	store, mr := setupStore(t, 0)
	ctx := context.Background()

	for _, slice := range Slices {
		require.NoError(t, store.Save(ctx, "s1", slice, "x"))
	}
	require.NoError(t, store.Save(ctx, "s2", SliceAuth, "y"))

	require.NoError(t, store.Clear(ctx, "s1"))
	for _, slice := range Slices {
		assert.False(t, mr.Exists(Key("s1", slice)))
	}
	assert.True(t, mr.Exists(Key("s2", SliceAuth)))
}

func TestRedisStore_CorruptSliceIgnored(t *testing.T) {
	store, mr := setupStore(t, 0)
	require.NoError(t, mr.Set(Key("s1", SliceProduct), "{not json"))

	var got map[string]interface{}
	ok, err := store.Load(context.Background(), "s1", SliceProduct, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
