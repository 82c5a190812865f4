package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/kdacanay/wrc-leads/internal/csvimport"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	s, err := csvimport.NewSession("Name;Email\nAnn;ann@example.com\n", 0, "admin-1", time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Select(nil))

	require.NoError(t, store.Save(ctx, s, 30*time.Minute))
	assert.True(t, mr.Exists("import:session:"+s.ID))
	assert.Equal(t, 30*time.Minute, mr.TTL("import:session:"+s.ID))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Headers, got.Headers)
	assert.Equal(t, ";", got.Delimiter)
	assert.Empty(t, got.SelectedRowIDs)
	assert.Equal(t, 1, got.Columns.Email)
}

func TestRedisStoreExpiryAndDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	s, err := csvimport.NewSession("Email\na@example.com\n", 0, "admin-1", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, s, time.Minute))

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, csvimport.ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, s, time.Minute))
	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, csvimport.ErrSessionNotFound)
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("import:session:bad", "{"))

	_, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, csvimport.ErrSessionNotFound)
}
