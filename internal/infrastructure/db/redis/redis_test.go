package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to REDIS_ADDR or skips the test.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client, err := Connect(context.Background(), Config{Addr: addr, Timeout: 2 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestStore(t *testing.T) {
	client := newTestClient(t)
	store := NewStore(client)
	ctx := context.Background()
	key := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Remove(ctx, key) })

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, key, "a.b.c"))
	v, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a.b.c", v)

	require.NoError(t, store.Remove(ctx, key))
	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLimiter_Boundary(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	now := time.Now()
	l := NewLimiter(client, 3, time.Minute)
	l.now = func() time.Time { return now }
	t.Cleanup(func() { _ = l.Reset(ctx, key) })

	for _, want := range []int{2, 1, 0} {
		res, err := l.Check(ctx, key)
		require.NoError(t, err)
		require.True(t, res.Allowed)
		require.Equal(t, want, res.Remaining)
		now = now.Add(time.Second)
	}

	res, err := l.Check(ctx, key)
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, 57, res.RetryAfter)

	require.NoError(t, l.Reset(ctx, key))
	res, err = l.Check(ctx, key)
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.Equal(t, 2, res.Remaining)
}

func TestLimiter_KeyIsolation(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	a, b := "test-"+uuid.NewString(), "test-"+uuid.NewString()

	l := NewLimiter(client, 1, time.Minute)
	t.Cleanup(func() {
		_ = l.Reset(ctx, a)
		_ = l.Reset(ctx, b)
	})

	res, err := l.Check(ctx, a)
	require.NoError(t, err)
	require.True(t, res.Allowed)
	res, err = l.Check(ctx, a)
	require.NoError(t, err)
	require.False(t, res.Allowed)

	res, err = l.Check(ctx, b)
	require.NoError(t, err)
	require.True(t, res.Allowed)
}
