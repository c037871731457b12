package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileCache_RoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "key", []byte("payload"), 0))
	data, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), data)

	require.NoError(t, c.Delete(ctx, "key"))
	_, ok, err = c.Get(ctx, "key")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileCache_Expiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "soon", []byte("x"), time.Nanosecond))
	time.Sleep(10 * time.Millisecond)

	_, ok, err := c.Get(ctx, "soon")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileCache_Clear(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Clear())

	for _, key := range []string{"a", "b"} {
		_, ok, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestFileCache_KeysDoNotCollide(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", []byte("one"), 0))
	require.NoError(t, c.Set(ctx, "k2", []byte("two"), 0))

	data, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("one"), data)
}

func TestNullCache(t *testing.T) {
	var c NullCache
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("payload"), 0))
	_, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Delete(ctx, "key"))
	require.NoError(t, c.Close())
}

func TestHash_Deterministic(t *testing.T) {
	h1 := Hash([]byte("input"))
	h2 := Hash([]byte("input"))
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)
	require.NotEqual(t, h1, Hash([]byte("other")))
}
