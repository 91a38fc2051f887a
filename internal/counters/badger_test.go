package counters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetMissingKey(t *testing.T) {
	store := openTestStore(t)

	v, ok, err := store.Get(context.Background(), "apps:u1:day:2026-03-10")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), v)
}

func TestIncrAndGet(t *testing.T) {
	store := openTestStore(t)
	key := "apps:u1:day:2026-03-10"

	for want := int64(1); want <= 3; want++ {
		got, err := store.Incr(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	v, ok, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)
}

func TestKeysAreIndependent(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Incr(context.Background(), "apps:u1:day:2026-03-10")
	require.NoError(t, err)

	v, ok, err := store.Get(context.Background(), "apps:u2:day:2026-03-10")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), v)
}
