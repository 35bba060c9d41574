package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupRedisStore creates a miniredis-backed store plus a second client on
// the same server for peer stores.
func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store, err := NewRedisStore(client, "session:user1", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStore_SetAndClear(t *testing.T) {
	store, mr := setupRedisStore(t)

	require.NoError(t, store.SetToken("abc"))
	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	got, err := mr.Get("session:user1")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	require.NoError(t, store.Clear())
	_, ok = store.Token()
	assert.False(t, ok)
	assert.False(t, mr.Exists("session:user1"))
}

func TestRedisStore_LoadsExistingToken(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Set("session:user1", "persisted")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store, err := NewRedisStore(client, "session:user1", zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "persisted", token)
}

func TestRedisStore_PeersObserveChanges(t *testing.T) {
	storeA, mr := setupRedisStore(t)

	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { clientB.Close() })
	storeB, err := NewRedisStore(clientB, "session:user1", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { storeB.Close() })

	var lastToken atomic.Value
	var cleared atomic.Bool
	storeB.Subscribe(func(token string, ok bool) {
		if ok {
			lastToken.Store(token)
		} else {
			cleared.Store(true)
		}
	})

	require.NoError(t, storeA.SetToken("shared"))
	require.Eventually(t, func() bool {
		v, _ := lastToken.Load().(string)
		return v == "shared"
	}, 2*time.Second, 10*time.Millisecond)

	token, ok := storeB.Token()
	assert.True(t, ok)
	assert.Equal(t, "shared", token)

	// logout in one process reaches the other
	require.NoError(t, storeA.Clear())
	require.Eventually(t, cleared.Load, 2*time.Second, 10*time.Millisecond)
	_, ok = storeB.Token()
	assert.False(t, ok)
}
