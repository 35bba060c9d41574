package session

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token")
	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	store, path := newTestFileStore(t)
	require.NoError(t, store.SetToken("abc"))
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	token, ok := reopened.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
}

func TestFileStore_ClearRemovesFile(t *testing.T) {
	store, path := newTestFileStore(t)
	require.NoError(t, store.SetToken("abc"))
	require.NoError(t, store.Clear())

	_, ok := store.Token()
	assert.False(t, ok)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_ObservesExternalWrite(t *testing.T) {
	store, path := newTestFileStore(t)

	var lastToken atomic.Value
	store.Subscribe(func(token string, ok bool) {
		lastToken.Store(token)
	})

	// another process logs in
	require.NoError(t, os.WriteFile(path, []byte("external-token"), 0o600))

	require.Eventually(t, func() bool {
		v, _ := lastToken.Load().(string)
		return v == "external-token"
	}, 2*time.Second, 10*time.Millisecond)

	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "external-token", token)
}

func TestFileStore_ObservesExternalRemove(t *testing.T) {
	store, path := newTestFileStore(t)
	require.NoError(t, store.SetToken("abc"))

	var cleared atomic.Bool
	store.Subscribe(func(token string, ok bool) {
		if !ok {
			cleared.Store(true)
		}
	})

	// another process logs out
	require.NoError(t, os.Remove(path))

	require.Eventually(t, cleared.Load, 2*time.Second, 10*time.Millisecond)
	_, ok := store.Token()
	assert.False(t, ok)
}

func TestFileStore_UnwritablePathKeepsMemoryState(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { os.Chmod(dir, 0o700) })

	err = store.SetToken("abc")
	assert.Error(t, err, "persistence failure is reported")

	// ...but the session stays usable for this process
	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
}
