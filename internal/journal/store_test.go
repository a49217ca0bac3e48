package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitForQueueDrain(t *testing.T, s *Store) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(s.updates) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for journal writer to drain")
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond) // let the in-flight transaction commit
}

func TestRecordThenLoadAllRoundtrips(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "journal"), 0)
	require.NoError(t, err)
	defer store.Close()

	store.Record(7, "/export/games/doom.exe")
	store.Record(9, "/export/readme.txt")
	waitForQueueDrain(t, store)

	loaded, err := store.LoadAll()
	require.NoError(t, err)
	require.Equal(t, "/export/games/doom.exe", loaded[7])
	require.Equal(t, "/export/readme.txt", loaded[9])
}

func TestForgetRemovesEntry(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "journal"), 0)
	require.NoError(t, err)
	defer store.Close()

	store.Record(3, "/export/a.txt")
	waitForQueueDrain(t, store)

	store.Forget(3)
	waitForQueueDrain(t, store)

	loaded, err := store.LoadAll()
	require.NoError(t, err)
	_, present := loaded[3]
	require.False(t, present)
}

func TestNilStoreIsNoOp(t *testing.T) {
	var store *Store
	require.NotPanics(t, func() {
		store.Record(1, "/x")
		store.Forget(1)
	})
	loaded, err := store.LoadAll()
	require.NoError(t, err)
	require.Empty(t, loaded)
	require.NoError(t, store.Close())
}

func TestReopenPersistsAcrossInstances(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")

	store, err := Open(dir, 0)
	require.NoError(t, err)
	store.Record(42, "/export/persisted.txt")
	waitForQueueDrain(t, store)
	require.NoError(t, store.Close())

	reopened, err := Open(dir, 0)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadAll()
	require.NoError(t, err)
	require.Equal(t, "/export/persisted.txt", loaded[42])
}
