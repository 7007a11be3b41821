package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutAndDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "task-attachment-1-ab12.txt", "text/plain", strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/task-attachment-1-ab12.txt", url)
	assert.True(t, store.Exists(url))

	data, err := os.ReadFile(filepath.Join(store.Root(), "task-attachment-1-ab12.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	require.NoError(t, store.Delete(url))
	assert.False(t, store.Exists(url))
}

func TestLocalStoreDeleteMissingFile(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("/uploads/never-existed.png"))
}

func TestLocalStoreDeleteIgnoresTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	outside := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))

	// Only the basename is honored, so the path escapes nothing.
	require.NoError(t, store.Delete("/uploads/../secret.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestLocalStorePutUsesBasenameOfKey(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "../../etc/task-attachment-2.txt", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/task-attachment-2.txt", url)

	_, err = os.Stat(filepath.Join(store.Root(), "task-attachment-2.txt"))
	assert.NoError(t, err)
}
