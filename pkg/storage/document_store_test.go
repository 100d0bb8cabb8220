package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_WriteReadReplace(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	path := filepath.Join("1__alpha", "index.html")

	ok, err := store.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Write(ctx, path, "<p>one</p>"))
	require.NoError(t, store.Write(ctx, path, "<p>two</p>"))

	got, err := store.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "<p>two</p>", got)

	entries, err := os.ReadDir(filepath.Join(store.Root, "1__alpha"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_ReadMissing(t *testing.T) {
	_, err := NewFileStore(t.TempDir()).Read(context.Background(), "missing.html")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewFileStore(t.TempDir()).Write(ctx, "x.html", "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Read(ctx, "a")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, store.Write(ctx, "a", "doc"))
	got, err := store.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "doc", got)
}
