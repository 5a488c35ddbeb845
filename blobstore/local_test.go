package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Create a blob
	blobName := "snapshots/data-001.vsnp"
	data := []byte("hello world, this is a test blob for vectis")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Not visible before commit
	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)

	err = w.Close()
	require.NoError(t, err)

	// Verify file exists on disk
	expectedPath := filepath.Join(tmpDir, "snapshots", "data-001.vsnp")
	_, err = os.Stat(expectedPath)
	require.NoError(t, err)

	// 2. Open and read
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	content, err := io.ReadAll(blob)
	require.NoError(t, err)
	require.Equal(t, data, content)
	require.NoError(t, blob.Close())

	// 3. List
	require.NoError(t, store.Put(ctx, "snapshots/data-002.vsnp", []byte("x")))
	require.NoError(t, store.Put(ctx, "other.bin", []byte("y")))

	blobs, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Equal(t, []string{"snapshots/data-001.vsnp", "snapshots/data-002.vsnp"}, blobs)

	// 4. Delete
	err = store.Delete(ctx, blobName)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, blobName), "deleting twice is not an error")

	blobsAfter, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"other.bin", "snapshots/data-002.vsnp"}, blobsAfter)

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStore_Abort(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	w, err := store.Create(ctx, "aborted.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())

	_, err = w.Write([]byte("more"))
	assert.ErrorIs(t, err, ErrClosed)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be removed")
}

func TestLocalBlobStore_InvalidName(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"../escape", "/abs/path", ""} {
		_, err := store.Create(ctx, name)
		assert.Error(t, err, name)
		_, err = store.Open(ctx, name)
		assert.Error(t, err, name)
	}
}

func TestLocalBlobStore_MissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "does-not-exist"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
