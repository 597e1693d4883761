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

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	data := []byte("the quick brown fox jumps over the lazy dog")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shard-000.tok"), data, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "shard-001.tok"), []byte("x"), 0o644))

	store := NewLocalStore(dir)

	blob, err := store.Open(ctx, "shard-000.tok")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "quick", string(buf))

	n, err = blob.ReadAt(ctx, buf, int64(len(data))-3)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "dog", string(buf[:n]))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"shard-000.tok", "sub/shard-001.tok"}, names)

	fetched, err := store.Fetch(ctx, "shard-000.tok")
	require.NoError(t, err)
	assert.Equal(t, data, fetched)

	_, err = store.Open(ctx, "missing.tok")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Fetch(ctx, "missing.tok")
	require.ErrorIs(t, err, ErrNotFound)
}
