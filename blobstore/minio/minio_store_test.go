package minio

import (
	"bytes"
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tokgo/blobstore"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-tokgo"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	// Check if MinIO is reachable
	_, err = client.ListBuckets(ctx)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		require.NoError(t, err)
	}

	// Shards are produced out of band; seed one with the raw client.
	data := []byte("hello minio world")
	_, err = client.PutObject(ctx, bucket, "test-prefix/shard-000.tok",
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	require.NoError(t, err)

	defer func() {
		_ = client.RemoveObject(ctx, bucket, "test-prefix/shard-000.tok", minio.RemoveObjectOptions{})
	}()

	store := NewStore(client, bucket, "test-prefix")

	blob, err := store.Open(ctx, "shard-000.tok")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, len(data))
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, buf)

	// Ranged read
	partBuf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, partBuf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	assert.Equal(t, "minio", string(partBuf))
	require.NoError(t, blob.Close())

	// List
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "shard-000.tok")

	// Fetch
	fetched, err := store.Fetch(ctx, "shard-000.tok")
	require.NoError(t, err)
	assert.Equal(t, data, fetched)

	// Missing object
	_, err = store.Open(ctx, "missing.tok")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}
