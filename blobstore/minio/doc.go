// Package minio provides a MinIO implementation of the
// blobstore.BlobStore interface for reading corpus shards from MinIO
// and other S3-compatible object stores.
package minio
