// Package s3 provides an S3 implementation of the blobstore.BlobStore
// interface for reading corpus shards.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("corpora/wiki103/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
// # Features
//
//   - Range reads for partial shard fetches
//   - Parallel whole-shard downloads via the transfer manager
//   - Automatic pagination for listing
//   - Configurable prefix for multi-corpus isolation
package s3
