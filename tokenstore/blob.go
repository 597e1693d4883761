package tokenstore

import (
	"context"
	"encoding/binary"
	"errors"
	"io"

	"github.com/hupe1980/tokgo/blobstore"
	"github.com/hupe1980/tokgo/resource"
)

// BlobOption configures OpenBlob.
type BlobOption func(*blobOptions)

type blobOptions struct {
	rc          *resource.Controller
	materialize bool
}

// WithResourceController throttles shard reads against the controller's
// IO budget.
func WithResourceController(rc *resource.Controller) BlobOption {
	return func(o *blobOptions) {
		o.rc = rc
	}
}

// WithMaterialize forces the whole shard into memory at open time
// instead of serving ranged reads from the blob. Compressed shards are
// always materialized.
func WithMaterialize(materialize bool) BlobOption {
	return func(o *blobOptions) {
		o.materialize = materialize
	}
}

// OpenBlob opens and verifies the shard object name in store.
//
// Uncompressed shards are served with ranged reads straight from the
// blob (put a blobstore.CachingStore in front for block caching).
// Compressed shards are fetched whole and decompressed into memory.
func OpenBlob(ctx context.Context, store blobstore.BlobStore, name string, optFns ...BlobOption) (Store, error) {
	var o blobOptions
	for _, fn := range optFns {
		fn(&o)
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	headerBuf := make([]byte, headerSize)
	if err := readFull(ctx, blob, headerBuf, 0); err != nil {
		blob.Close()
		return nil, err
	}
	h, err := decodeShardHeader(headerBuf)
	if err != nil {
		blob.Close()
		return nil, err
	}

	if h.Compression != CompressionNone || o.materialize {
		// Random access needs the decompressed section; pull the whole
		// object through the store's fast path.
		blob.Close()

		data, err := blobstore.Fetch(ctx, store, name)
		if err != nil {
			return nil, err
		}
		if o.rc != nil {
			if err := o.rc.AcquireIO(ctx, len(data)); err != nil {
				return nil, err
			}
		}
		return OpenBytes(data)
	}

	sizesBuf := make([]byte, h.sizesLength())
	if err := readFull(ctx, blob, sizesBuf, int64(h.sizesOffset())); err != nil {
		blob.Close()
		return nil, err
	}

	return &RemoteStore{
		blob:         blob,
		sizes:        decodeSizesSection(sizesBuf, int(h.UnitCount)),
		total:        int64(h.TokenCount),
		tokensOffset: int64(h.TokensOffset),
		rc:           o.rc,
	}, nil
}

// RemoteStore serves an uncompressed token shard with ranged reads from
// a blob store. The shard header and sizes are resident; token data is
// fetched on demand.
//
// Checksum verification is skipped: it would require reading the whole
// object, which is exactly what this store avoids. Use materialized
// opens when end-to-end verification matters.
type RemoteStore struct {
	blob         blobstore.Blob
	sizes        []int
	total        int64
	tokensOffset int64
	rc           *resource.Controller
}

// Sizes returns the ordered per-unit token counts.
func (s *RemoteStore) Sizes() []int {
	return s.sizes
}

// ReadInto copies tokens [start, start+len(dst)) into dst.
func (s *RemoteStore) ReadInto(ctx context.Context, start int64, dst []Token) error {
	if err := checkRange(start, int64(len(dst)), s.total); err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}

	if err := s.rc.AcquireIO(ctx, len(dst)*tokenSize); err != nil {
		return err
	}

	buf := make([]byte, len(dst)*tokenSize)
	if err := readFull(ctx, s.blob, buf, s.tokensOffset+start*tokenSize); err != nil {
		return err
	}

	for i := range dst {
		dst[i] = Token(binary.LittleEndian.Uint32(buf[i*tokenSize:]))
	}
	return nil
}

// Close releases the blob handle.
func (s *RemoteStore) Close() error {
	return s.blob.Close()
}

// readFull reads exactly len(p) bytes at off, treating a clean EOF on
// the final byte as success.
func readFull(ctx context.Context, blob blobstore.Blob, p []byte, off int64) error {
	n, err := blob.ReadAt(ctx, p, off)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(p)) {
		return err
	}
	if n < len(p) {
		return io.ErrUnexpectedEOF
	}
	return nil
}
