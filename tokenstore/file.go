package tokenstore

import (
	"context"
	"encoding/binary"

	"github.com/hupe1980/tokgo/internal/mmap"
)

// FileStore serves a token shard from a local file.
//
// Uncompressed shards are memory-mapped and read without copying the
// token section onto the heap. Compressed shards are decompressed into
// memory once at open time (random access needs the full section).
type FileStore struct {
	mapping *mmap.Mapping // nil for compressed shards
	tokens  []byte        // raw little-endian int32 token section
	sizes   []int
	total   int64
}

// OpenFile opens and verifies the shard at path.
func OpenFile(path string) (*FileStore, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	s, err := newFileStore(m.Bytes(), m)
	if err != nil {
		m.Close()
		return nil, err
	}
	return s, nil
}

// OpenBytes opens a shard already held in memory (e.g. fetched from a
// blob store). data must stay immutable for the store's lifetime.
func OpenBytes(data []byte) (*FileStore, error) {
	return newFileStore(data, nil)
}

func newFileStore(data []byte, m *mmap.Mapping) (*FileStore, error) {
	h, err := decodeShardHeader(data)
	if err != nil {
		return nil, err
	}
	if err := h.verifyChecksum(data); err != nil {
		return nil, err
	}

	s := &FileStore{
		sizes: decodeSizes(data, h),
		total: int64(h.TokenCount),
	}

	stored := data[h.TokensOffset : h.TokensOffset+h.TokensLength]
	if h.Compression == CompressionNone {
		s.mapping = m
		s.tokens = stored
		return s, nil
	}

	raw, err := decompressSection(stored, h.Compression)
	if err != nil {
		return nil, err
	}
	if len(raw) != int(h.TokenCount)*tokenSize {
		return nil, ErrCorruptShard
	}
	s.tokens = raw

	// The mapping only backed the compressed bytes; drop it.
	if m != nil {
		if err := m.Close(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Sizes returns the ordered per-unit token counts.
func (s *FileStore) Sizes() []int {
	return s.sizes
}

// ReadInto copies tokens [start, start+len(dst)) into dst.
func (s *FileStore) ReadInto(_ context.Context, start int64, dst []Token) error {
	if err := checkRange(start, int64(len(dst)), s.total); err != nil {
		return err
	}
	off := start * tokenSize
	for i := range dst {
		dst[i] = Token(binary.LittleEndian.Uint32(s.tokens[off:]))
		off += tokenSize
	}
	return nil
}

// Close unmaps the shard, if it was memory-mapped.
func (s *FileStore) Close() error {
	if s.mapping != nil {
		return s.mapping.Close()
	}
	return nil
}
