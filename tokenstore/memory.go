package tokenstore

import (
	"context"
)

// MemoryStore is an in-memory Store implementation.
// It serves small corpora and tests without any storage dependency.
type MemoryStore struct {
	tokens []Token
	sizes  []int
}

// NewMemoryStore creates a store from per-unit token slices.
// The unit contents are copied into one contiguous stream.
func NewMemoryStore(units [][]Token) *MemoryStore {
	sizes := make([]int, len(units))
	var total int
	for i, u := range units {
		sizes[i] = len(u)
		total += len(u)
	}

	tokens := make([]Token, 0, total)
	for _, u := range units {
		tokens = append(tokens, u...)
	}

	return &MemoryStore{tokens: tokens, sizes: sizes}
}

// Sizes returns the ordered per-unit token counts.
func (s *MemoryStore) Sizes() []int {
	return s.sizes
}

// ReadInto copies tokens [start, start+len(dst)) into dst.
func (s *MemoryStore) ReadInto(_ context.Context, start int64, dst []Token) error {
	if err := checkRange(start, int64(len(dst)), int64(len(s.tokens))); err != nil {
		return err
	}
	copy(dst, s.tokens[start:start+int64(len(dst))])
	return nil
}

// Close is a no-op for memory stores.
func (s *MemoryStore) Close() error {
	return nil
}
