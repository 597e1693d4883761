// Package tokenstore provides access to flat token streams.
//
// A store exposes a tokenized corpus as one long sequence of int32
// tokens, structured only by the ordered lengths of its units (e.g.
// sentences). Stores are read-only: shards are produced out of band by
// the tokenization pipeline and are immutable afterwards.
package tokenstore

import (
	"context"
	"fmt"
)

// Token is the element type of a token stream.
type Token = int32

// Store is a random-access view of a flat token stream.
//
// Implementations must be safe for concurrent readers.
type Store interface {
	// Sizes returns the ordered per-unit token counts. The returned
	// slice is shared and must not be modified.
	Sizes() []int

	// ReadInto copies tokens [start, start+len(dst)) into dst.
	// It fails with a *RangeError if the range exceeds stream bounds.
	ReadInto(ctx context.Context, start int64, dst []Token) error

	// Close releases resources held by the store.
	Close() error
}

// RangeError reports a read outside the stream bounds.
type RangeError struct {
	Start  int64
	Length int64
	Total  int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("token range [%d, %d) out of bounds (stream has %d tokens)",
		e.Start, e.Start+e.Length, e.Total)
}

func checkRange(start, length, total int64) error {
	if start < 0 || length < 0 || start+length > total {
		return &RangeError{Start: start, Length: length, Total: total}
	}
	return nil
}
