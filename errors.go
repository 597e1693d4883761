package tokgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tokgo/tokenstore"
)

var (
	// ErrOutOfRange is returned when a block maps to token positions
	// outside the underlying store. It usually means the store and the
	// unit sizes the dataset was built from have diverged.
	ErrOutOfRange = errors.New("token range out of bounds")
)

// ErrNotPrefetched indicates a Get for a block that is not part of the
// current prefetch window.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrNotPrefetched struct {
	ID int
}

func (e *ErrNotPrefetched) Error() string {
	return fmt.Sprintf("block %d not prefetched", e.ID)
}

// ErrInvalidBlockID indicates a block id outside [0, BlockCount()).
type ErrInvalidBlockID struct {
	ID     int
	Blocks int
}

func (e *ErrInvalidBlockID) Error() string {
	return fmt.Sprintf("invalid block id %d (dataset has %d blocks)", e.ID, e.Blocks)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var re *tokenstore.RangeError
	if errors.As(err, &re) {
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}

	return err
}
