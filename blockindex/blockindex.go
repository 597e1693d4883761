// Package blockindex partitions a flat token stream into contiguous blocks.
//
// The stream itself is never touched: the only input is the ordered
// sequence of unit sizes (e.g. sentence lengths). The resulting table is
// immutable and shared read-only by all consumers.
package blockindex

import (
	"errors"
	"fmt"
	"sort"
)

// BreakMode selects how unit boundaries influence block boundaries.
type BreakMode uint8

const (
	// BreakNone breaks tokens into equally sized blocks of up to
	// blockSize tokens, ignoring unit boundaries. The last block may be
	// shorter.
	BreakNone BreakMode = iota
	// BreakComplete packs whole units into blocks of up to blockSize
	// tokens. A block exceeds blockSize only when a single unit does.
	BreakComplete
	// BreakEOS maps each non-empty unit to exactly one block.
	// blockSize is ignored.
	BreakEOS
)

func (m BreakMode) String() string {
	switch m {
	case BreakNone:
		return "none"
	case BreakComplete:
		return "complete"
	case BreakEOS:
		return "eos"
	default:
		return fmt.Sprintf("BreakMode(%d)", uint8(m))
	}
}

// ErrInvalidBlockSize is returned when blockSize is not positive for a
// mode that uses it.
var ErrInvalidBlockSize = errors.New("block size must be positive")

// ErrInvalidBreakMode indicates an unsupported break mode.
type ErrInvalidBreakMode struct {
	Mode BreakMode
}

func (e *ErrInvalidBreakMode) Error() string {
	return fmt.Sprintf("invalid break mode: %d", uint8(e.Mode))
}

// Block is a half-open range [Start, End) of global token positions.
type Block struct {
	Start int64
	End   int64
}

// Len returns the number of tokens in the block.
func (b Block) Len() int {
	return int(b.End - b.Start)
}

// Table is an immutable ordered sequence of blocks.
// Blocks are strictly ordered by Start and tile the token stream:
// every token belongs to exactly one block.
type Table struct {
	blocks []Block
	total  int64
}

// Build computes the block table for the given unit sizes.
//
// sizes holds one non-negative length per unit, summing to the total
// token count. blockSize is the target block length for BreakNone and
// BreakComplete and is ignored for BreakEOS.
func Build(sizes []int, blockSize int, mode BreakMode) (*Table, error) {
	var total int64
	for _, sz := range sizes {
		total += int64(sz)
	}

	t := &Table{total: total}

	switch mode {
	case BreakNone:
		if blockSize <= 0 {
			return nil, ErrInvalidBlockSize
		}
		bs := int64(blockSize)
		numBlocks := (total + bs - 1) / bs
		t.blocks = make([]Block, 0, numBlocks)
		for i := int64(0); i < numBlocks; i++ {
			start := i * bs
			end := start + bs
			if end > total {
				end = total
			}
			t.blocks = append(t.blocks, Block{Start: start, End: end})
		}

	case BreakComplete:
		if blockSize <= 0 {
			return nil, ErrInvalidBlockSize
		}
		var tokIdx, curr int64
		szIdx := 0
		for szIdx < len(sizes) {
			// The curr == 0 clause guarantees forward progress: a unit
			// larger than blockSize becomes its own oversized block.
			if curr+int64(sizes[szIdx]) <= int64(blockSize) || curr == 0 {
				curr += int64(sizes[szIdx])
				szIdx++
			} else {
				t.blocks = append(t.blocks, Block{Start: tokIdx, End: tokIdx + curr})
				tokIdx += curr
				curr = 0
			}
		}
		if curr > 0 {
			t.blocks = append(t.blocks, Block{Start: tokIdx, End: tokIdx + curr})
		}

	case BreakEOS:
		var curr int64
		for _, sz := range sizes {
			// Empty units produce no block but do not shift positions.
			if sz > 0 {
				t.blocks = append(t.blocks, Block{Start: curr, End: curr + int64(sz)})
			}
			curr += int64(sz)
		}

	default:
		return nil, &ErrInvalidBreakMode{Mode: mode}
	}

	return t, nil
}

// Len returns the number of blocks.
func (t *Table) Len() int {
	return len(t.blocks)
}

// Block returns the block with the given id.
// The id must be in [0, Len()).
func (t *Table) Block(id int) Block {
	return t.blocks[id]
}

// Length returns the token count of the block with the given id.
func (t *Table) Length(id int) int {
	return t.blocks[id].Len()
}

// Lengths returns the per-block token counts, in block-id order.
// Length-based batch samplers consume this directly.
func (t *Table) Lengths() []int {
	lengths := make([]int, len(t.blocks))
	for i, b := range t.blocks {
		lengths[i] = b.Len()
	}
	return lengths
}

// TotalTokens returns the total token count covered by the table's units,
// including tokens of empty units (always the sum of the input sizes).
func (t *Table) TotalTokens() int64 {
	return t.total
}

// Find returns the id of the block covering the global token position
// pos, and false if no block covers it.
func (t *Table) Find(pos int64) (int, bool) {
	i := sort.Search(len(t.blocks), func(i int) bool {
		return t.blocks[i].End > pos
	})
	if i < len(t.blocks) && t.blocks[i].Start <= pos {
		return i, true
	}
	return 0, false
}
