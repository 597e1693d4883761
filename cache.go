package tokgo

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/tokgo/tokenstore"
)

// tokenSize is the in-memory and on-disk width of one token in bytes.
const tokenSize = 4

// span locates one block inside the prefetch buffer.
type span struct {
	off int
	n   int
}

// blockCache is one immutable prefetch generation: a single contiguous
// buffer holding every requested block, plus the id set and the
// per-block spans into the buffer. A new generation fully replaces the
// old one; the old generation is never mutated, so samples handed out
// before the swap stay readable.
type blockCache struct {
	buf     []tokenstore.Token
	spans   map[int]span
	ids     *roaring.Bitmap
	bytes   int64
	version uint64
}

func (d *Dataset) prefetch(ctx context.Context, ids []int) (int64, error) {
	set := roaring.New()
	for _, id := range ids {
		if id < 0 || id >= d.table.Len() {
			return 0, &ErrInvalidBlockID{ID: id, Blocks: d.table.Len()}
		}
		set.Add(uint32(id))
	}

	var total int64
	it := set.Iterator()
	for it.HasNext() {
		total += int64(d.table.Length(int(it.Next())))
	}

	bytes := total * int64(tokenSize)
	if err := d.controller.AcquireMemory(ctx, bytes); err != nil {
		return 0, err
	}

	buf := make([]tokenstore.Token, total)
	spans := make(map[int]span, set.GetCardinality())

	// Ascending id order means ascending stream order for every break
	// mode, which keeps reads sequential on disk-backed stores.
	off := 0
	it = set.Iterator()
	for it.HasNext() {
		id := int(it.Next())
		blk := d.table.Block(id)
		n := blk.Len()
		if err := d.store.ReadInto(ctx, blk.Start, buf[off:off+n]); err != nil {
			d.controller.ReleaseMemory(bytes)
			return 0, translateError(err)
		}
		spans[id] = span{off: off, n: n}
		off += n
	}

	old := d.cache
	d.version++
	d.cache = &blockCache{
		buf:     buf,
		spans:   spans,
		ids:     set,
		bytes:   bytes,
		version: d.version,
	}
	if old != nil {
		d.controller.ReleaseMemory(old.bytes)
	}

	return total, nil
}
