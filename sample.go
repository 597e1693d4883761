package tokgo

import (
	"context"

	"github.com/hupe1980/tokgo/tokenstore"
)

// Sample is the training view of one block.
//
// Target aliases the prefetch buffer and stays valid until the next
// Prefetch or Close. Source and PastTarget are only filled when targets
// are enabled (WithTargets) and are freshly allocated per call.
type Sample struct {
	// Target holds the block's tokens, unshifted.
	Target []tokenstore.Token

	// Source is Target shifted right by one position: Source[i] is the
	// token preceding Target[i] in the stream, with the eos sentinel
	// substituted before position zero.
	Source []tokenstore.Token

	// PastTarget is Target shifted right by two positions, with pad and
	// eos sentinels substituted before position zero.
	PastTarget []tokenstore.Token
}

func (d *Dataset) get(ctx context.Context, id int) (Sample, error) {
	if id < 0 || id >= d.table.Len() {
		return Sample{}, &ErrInvalidBlockID{ID: id, Blocks: d.table.Len()}
	}

	c := d.cache
	if c == nil || !c.ids.Contains(uint32(id)) {
		return Sample{}, &ErrNotPrefetched{ID: id}
	}

	sp := c.spans[id]
	sample := Sample{Target: c.buf[sp.off : sp.off+sp.n : sp.off+sp.n]}

	if !d.includeTargets {
		return sample, nil
	}

	blk := d.table.Block(id)
	n := sp.n

	source := make([]tokenstore.Token, n)
	past := make([]tokenstore.Token, n)

	// Positions >= blk.Start come straight from the block's own span;
	// only the one or two predecessor tokens need a separate lookup.
	copy(source[1:], sample.Target)
	copy(past[2:], sample.Target)

	var err error
	if source[0], err = d.tokenAt(ctx, c, blk.Start-1); err != nil {
		return Sample{}, err
	}
	past[0], err = d.tokenAt(ctx, c, blk.Start-2)
	if err != nil {
		return Sample{}, err
	}
	if n > 1 {
		past[1] = source[0]
	}

	sample.Source = source
	sample.PastTarget = past
	return sample, nil
}

// tokenAt resolves one global stream position for the shifted views.
// Virtual positions before the stream map to the sentinels. Cached
// blocks are served from the prefetch buffer; anything else falls back
// to a single-token store read, so shifted views do not depend on which
// neighboring blocks happen to be prefetched.
func (d *Dataset) tokenAt(ctx context.Context, c *blockCache, pos int64) (tokenstore.Token, error) {
	switch pos {
	case -1:
		return d.eos, nil
	case -2:
		return d.pad, nil
	}

	if bid, ok := d.table.Find(pos); ok {
		if sp, ok := c.spans[bid]; ok {
			blk := d.table.Block(bid)
			return c.buf[sp.off+int(pos-blk.Start)], nil
		}
	}

	var one [1]tokenstore.Token
	if err := d.store.ReadInto(ctx, pos, one[:]); err != nil {
		return 0, translateError(err)
	}
	return one[0], nil
}
