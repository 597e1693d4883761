// Package tokgo turns a flat tokenized corpus into a block-addressable
// training dataset for Go.
//
// Tokgo reads a token stream (int32 tokens, structured only by the
// ordered lengths of its units) and partitions it into contiguous
// blocks, with production-ready features including:
//
//   - Three segmentation policies: BreakNone (fixed-size blocks),
//     BreakComplete (whole units packed up to the block size), BreakEOS
//     (one block per non-empty unit)
//   - Batched prefetch: one contiguous buffer per prefetch, loaded in a
//     single pass over the requested blocks
//   - Shifted Source/PastTarget views for next-token prediction, with
//     pad/eos sentinel substitution at the stream start
//   - mmap-backed shard files with CRC32 checksums and optional zstd/lz4
//     compression
//   - Remote shards on S3 or MinIO, with block-level LRU caching and
//     coalesced parallel fills
//   - Shared memory and IO budgets via a resource controller
//
// # Quick Start
//
// Open a shard and iterate over blocks:
//
//	store, err := tokenstore.OpenFile("corpus/shard-000.tok")
//	if err != nil {
//	    panic(err)
//	}
//	defer store.Close()
//
//	ds, err := tokgo.New(store,
//	    tokgo.WithBlockSize(512),
//	    tokgo.WithBreakMode(blockindex.BreakComplete),
//	)
//	if err != nil {
//	    panic(err)
//	}
//	defer ds.Close()
//
//	ids := []int{0, 1, 2, 3}
//	if err := ds.Prefetch(ctx, ids); err != nil {
//	    panic(err)
//	}
//	for _, id := range ids {
//	    sample, err := ds.Get(ctx, id)
//	    if err != nil {
//	        panic(err)
//	    }
//	    process(sample.Target)
//	}
//
// Enable shifted views for language-model training:
//
//	ds, err := tokgo.New(store,
//	    tokgo.WithBlockSize(512),
//	    tokgo.WithTargets(padToken, eosToken),
//	)
//
// # Prefetch Semantics
//
// Each Prefetch call fully replaces the previous prefetch window: only
// blocks named in the most recent successful call can be fetched with
// Get. A failed Prefetch leaves the previous window intact. Sample
// slices alias the prefetch buffer and stay valid until the next
// Prefetch or Close.
package tokgo

import (
	"context"
	"time"

	"github.com/hupe1980/tokgo/blockindex"
	"github.com/hupe1980/tokgo/resource"
	"github.com/hupe1980/tokgo/tokenstore"
)

// Dataset is a block-addressable view of a token stream.
//
// A Dataset is safe for concurrent Get calls, but Prefetch must not run
// concurrently with Get or another Prefetch. The usual pattern is one
// loader goroutine alternating prefetch/consume phases.
type Dataset struct {
	store          tokenstore.Store
	table          *blockindex.Table
	includeTargets bool
	pad            tokenstore.Token
	eos            tokenstore.Token
	metrics        MetricsCollector
	logger         *Logger
	controller     *resource.Controller
	cache          *blockCache
	version        uint64
}

// New creates a Dataset over the given store.
//
// The unit sizes are taken from store.Sizes() and the block table is
// computed eagerly; construction fails on an invalid block size or
// break mode. The store remains owned by the caller and is not closed
// by the Dataset.
func New(store tokenstore.Store, optFns ...Option) (*Dataset, error) {
	opts := applyOptions(optFns)

	table, err := blockindex.Build(store.Sizes(), opts.blockSize, opts.breakMode)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		store:          store,
		table:          table,
		includeTargets: opts.includeTargets,
		pad:            opts.pad,
		eos:            opts.eos,
		metrics:        opts.metricsCollector,
		logger:         opts.logger,
		controller:     opts.controller,
	}, nil
}

// BlockCount returns the number of blocks in the dataset.
func (d *Dataset) BlockCount() int {
	return d.table.Len()
}

// BlockLength returns the token count of the block with the given id.
func (d *Dataset) BlockLength(id int) (int, error) {
	if id < 0 || id >= d.table.Len() {
		return 0, &ErrInvalidBlockID{ID: id, Blocks: d.table.Len()}
	}
	return d.table.Length(id), nil
}

// BlockLengths returns the per-block token counts, in block-id order.
// Length-based batch samplers consume this directly.
func (d *Dataset) BlockLengths() []int {
	return d.table.Lengths()
}

// TotalTokens returns the total token count of the underlying stream.
func (d *Dataset) TotalTokens() int64 {
	return d.table.TotalTokens()
}

// SupportsBatchedPrefetch reports whether Prefetch batches reads.
// Always true for this implementation.
func (d *Dataset) SupportsBatchedPrefetch() bool {
	return true
}

// CachedBlocks returns the ids in the current prefetch window, sorted
// ascending. It returns nil before the first successful Prefetch.
func (d *Dataset) CachedBlocks() []int {
	if d.cache == nil {
		return nil
	}
	ids := make([]int, 0, d.cache.ids.GetCardinality())
	it := d.cache.ids.Iterator()
	for it.HasNext() {
		ids = append(ids, int(it.Next()))
	}
	return ids
}

// Prefetch loads the given blocks into a fresh contiguous buffer,
// replacing the previous prefetch window. Duplicate ids are loaded
// once. On error the previous window stays valid.
func (d *Dataset) Prefetch(ctx context.Context, ids []int) error {
	start := time.Now()
	tokens, err := d.prefetch(ctx, ids)
	duration := time.Since(start)
	d.metrics.RecordPrefetch(len(ids), tokens, duration, err)
	d.logger.LogPrefetch(ctx, len(ids), tokens, err)
	return err
}

// Get returns the sample for the given block id. The id must be part
// of the current prefetch window, otherwise Get fails with
// *ErrNotPrefetched.
func (d *Dataset) Get(ctx context.Context, id int) (Sample, error) {
	start := time.Now()
	sample, err := d.get(ctx, id)
	duration := time.Since(start)
	d.metrics.RecordGet(duration, err)
	d.logger.LogGet(ctx, id, len(sample.Target), err)
	return sample, err
}

// Close drops the prefetch window and releases its memory reservation.
// The underlying store is not closed.
func (d *Dataset) Close() error {
	if d.cache != nil {
		d.controller.ReleaseMemory(d.cache.bytes)
		d.cache = nil
	}
	return nil
}
