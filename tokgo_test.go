package tokgo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tokgo/blockindex"
	"github.com/hupe1980/tokgo/resource"
	"github.com/hupe1980/tokgo/tokenstore"
)

const (
	testPad = tokenstore.Token(1)
	testEOS = tokenstore.Token(2)
)

// Two units of three tokens each; stream = 10..15.
func newTestStore() *tokenstore.MemoryStore {
	return tokenstore.NewMemoryStore([][]tokenstore.Token{
		{10, 11, 12},
		{13, 14, 15},
	})
}

func TestNew_InvalidBlockSize(t *testing.T) {
	_, err := New(newTestStore(), WithBlockSize(0))
	require.ErrorIs(t, err, blockindex.ErrInvalidBlockSize)
}

func TestNew_InvalidBreakMode(t *testing.T) {
	var ibm *blockindex.ErrInvalidBreakMode
	_, err := New(newTestStore(), WithBreakMode(blockindex.BreakMode(99)))
	require.ErrorAs(t, err, &ibm)
}

func TestDataset_Accessors(t *testing.T) {
	ds, err := New(newTestStore(), WithBlockSize(4))
	require.NoError(t, err)
	defer ds.Close()

	assert.Equal(t, 2, ds.BlockCount())
	assert.Equal(t, int64(6), ds.TotalTokens())
	assert.Equal(t, []int{4, 2}, ds.BlockLengths())
	assert.True(t, ds.SupportsBatchedPrefetch())
	assert.Nil(t, ds.CachedBlocks())

	n, err := ds.BlockLength(0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	var ib *ErrInvalidBlockID
	_, err = ds.BlockLength(2)
	require.ErrorAs(t, err, &ib)
	assert.Equal(t, 2, ib.ID)
}

func TestDataset_PrefetchGet(t *testing.T) {
	ctx := context.Background()

	ds, err := New(newTestStore(), WithBlockSize(4))
	require.NoError(t, err)
	defer ds.Close()

	// Get before any prefetch.
	var np *ErrNotPrefetched
	_, err = ds.Get(ctx, 0)
	require.ErrorAs(t, err, &np)

	require.NoError(t, ds.Prefetch(ctx, []int{1, 0, 1}))
	assert.Equal(t, []int{0, 1}, ds.CachedBlocks())

	s0, err := ds.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []tokenstore.Token{10, 11, 12, 13}, s0.Target)
	assert.Nil(t, s0.Source)
	assert.Nil(t, s0.PastTarget)

	s1, err := ds.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []tokenstore.Token{14, 15}, s1.Target)

	var ib *ErrInvalidBlockID
	_, err = ds.Get(ctx, -1)
	require.ErrorAs(t, err, &ib)
	err = ds.Prefetch(ctx, []int{2})
	require.ErrorAs(t, err, &ib)
}

func TestDataset_PrefetchReplacesWindow(t *testing.T) {
	ctx := context.Background()

	ds, err := New(newTestStore(), WithBlockSize(4))
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Prefetch(ctx, []int{0}))
	_, err = ds.Get(ctx, 0)
	require.NoError(t, err)

	require.NoError(t, ds.Prefetch(ctx, []int{1}))
	assert.Equal(t, []int{1}, ds.CachedBlocks())

	var np *ErrNotPrefetched
	_, err = ds.Get(ctx, 0)
	require.ErrorAs(t, err, &np)
	assert.Equal(t, 0, np.ID)

	_, err = ds.Get(ctx, 1)
	require.NoError(t, err)
}

func TestDataset_Targets(t *testing.T) {
	ctx := context.Background()

	ds, err := New(newTestStore(), WithBlockSize(4), WithTargets(testPad, testEOS))
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Prefetch(ctx, []int{0, 1}))

	// Block 0 starts the stream: sentinels substitute the missing
	// predecessors.
	s0, err := ds.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []tokenstore.Token{10, 11, 12, 13}, s0.Target)
	assert.Equal(t, []tokenstore.Token{testEOS, 10, 11, 12}, s0.Source)
	assert.Equal(t, []tokenstore.Token{testPad, testEOS, 10, 11}, s0.PastTarget)

	// Block 1 is mid-stream: shifted views reach into block 0.
	s1, err := ds.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []tokenstore.Token{14, 15}, s1.Target)
	assert.Equal(t, []tokenstore.Token{13, 14}, s1.Source)
	assert.Equal(t, []tokenstore.Token{12, 13}, s1.PastTarget)
}

func TestDataset_TargetsIndependentOfWindow(t *testing.T) {
	ctx := context.Background()

	ds, err := New(newTestStore(), WithBlockSize(4), WithTargets(testPad, testEOS))
	require.NoError(t, err)
	defer ds.Close()

	// Only block 1 prefetched: predecessor tokens come from the store.
	require.NoError(t, ds.Prefetch(ctx, []int{1}))

	s1, err := ds.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []tokenstore.Token{14, 15}, s1.Target)
	assert.Equal(t, []tokenstore.Token{13, 14}, s1.Source)
	assert.Equal(t, []tokenstore.Token{12, 13}, s1.PastTarget)
}

func TestDataset_TargetsSingleTokenBlocks(t *testing.T) {
	ctx := context.Background()

	store := tokenstore.NewMemoryStore([][]tokenstore.Token{{10, 11, 12}})
	ds, err := New(store, WithBlockSize(1), WithTargets(testPad, testEOS))
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Prefetch(ctx, []int{0, 1, 2}))

	s0, err := ds.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []tokenstore.Token{10}, s0.Target)
	assert.Equal(t, []tokenstore.Token{testEOS}, s0.Source)
	assert.Equal(t, []tokenstore.Token{testPad}, s0.PastTarget)

	// A block starting at position one has only one real predecessor.
	s1, err := ds.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []tokenstore.Token{11}, s1.Target)
	assert.Equal(t, []tokenstore.Token{10}, s1.Source)
	assert.Equal(t, []tokenstore.Token{testEOS}, s1.PastTarget)

	s2, err := ds.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []tokenstore.Token{11}, s2.Source)
	assert.Equal(t, []tokenstore.Token{10}, s2.PastTarget)
}

func TestDataset_EOSMode(t *testing.T) {
	ctx := context.Background()

	store := tokenstore.NewMemoryStore([][]tokenstore.Token{
		{},
		{10, 11},
		{},
		{12, 13, 14},
	})
	ds, err := New(store, WithBreakMode(blockindex.BreakEOS))
	require.NoError(t, err)
	defer ds.Close()

	require.Equal(t, 2, ds.BlockCount())
	require.NoError(t, ds.Prefetch(ctx, []int{0, 1}))

	s0, err := ds.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []tokenstore.Token{10, 11}, s0.Target)

	s1, err := ds.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []tokenstore.Token{12, 13, 14}, s1.Target)
}

// failingStore delegates to a MemoryStore but fails reads at or beyond
// failAt.
type failingStore struct {
	*tokenstore.MemoryStore
	failAt int64
}

var errRead = errors.New("read failed")

func (s *failingStore) ReadInto(ctx context.Context, start int64, dst []tokenstore.Token) error {
	if start >= s.failAt {
		return errRead
	}
	return s.MemoryStore.ReadInto(ctx, start, dst)
}

func TestDataset_FailedPrefetchKeepsWindow(t *testing.T) {
	ctx := context.Background()

	store := &failingStore{MemoryStore: newTestStore(), failAt: 4}
	ds, err := New(store, WithBlockSize(4))
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Prefetch(ctx, []int{0}))

	err = ds.Prefetch(ctx, []int{0, 1})
	require.ErrorIs(t, err, errRead)

	// The previous window is still intact.
	assert.Equal(t, []int{0}, ds.CachedBlocks())
	s0, err := ds.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []tokenstore.Token{10, 11, 12, 13}, s0.Target)
}

func TestDataset_OutOfRangeTranslated(t *testing.T) {
	ctx := context.Background()

	// Sizes claim more tokens than the stream holds.
	store := &shortStore{MemoryStore: newTestStore()}
	ds, err := New(store, WithBlockSize(4))
	require.NoError(t, err)
	defer ds.Close()

	err = ds.Prefetch(ctx, []int{1})
	require.ErrorIs(t, err, ErrOutOfRange)

	var re *tokenstore.RangeError
	require.ErrorAs(t, err, &re)
}

// shortStore reports one phantom unit beyond the real stream.
type shortStore struct {
	*tokenstore.MemoryStore
}

func (s *shortStore) Sizes() []int {
	return append(append([]int{}, s.MemoryStore.Sizes()...), 2)
}

func TestDataset_ResourceAccounting(t *testing.T) {
	ctx := context.Background()

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
	ds, err := New(newTestStore(), WithBlockSize(4), WithResourceController(rc))
	require.NoError(t, err)

	require.NoError(t, ds.Prefetch(ctx, []int{0, 1}))
	assert.Equal(t, int64(6*4), rc.MemoryUsage())

	// Replacement releases the superseded buffer.
	require.NoError(t, ds.Prefetch(ctx, []int{1}))
	assert.Equal(t, int64(2*4), rc.MemoryUsage())

	require.NoError(t, ds.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestDataset_Metrics(t *testing.T) {
	ctx := context.Background()

	metrics := &BasicMetricsCollector{}
	ds, err := New(newTestStore(), WithBlockSize(4), WithMetricsCollector(metrics))
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Prefetch(ctx, []int{0, 1}))
	_, err = ds.Get(ctx, 0)
	require.NoError(t, err)
	_, err = ds.Get(ctx, 5)
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.PrefetchCount)
	assert.Equal(t, int64(6), stats.PrefetchTokens)
	assert.Equal(t, int64(2), stats.GetCount)
	assert.Equal(t, int64(1), stats.GetErrors)
}
