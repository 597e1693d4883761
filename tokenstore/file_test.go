package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUnits = [][]Token{
	{10, 11, 12, 13},
	{20, 21},
	{},
	{30, 31, 32},
}

func openTestShard(t *testing.T, c Compression) *FileStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shard-000.tok")
	require.NoError(t, WriteFile(path, testUnits, c))

	s, err := OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFileStore_Roundtrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			s := openTestShard(t, c)

			assert.Equal(t, []int{4, 2, 0, 3}, s.Sizes())

			dst := make([]Token, 9)
			require.NoError(t, s.ReadInto(context.Background(), 0, dst))
			assert.Equal(t, []Token{10, 11, 12, 13, 20, 21, 30, 31, 32}, dst)

			// Interior range crossing unit boundaries.
			dst = make([]Token, 3)
			require.NoError(t, s.ReadInto(context.Background(), 3, dst))
			assert.Equal(t, []Token{13, 20, 21}, dst)
		})
	}
}

func TestFileStore_OutOfRange(t *testing.T) {
	s := openTestShard(t, CompressionNone)

	var re *RangeError
	err := s.ReadInto(context.Background(), 8, make([]Token, 2))
	require.ErrorAs(t, err, &re)
}

func TestOpenFile_RejectsShortFile(t *testing.T) {
	// Too short to hold a header.
	short := filepath.Join(t.TempDir(), "short.tok")
	require.NoError(t, os.WriteFile(short, make([]byte, 10), 0o644))
	_, err := OpenFile(short)
	require.ErrorIs(t, err, ErrCorruptShard)
}

func TestOpenBytes_ChecksumMismatch(t *testing.T) {
	data, err := Encode(testUnits, CompressionNone)
	require.NoError(t, err)

	// Flip a token byte; the header checksum must catch it.
	data[len(data)-1] ^= 0xFF

	_, err = OpenBytes(data)
	var mismatch *ChecksumMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestOpenBytes_BadMagicAndVersion(t *testing.T) {
	data, err := Encode(testUnits, CompressionNone)
	require.NoError(t, err)

	bad := make([]byte, len(data))
	copy(bad, data)
	bad[0] = 'X'
	_, err = OpenBytes(bad)
	require.ErrorIs(t, err, ErrInvalidMagic)

	copy(bad, data)
	bad[4] = 0xFF
	_, err = OpenBytes(bad)
	require.ErrorIs(t, err, ErrInvalidVersion)
}

func TestEncode_EmptyCorpus(t *testing.T) {
	data, err := Encode(nil, CompressionNone)
	require.NoError(t, err)

	s, err := OpenBytes(data)
	require.NoError(t, err)
	defer s.Close()

	assert.Empty(t, s.Sizes())
	require.NoError(t, s.ReadInto(context.Background(), 0, nil))
}

func TestCompression_String(t *testing.T) {
	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "lz4", CompressionLZ4.String())
	assert.Equal(t, "zstd", CompressionZSTD.String())
}
