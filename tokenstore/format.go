package tokenstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

const (
	// shardMagic identifies token shard files (ASCII: "TOK1").
	shardMagic = 0x544F4B31
	// shardVersion is the current shard format version (v1.0).
	shardVersion = 0x00010000

	headerSize = 48
	tokenSize  = 4 // int32 little-endian
	sizeSize   = 4 // uint32 little-endian
)

var (
	ErrInvalidMagic   = errors.New("tokenstore: invalid magic number")
	ErrInvalidVersion = errors.New("tokenstore: unsupported shard version")
	ErrCorruptShard   = errors.New("tokenstore: corrupt shard")
)

// ChecksumMismatchError is returned when shard checksum verification fails.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("tokenstore: checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// shardHeader is the fixed-size header at the start of every shard.
//
// Layout (little-endian):
//
//	Magic        uint32
//	Version      uint32
//	Compression  uint8 + 3 pad bytes
//	UnitCount    uint64
//	TokenCount   uint64
//	TokensOffset uint64  byte offset of the token section
//	TokensLength uint64  stored byte length of the token section
//	Checksum     uint32  CRC32 (IEEE) of sizes + stored token section
//
// The sizes section (UnitCount * uint32) follows the header directly.
type shardHeader struct {
	Magic        uint32
	Version      uint32
	Compression  Compression
	UnitCount    uint64
	TokenCount   uint64
	TokensOffset uint64
	TokensLength uint64
	Checksum     uint32
}

func (h *shardHeader) encode() []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:], h.Version)
	buf[8] = uint8(h.Compression)
	binary.LittleEndian.PutUint64(buf[12:], h.UnitCount)
	binary.LittleEndian.PutUint64(buf[20:], h.TokenCount)
	binary.LittleEndian.PutUint64(buf[28:], h.TokensOffset)
	binary.LittleEndian.PutUint64(buf[36:], h.TokensLength)
	binary.LittleEndian.PutUint32(buf[44:], h.Checksum)
	return buf
}

func decodeShardHeader(buf []byte) (*shardHeader, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: short header (%d bytes)", ErrCorruptShard, len(buf))
	}

	h := &shardHeader{
		Magic:        binary.LittleEndian.Uint32(buf[0:]),
		Version:      binary.LittleEndian.Uint32(buf[4:]),
		Compression:  Compression(buf[8]),
		UnitCount:    binary.LittleEndian.Uint64(buf[12:]),
		TokenCount:   binary.LittleEndian.Uint64(buf[20:]),
		TokensOffset: binary.LittleEndian.Uint64(buf[28:]),
		TokensLength: binary.LittleEndian.Uint64(buf[36:]),
		Checksum:     binary.LittleEndian.Uint32(buf[44:]),
	}

	if h.Magic != shardMagic {
		return nil, ErrInvalidMagic
	}
	if h.Version != shardVersion {
		return nil, ErrInvalidVersion
	}
	if !h.Compression.valid() {
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptShard, uint8(h.Compression))
	}
	return h, nil
}

func (h *shardHeader) sizesOffset() uint64 {
	return headerSize
}

func (h *shardHeader) sizesLength() uint64 {
	return h.UnitCount * sizeSize
}

// verifyChecksum checks the CRC32 over the sizes and token sections.
func (h *shardHeader) verifyChecksum(data []byte) error {
	so, sl := h.sizesOffset(), h.sizesLength()
	if uint64(len(data)) < so+sl || uint64(len(data)) < h.TokensOffset+h.TokensLength {
		return fmt.Errorf("%w: truncated shard", ErrCorruptShard)
	}

	crc := crc32.NewIEEE()
	crc.Write(data[so : so+sl])
	crc.Write(data[h.TokensOffset : h.TokensOffset+h.TokensLength])

	if actual := crc.Sum32(); actual != h.Checksum {
		return &ChecksumMismatchError{Expected: h.Checksum, Actual: actual}
	}
	return nil
}

func decodeSizes(data []byte, h *shardHeader) []int {
	so := h.sizesOffset()
	return decodeSizesSection(data[so:so+h.sizesLength()], int(h.UnitCount))
}

func decodeSizesSection(section []byte, count int) []int {
	sizes := make([]int, count)
	for i := range sizes {
		sizes[i] = int(binary.LittleEndian.Uint32(section[i*sizeSize:]))
	}
	return sizes
}
