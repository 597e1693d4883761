package tokenstore

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the token section encoding of a shard.
type Compression uint8

const (
	// CompressionNone stores tokens raw (enables zero-copy ranged reads).
	CompressionNone Compression = 0
	// CompressionLZ4 stores the token section LZ4 block compressed
	// (fast decompression, good for hot shards).
	CompressionLZ4 Compression = 1
	// CompressionZSTD stores the token section ZSTD compressed
	// (better ratio, good for cold shards).
	CompressionZSTD Compression = 2
)

func (c Compression) valid() bool {
	return c <= CompressionZSTD
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// sectionHeaderSize prefixes every compressed section.
// Format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 means the section is stored uncompressed.
const sectionHeaderSize = 8

// compressSection compresses a section using the specified algorithm.
// Incompressible data (ratio > 0.9) is stored raw behind the header.
func compressSection(data []byte, c Compression) ([]byte, error) {
	var compressed []byte

	switch c {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n] // n == 0 means incompressible

	case CompressionZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)
		compressed = enc.EncodeAll(data, nil)

	default:
		return data, nil
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, sectionHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[sectionHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, sectionHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[sectionHeaderSize:], compressed)
	return result, nil
}

// decompressSection reverses compressSection.
func decompressSection(data []byte, c Compression) ([]byte, error) {
	if c == CompressionNone {
		return data, nil
	}
	if len(data) < sectionHeaderSize {
		return nil, fmt.Errorf("%w: section too small for header", ErrCorruptShard)
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if compressedSize == 0 {
		if uint32(len(data)) < sectionHeaderSize+uncompressedSize {
			return nil, fmt.Errorf("%w: truncated raw section", ErrCorruptShard)
		}
		return data[sectionHeaderSize : sectionHeaderSize+uncompressedSize], nil
	}

	if uint32(len(data)) < sectionHeaderSize+compressedSize {
		return nil, fmt.Errorf("%w: truncated compressed section", ErrCorruptShard)
	}
	payload := data[sectionHeaderSize : sectionHeaderSize+compressedSize]
	result := make([]byte, uncompressedSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(payload, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptShard)
		}
		return result, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(payload, result[:0])
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptShard)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptShard, uint8(c))
	}
}
