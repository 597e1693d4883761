package tokenstore

import (
	"encoding/binary"
	"hash/crc32"
	"os"
)

// Encode serializes units into the binary shard format.
//
// The token section is stored according to c; sizes and header are
// always raw so a reader can locate blocks without decompressing.
func Encode(units [][]Token, c Compression) ([]byte, error) {
	var tokenCount int
	for _, u := range units {
		tokenCount += len(u)
	}

	sizes := make([]byte, len(units)*sizeSize)
	for i, u := range units {
		binary.LittleEndian.PutUint32(sizes[i*sizeSize:], uint32(len(u)))
	}

	raw := make([]byte, tokenCount*tokenSize)
	off := 0
	for _, u := range units {
		for _, tok := range u {
			binary.LittleEndian.PutUint32(raw[off:], uint32(tok))
			off += tokenSize
		}
	}

	stored := raw
	if c != CompressionNone {
		var err error
		stored, err = compressSection(raw, c)
		if err != nil {
			return nil, err
		}
	}

	crc := crc32.NewIEEE()
	crc.Write(sizes)
	crc.Write(stored)

	h := &shardHeader{
		Magic:        shardMagic,
		Version:      shardVersion,
		Compression:  c,
		UnitCount:    uint64(len(units)),
		TokenCount:   uint64(tokenCount),
		TokensOffset: uint64(headerSize + len(sizes)),
		TokensLength: uint64(len(stored)),
		Checksum:     crc.Sum32(),
	}

	out := make([]byte, 0, headerSize+len(sizes)+len(stored))
	out = append(out, h.encode()...)
	out = append(out, sizes...)
	out = append(out, stored...)
	return out, nil
}

// WriteFile encodes units and writes the shard to path.
func WriteFile(path string, units [][]Token, c Compression) error {
	data, err := Encode(units, c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
