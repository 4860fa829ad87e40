package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm for column blocks.
type CompressionType uint8

const (
	// CompressionNone stores column blocks uncompressed.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD CompressionType = 2
)

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

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 means the block is stored raw.
const blockHeaderSize = 8

// compressBlock frames and optionally compresses one column block.
// Incompressible blocks (ratio > 0.9) are stored raw.
func compressBlock(data []byte, ct CompressionType) ([]byte, error) {
	var compressed []byte
	var err error

	switch ct {
	case CompressionNone:
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("segment: unknown compression type %d", ct)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

// decompressBlock decodes one framed block starting at data[off] and returns
// the payload plus the offset just past the block.
func decompressBlock(data []byte, off int64, ct CompressionType) ([]byte, int64, error) {
	if off+blockHeaderSize > int64(len(data)) {
		return nil, 0, errors.New("segment: block too small for header")
	}

	uncompressedSize := int64(binary.LittleEndian.Uint32(data[off:]))
	compressedSize := int64(binary.LittleEndian.Uint32(data[off+4:]))
	body := off + blockHeaderSize

	if compressedSize == 0 {
		if body+uncompressedSize > int64(len(data)) {
			return nil, 0, errors.New("segment: block extends beyond data")
		}
		return data[body : body+uncompressedSize], body + uncompressedSize, nil
	}

	if body+compressedSize > int64(len(data)) {
		return nil, 0, errors.New("segment: compressed block extends beyond data")
	}
	compressedData := data[body : body+compressedSize]
	result := make([]byte, uncompressedSize)

	switch ct {
	case CompressionZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(compressedData, result[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, 0, err
		}
		if int64(len(decoded)) != uncompressedSize {
			return nil, 0, errors.New("segment: decompressed size mismatch")
		}
		return decoded, body + compressedSize, nil

	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressedData, result)
		if err != nil {
			return nil, 0, err
		}
		if int64(n) != uncompressedSize {
			return nil, 0, errors.New("segment: decompressed size mismatch")
		}
		return result, body + compressedSize, nil

	default:
		return nil, 0, fmt.Errorf("segment: unknown compression type %d", ct)
	}
}
