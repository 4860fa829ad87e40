package segment

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecseg/model"
)

// Segment file layout, little-endian:
//
//	magic      uint32  "VSEG"
//	version    uint16
//	compress   uint8
//	flags      uint8   bit 0: payload column present
//	dim        uint32
//	rowCount   uint64
//	id block            framed column block (rowCount * 8 bytes raw)
//	vector block        framed column block (rowCount * dim * 4 bytes raw)
//	payload block       framed column block, only if flag set
//	checksum   uint32  CRC32 (IEEE) of everything above
const (
	fileMagic     uint32 = 0x56534547 // "VSEG"
	formatVersion uint16 = 1

	headerSize = 4 + 2 + 1 + 1 + 4 + 8

	flagHasPayloads uint8 = 1 << 0
)

// FileSuffix is the suffix of serialized segment files.
const FileSuffix = ".seg"

func encodeIDColumn(ids []model.DocID) []byte {
	out := make([]byte, len(ids)*8)
	for i, id := range ids {
		binary.LittleEndian.PutUint64(out[i*8:], uint64(id))
	}
	return out
}

func encodeVectorColumn(vectors []float32) []byte {
	out := make([]byte, len(vectors)*4)
	for i, v := range vectors {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func encodePayloadColumn(payloads [][]byte) []byte {
	size := 0
	for _, p := range payloads {
		size += 4 + len(p)
	}
	out := make([]byte, 0, size)
	var lenBuf [4]byte
	for _, p := range payloads {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p)))
		out = append(out, lenBuf[:]...)
		out = append(out, p...)
	}
	return out
}

// encodeFile serializes the buffer into the on-disk segment file format.
// Column blocks are compressed concurrently.
func encodeFile(ctx context.Context, buf *Buffer, ct CompressionType) ([]byte, error) {
	n := buf.RowCount()
	hasPayloads := buf.payloads != nil

	blocks := make([][]byte, 3)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := compressBlock(encodeIDColumn(buf.ids), ct)
		blocks[0] = b
		return err
	})
	g.Go(func() error {
		b, err := compressBlock(encodeVectorColumn(buf.vectors), ct)
		blocks[1] = b
		return err
	})
	if hasPayloads {
		g.Go(func() error {
			b, err := compressBlock(encodePayloadColumn(buf.payloads), ct)
			blocks[2] = b
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(headerSize + len(blocks[0]) + len(blocks[1]) + len(blocks[2]) + 4)

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:], fileMagic)
	binary.LittleEndian.PutUint16(header[4:], formatVersion)
	header[6] = uint8(ct)
	if hasPayloads {
		header[7] |= flagHasPayloads
	}
	binary.LittleEndian.PutUint32(header[8:], uint32(buf.dim))
	binary.LittleEndian.PutUint64(header[12:], uint64(n))
	out.Write(header[:])

	out.Write(blocks[0])
	out.Write(blocks[1])
	if hasPayloads {
		out.Write(blocks[2])
	}

	var sum [4]byte
	binary.LittleEndian.PutUint32(sum[:], crc32.ChecksumIEEE(out.Bytes()))
	out.Write(sum[:])

	return out.Bytes(), nil
}

// Data is the decoded content of a segment file.
type Data struct {
	Dim      int
	IDs      []model.DocID
	Vectors  []float32 // flat, len == len(IDs) * Dim
	Payloads [][]byte  // nil if the file has no payload column
}

// decodeFile parses and verifies a serialized segment file.
func decodeFile(data []byte) (*Data, error) {
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("segment: file truncated (%d bytes)", len(data))
	}

	body, sum := data[:len(data)-4], data[len(data)-4:]
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(sum) {
		return nil, fmt.Errorf("segment: checksum mismatch")
	}

	if binary.LittleEndian.Uint32(body[0:]) != fileMagic {
		return nil, fmt.Errorf("segment: bad magic")
	}
	if v := binary.LittleEndian.Uint16(body[4:]); v != formatVersion {
		return nil, fmt.Errorf("segment: unsupported format version %d", v)
	}
	ct := CompressionType(body[6])
	hasPayloads := body[7]&flagHasPayloads != 0
	dim := int(binary.LittleEndian.Uint32(body[8:]))
	rows := int(binary.LittleEndian.Uint64(body[12:]))

	off := int64(headerSize)

	idsRaw, off, err := decompressBlock(body, off, ct)
	if err != nil {
		return nil, err
	}
	if len(idsRaw) != rows*8 {
		return nil, fmt.Errorf("segment: id column size %d, want %d", len(idsRaw), rows*8)
	}
	ids := make([]model.DocID, rows)
	for i := range ids {
		ids[i] = model.DocID(binary.LittleEndian.Uint64(idsRaw[i*8:]))
	}

	vecRaw, off, err := decompressBlock(body, off, ct)
	if err != nil {
		return nil, err
	}
	if len(vecRaw) != rows*dim*4 {
		return nil, fmt.Errorf("segment: vector column size %d, want %d", len(vecRaw), rows*dim*4)
	}
	vectors := make([]float32, rows*dim)
	for i := range vectors {
		vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(vecRaw[i*4:]))
	}

	out := &Data{Dim: dim, IDs: ids, Vectors: vectors}

	if hasPayloads {
		payRaw, _, err := decompressBlock(body, off, ct)
		if err != nil {
			return nil, err
		}
		payloads := make([][]byte, rows)
		pos := 0
		for i := 0; i < rows; i++ {
			if pos+4 > len(payRaw) {
				return nil, fmt.Errorf("segment: payload column truncated at row %d", i)
			}
			l := int(binary.LittleEndian.Uint32(payRaw[pos:]))
			pos += 4
			if pos+l > len(payRaw) {
				return nil, fmt.Errorf("segment: payload column truncated at row %d", i)
			}
			if l > 0 {
				payloads[i] = append([]byte(nil), payRaw[pos:pos+l]...)
			}
			pos += l
		}
		out.Payloads = payloads
	}

	return out, nil
}
