package segment

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vecseg/model"
)

// Buffer is the dense columnar in-memory buffer backing one segment writer:
// an identifier column, a flat vector column and an optional per-row payload
// column. Rows keep their insertion order; erasure compacts in place.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	dim      int
	ids      []model.DocID
	vectors  []float32
	payloads [][]byte // nil until the first entity row is appended
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Dim returns the vector dimension of the buffered rows (0 while empty).
func (b *Buffer) Dim() int {
	return b.dim
}

// RowCount returns the number of buffered rows.
func (b *Buffer) RowCount() int {
	return len(b.ids)
}

// IDs returns the identifier column. The slice is owned by the buffer and
// only valid until the next mutation.
func (b *Buffer) IDs() []model.DocID {
	return b.ids
}

// Vector returns the vector of row i.
func (b *Buffer) Vector(i int) []float32 {
	return b.vectors[i*b.dim : (i+1)*b.dim]
}

// Payload returns the payload of row i, nil if the row has none.
func (b *Buffer) Payload(i int) []byte {
	if b.payloads == nil {
		return nil
	}
	return b.payloads[i]
}

func (b *Buffer) bindDim(dim int) error {
	if dim <= 0 {
		return fmt.Errorf("segment buffer: invalid dimension %d", dim)
	}
	if b.dim == 0 {
		b.dim = dim
		return nil
	}
	if b.dim != dim {
		return fmt.Errorf("segment buffer: dimension mismatch: buffer %d, batch %d", b.dim, dim)
	}
	return nil
}

// AppendVectors appends len(ids) vector rows. vectors is the flat column of
// the batch and must hold exactly len(ids)*dim components.
func (b *Buffer) AppendVectors(ids []model.DocID, dim int, vectors []float32) error {
	if err := b.bindDim(dim); err != nil {
		return err
	}
	if len(vectors) != len(ids)*dim {
		return fmt.Errorf("segment buffer: vector column length %d, want %d", len(vectors), len(ids)*dim)
	}

	b.ids = append(b.ids, ids...)
	b.vectors = append(b.vectors, vectors...)
	if b.payloads != nil {
		for range ids {
			b.payloads = append(b.payloads, nil)
		}
	}
	return nil
}

// AppendEntities appends len(ids) entity rows: vectors plus one payload per
// row (payload entries may be nil).
func (b *Buffer) AppendEntities(ids []model.DocID, dim int, vectors []float32, payloads [][]byte) error {
	if len(payloads) != len(ids) {
		return fmt.Errorf("segment buffer: payload column length %d, want %d", len(payloads), len(ids))
	}
	if b.payloads == nil {
		// Backfill earlier vector-only rows so the column stays aligned.
		b.payloads = make([][]byte, len(b.ids), len(b.ids)+len(ids))
	}
	if err := b.AppendVectors(ids, dim, vectors); err != nil {
		b.payloads = b.payloads[:len(b.ids)]
		return err
	}
	copy(b.payloads[len(b.ids)-len(ids):], payloads)
	return nil
}

// Erase removes the single physical row at offset i, preserving the
// relative order of all other rows.
func (b *Buffer) Erase(i int) {
	n := len(b.ids)
	if i < 0 || i >= n {
		return
	}

	copy(b.ids[i:], b.ids[i+1:])
	b.ids = b.ids[:n-1]

	copy(b.vectors[i*b.dim:], b.vectors[(i+1)*b.dim:])
	b.vectors = b.vectors[:(n-1)*b.dim]

	if b.payloads != nil {
		copy(b.payloads[i:], b.payloads[i+1:])
		b.payloads[n-1] = nil
		b.payloads = b.payloads[:n-1]
	}
}

// EraseSet removes every row whose offset is in set, in a single
// write-cursor compaction pass, and returns the number of rows removed.
// Order of the surviving rows is preserved.
func (b *Buffer) EraseSet(set *roaring.Bitmap) int {
	if set == nil || set.IsEmpty() {
		return 0
	}

	n := len(b.ids)
	w := 0
	for r := 0; r < n; r++ {
		if set.Contains(uint32(r)) {
			continue
		}
		if w != r {
			b.ids[w] = b.ids[r]
			copy(b.vectors[w*b.dim:(w+1)*b.dim], b.vectors[r*b.dim:(r+1)*b.dim])
			if b.payloads != nil {
				b.payloads[w] = b.payloads[r]
			}
		}
		w++
	}

	removed := n - w
	b.ids = b.ids[:w]
	b.vectors = b.vectors[:w*b.dim]
	if b.payloads != nil {
		for i := w; i < n; i++ {
			b.payloads[i] = nil
		}
		b.payloads = b.payloads[:w]
	}
	return removed
}
