package segment

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecseg/model"
)

func TestBufferAppendVectors(t *testing.T) {
	b := NewBuffer()

	err := b.AppendVectors([]model.DocID{1, 2}, 2, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	assert.Equal(t, 2, b.RowCount())
	assert.Equal(t, 2, b.Dim())
	assert.Equal(t, []float32{3, 4}, b.Vector(1))
}

func TestBufferDimBinding(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, b.AppendVectors([]model.DocID{1}, 2, []float32{1, 2}))

	// The first append fixes the dimension.
	err := b.AppendVectors([]model.DocID{2}, 3, []float32{1, 2, 3})
	require.Error(t, err)
	assert.Equal(t, 1, b.RowCount())
}

func TestBufferColumnLengthCheck(t *testing.T) {
	b := NewBuffer()
	err := b.AppendVectors([]model.DocID{1, 2}, 2, []float32{1, 2, 3})
	require.Error(t, err)
	assert.Equal(t, 0, b.RowCount())
}

func TestBufferPayloadBackfill(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, b.AppendVectors([]model.DocID{1}, 1, []float32{1}))
	require.NoError(t, b.AppendEntities([]model.DocID{2}, 1, []float32{2}, [][]byte{[]byte("p")}))

	// The earlier vector-only row gets a nil payload slot.
	assert.Nil(t, b.Payload(0))
	assert.Equal(t, []byte("p"), b.Payload(1))

	// Vector-only rows after the column exists pad it.
	require.NoError(t, b.AppendVectors([]model.DocID{3}, 1, []float32{3}))
	assert.Nil(t, b.Payload(2))
}

func TestBufferErase(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, b.AppendVectors([]model.DocID{1, 2, 3}, 1, []float32{1, 2, 3}))

	b.Erase(1)

	assert.Equal(t, []model.DocID{1, 3}, b.IDs())
	assert.Equal(t, []float32{1}, b.Vector(0))
	assert.Equal(t, []float32{3}, b.Vector(1))

	// Out-of-range offsets are ignored.
	b.Erase(-1)
	b.Erase(5)
	assert.Equal(t, 2, b.RowCount())
}

func TestBufferEraseSet(t *testing.T) {
	b := NewBuffer()
	ids := []model.DocID{5, 2, 9, 2, 7}
	require.NoError(t, b.AppendVectors(ids, 1, []float32{5, 2, 9, 2, 7}))

	set := roaring.New()
	set.Add(1)
	set.Add(2)
	set.Add(3)

	removed := b.EraseSet(set)

	assert.Equal(t, 3, removed)
	assert.Equal(t, []model.DocID{5, 7}, b.IDs())
	assert.Equal(t, []float32{5}, b.Vector(0))
	assert.Equal(t, []float32{7}, b.Vector(1))
}

func TestBufferEraseSetEmpty(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, b.AppendVectors([]model.DocID{1}, 1, []float32{1}))

	assert.Equal(t, 0, b.EraseSet(nil))
	assert.Equal(t, 0, b.EraseSet(roaring.New()))
	assert.Equal(t, 1, b.RowCount())
}

func TestBufferEraseSetWithPayloads(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, b.AppendEntities(
		[]model.DocID{1, 2, 3}, 1, []float32{1, 2, 3},
		[][]byte{[]byte("a"), []byte("b"), []byte("c")},
	))

	set := roaring.New()
	set.Add(0)
	set.Add(2)

	assert.Equal(t, 2, b.EraseSet(set))
	assert.Equal(t, []model.DocID{2}, b.IDs())
	assert.Equal(t, []byte("b"), b.Payload(0))
}
