package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecseg/model"
)

func TestOperationLifecycle(t *testing.T) {
	ctx := context.Background()
	s, base := newBootstrappedStore(t)

	op := s.NewSegmentOperation(base, OperationContext{PrevPartition: &base.Partitions[0]})
	assert.Equal(t, StateCreated, op.State())

	seg, err := op.CommitNewSegment()
	require.NoError(t, err)
	assert.Equal(t, StateWriting, op.State())
	assert.Equal(t, base.NextSegmentID, seg.ID)
	assert.Equal(t, base.Collection.ID, seg.CollectionID)
	assert.Equal(t, model.PartitionID(10), seg.PartitionID)

	file, err := op.CommitNewSegmentFile(SegmentFileContext{
		FieldName:    FieldVector,
		FieldElement: ElementRaw,
		CollectionID: seg.CollectionID,
		PartitionID:  seg.PartitionID,
		SegmentID:    seg.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, base.NextSegmentFileID, file.ID)

	file.SetSize(4096)
	file.SetRowCount(100)
	op.SetMaxLSN(77)

	require.NoError(t, op.Push(ctx))
	assert.Equal(t, StateCommitted, op.State())

	next, err := s.Current(ctx, base.Collection.ID)
	require.NoError(t, err)
	assert.Equal(t, base.ID+1, next.ID)
	assert.Equal(t, seg.ID+1, next.NextSegmentID)
	assert.Equal(t, file.ID+1, next.NextSegmentFileID)
	assert.Equal(t, uint64(77), next.MaxLSN)
	require.Len(t, next.SegmentFiles, 1)
	assert.Equal(t, int64(4096), next.SegmentFiles[0].Size)
	assert.Equal(t, int64(100), next.SegmentFiles[0].RowCount)
}

func TestCommitNewSegmentRequiresPartition(t *testing.T) {
	s, base := newBootstrappedStore(t)

	op := s.NewSegmentOperation(base, OperationContext{})
	_, err := op.CommitNewSegment()
	assert.ErrorIs(t, err, ErrUnknownPartition)
}

func TestCommitNewSegmentOnce(t *testing.T) {
	s, base := newBootstrappedStore(t)

	op := s.NewSegmentOperation(base, OperationContext{PrevPartition: &base.Partitions[0]})
	_, err := op.CommitNewSegment()
	require.NoError(t, err)

	_, err = op.CommitNewSegment()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCommitNewSegmentFileBeforeSegment(t *testing.T) {
	s, base := newBootstrappedStore(t)

	op := s.NewSegmentOperation(base, OperationContext{PrevPartition: &base.Partitions[0]})
	_, err := op.CommitNewSegmentFile(SegmentFileContext{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPushWithoutSegment(t *testing.T) {
	s, base := newBootstrappedStore(t)

	op := s.NewSegmentOperation(base, OperationContext{PrevPartition: &base.Partitions[0]})
	err := op.Push(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAbort(t *testing.T) {
	ctx := context.Background()
	s, base := newBootstrappedStore(t)

	op := s.NewSegmentOperation(base, OperationContext{PrevPartition: &base.Partitions[0]})
	_, err := op.CommitNewSegment()
	require.NoError(t, err)

	require.NoError(t, op.Abort())
	assert.Equal(t, StateAborted, op.State())

	// Aborting twice is fine; pushing a dead operation is not.
	require.NoError(t, op.Abort())
	assert.ErrorIs(t, op.Push(ctx), ErrInvalidState)

	// Nothing was made durable.
	cur, err := s.Current(ctx, base.Collection.ID)
	require.NoError(t, err)
	assert.Equal(t, base.ID, cur.ID)
	assert.Empty(t, cur.Segments)
}

func TestAbortAfterCommit(t *testing.T) {
	ctx := context.Background()
	s, base := newBootstrappedStore(t)

	op := s.NewSegmentOperation(base, OperationContext{PrevPartition: &base.Partitions[0]})
	_, err := op.CommitNewSegment()
	require.NoError(t, err)
	require.NoError(t, op.Push(ctx))

	assert.ErrorIs(t, op.Abort(), ErrInvalidState)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "created", StateCreated.String())
	assert.Equal(t, "writing", StateWriting.String())
	assert.Equal(t, "committed", StateCommitted.String())
	assert.Equal(t, "aborted", StateAborted.String())
}
