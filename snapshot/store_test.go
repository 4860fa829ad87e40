package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecseg/blobstore"
	"github.com/hupe1980/vecseg/model"
)

func testCollection(id model.CollectionID, dim int64) Collection {
	return Collection{
		ID:   id,
		Name: "docs",
		Fields: []Field{{
			Name:   FieldVector,
			Params: map[string]int64{ParamDimension: dim},
		}},
	}
}

func newBootstrappedStore(t *testing.T) (*Store, *Snapshot) {
	t.Helper()

	s := NewStore(blobstore.NewMemoryStore(), nil)
	ss, err := s.CreateCollection(context.Background(), testCollection(1, 128), []Partition{
		{ID: 10, CollectionID: 1, Name: "default"},
	})
	require.NoError(t, err)
	return s, ss
}

func TestCreateCollection(t *testing.T) {
	_, ss := newBootstrappedStore(t)

	assert.Equal(t, uint64(1), ss.ID)
	assert.Equal(t, CurrentVersion, ss.Version)
	assert.Equal(t, model.SegmentID(1), ss.NextSegmentID)
	assert.Equal(t, model.SegmentFileID(1), ss.NextSegmentFileID)

	dim, ok := ss.Dimension(FieldVector)
	require.True(t, ok)
	assert.Equal(t, int64(128), dim)
}

func TestCreateCollectionTwice(t *testing.T) {
	s, _ := newBootstrappedStore(t)

	_, err := s.CreateCollection(context.Background(), testCollection(1, 128), nil)
	assert.ErrorIs(t, err, ErrCollectionExists)
}

func TestCurrentUnknownCollection(t *testing.T) {
	s := NewStore(blobstore.NewMemoryStore(), nil)

	_, err := s.Current(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCurrentRoundTrip(t *testing.T) {
	s, created := newBootstrappedStore(t)

	ss, err := s.Current(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, created.ID, ss.ID)
	assert.Equal(t, created.Collection.Name, ss.Collection.Name)
	require.Len(t, ss.Partitions, 1)
	assert.Equal(t, model.PartitionID(10), ss.Partitions[0].ID)
}

func TestCommitConflict(t *testing.T) {
	ctx := context.Background()
	s, base := newBootstrappedStore(t)

	// Two operations race from the same base; the second push loses.
	octx := OperationContext{PrevPartition: &base.Partitions[0]}

	op1 := s.NewSegmentOperation(base, octx)
	_, err := op1.CommitNewSegment()
	require.NoError(t, err)

	op2 := s.NewSegmentOperation(base, octx)
	_, err = op2.CommitNewSegment()
	require.NoError(t, err)

	require.NoError(t, op1.Push(ctx))

	err = op2.Push(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, StateAborted, op2.State())
}

func TestVersions(t *testing.T) {
	ctx := context.Background()
	s, base := newBootstrappedStore(t)

	op := s.NewSegmentOperation(base, OperationContext{PrevPartition: &base.Partitions[0]})
	_, err := op.CommitNewSegment()
	require.NoError(t, err)
	require.NoError(t, op.Push(ctx))

	names, err := s.Versions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestPartitionLookup(t *testing.T) {
	_, ss := newBootstrappedStore(t)

	p, ok := ss.Partition(10)
	require.True(t, ok)
	assert.Equal(t, model.PartitionID(10), p.ID)

	_, ok = ss.Partition(11)
	assert.False(t, ok)
}

func TestDimensionMissing(t *testing.T) {
	s := NewStore(blobstore.NewMemoryStore(), nil)
	ss, err := s.CreateCollection(context.Background(), Collection{
		ID:     2,
		Fields: []Field{{Name: FieldVector}},
	}, nil)
	require.NoError(t, err)

	_, ok := ss.Dimension(FieldVector)
	assert.False(t, ok)

	_, ok = ss.Dimension("unknown")
	assert.False(t, ok)
}
