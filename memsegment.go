package vecseg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vecseg/model"
	"github.com/hupe1980/vecseg/resource"
	"github.com/hupe1980/vecseg/segment"
	"github.com/hupe1980/vecseg/snapshot"
)

// MemSegment is the memory-bounded insertion buffer of one growing segment.
// It mediates between callers offering records and a segment writer, and
// enforces a hard admission ceiling: buffered memory never exceeds the
// configured maximum.
//
// A MemSegment is single-writer. Concurrent admission into the same buffer
// must be serialized by the caller.
type MemSegment struct {
	collectionID model.CollectionID
	partitionID  model.PartitionID

	maxMemory  int64
	currentMem int64

	snapshots *snapshot.Store
	op        *snapshot.NewSegmentOperation
	segment   *snapshot.Segment
	writer    *segment.Writer

	res     *resource.Controller
	logger  *Logger
	metrics MetricsCollector
}

// NewMemSegment opens a buffer for a fresh segment in the given collection
// and partition. The segment identity is reserved immediately against the
// collection's current snapshot; it stays stable for the buffer's lifetime
// and becomes durable only on Serialize.
func NewMemSegment(ctx context.Context, snapshots *snapshot.Store, collectionID model.CollectionID, partitionID model.PartitionID, opts ...Option) (*MemSegment, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &MemSegment{
		collectionID: collectionID,
		partitionID:  partitionID,
		maxMemory:    o.maxMemory,
		snapshots:    snapshots,
		res:          o.res,
		logger:       o.logger,
		metrics:      o.metrics,
	}
	if err := m.createSegment(ctx, o); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MemSegment) createSegment(ctx context.Context, o *options) error {
	ss, err := m.snapshots.Current(ctx, m.collectionID)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return fmt.Errorf("collection %d: %w", m.collectionID, ErrSnapshotUnavailable)
		}
		return err
	}

	prev, ok := ss.Partition(m.partitionID)
	if !ok {
		return fmt.Errorf("partition %d: %w", m.partitionID, snapshot.ErrUnknownPartition)
	}

	op := m.snapshots.NewSegmentOperation(ss, snapshot.OperationContext{PrevPartition: prev})
	seg, err := op.CommitNewSegment()
	if err != nil {
		return err
	}

	dir := filepath.Join(o.dataRoot, segment.PathFor(seg.CollectionID, seg.PartitionID, seg.ID))
	wopts := append([]segment.Option{segment.WithResourceController(m.res)}, o.writerOpts...)

	m.op = op
	m.segment = seg
	m.writer = segment.NewWriter(o.fsys, dir, wopts...)
	m.logger = m.logger.WithSegment(seg.Key())
	return nil
}

// SegmentID returns the reserved segment identity.
func (m *MemSegment) SegmentID() model.SegmentID {
	return m.segment.ID
}

// Key returns the full identity of the buffered segment.
func (m *MemSegment) Key() model.SegmentKey {
	return m.segment.Key()
}

// CurrentMem returns the accounted buffered memory in bytes.
func (m *MemSegment) CurrentMem() int64 {
	return m.currentMem
}

// MemLeft returns the remaining admission capacity in bytes.
func (m *MemSegment) MemLeft() int64 {
	return m.maxMemory - m.currentMem
}

// Dimension resolves the collection's vector dimension from the current
// snapshot. It returns 0 when no snapshot is available or the vector field
// carries no usable dimension; callers treat 0 as "cannot admit".
func (m *MemSegment) Dimension(ctx context.Context) int {
	ss, err := m.snapshots.Current(ctx, m.collectionID)
	if err != nil {
		m.logger.WarnContext(ctx, "snapshot unavailable", "error", err)
		return 0
	}
	dim, ok := ss.Dimension(snapshot.FieldVector)
	if !ok {
		m.logger.WarnContext(ctx, "vector field has no dimension")
		return 0
	}
	return int(dim)
}

// IsFull reports whether the buffer can no longer admit a single vector
// record. When the dimension cannot be resolved the buffer reports full, so
// that callers rotate instead of retrying a buffer that cannot admit.
func (m *MemSegment) IsFull(ctx context.Context) bool {
	dim := m.Dimension(ctx)
	if dim <= 0 {
		return true
	}
	return m.MemLeft() < model.VectorRecordSize(dim)
}

// Add admits vector records from the source, up to the buffer's remaining
// capacity. A saturated buffer admits nothing and returns nil; the caller
// checks source.Remaining and re-offers to the next buffer.
func (m *MemSegment) Add(ctx context.Context, source *VectorSource) error {
	return m.admit(ctx, source, false)
}

// AddEntities admits full entity records (vector plus payload) from the
// source, sized by the batch's largest payload.
func (m *MemSegment) AddEntities(ctx context.Context, source *VectorSource) error {
	return m.admit(ctx, source, true)
}

func (m *MemSegment) admit(ctx context.Context, source *VectorSource, entities bool) error {
	start := time.Now()
	requested := source.Remaining()

	dim := m.Dimension(ctx)
	if dim <= 0 {
		err := &SchemaError{CollectionID: m.collectionID, Dimension: dim}
		m.metrics.RecordAdd(0, time.Since(start), err)
		m.logger.LogAdd(ctx, requested, 0, err)
		return err
	}

	var recSize int64
	if entities {
		recSize = source.SingleEntitySize(dim)
	} else {
		recSize = source.SingleVectorSize(dim)
	}

	quota := m.MemLeft() / recSize
	if n := source.Remaining(); n < quota {
		quota = n
	}
	if quota <= 0 {
		m.metrics.RecordAdd(0, time.Since(start), nil)
		m.logger.LogAdd(ctx, requested, 0, nil)
		return nil
	}

	if err := m.res.AcquireMemory(ctx, quota*recSize); err != nil {
		m.metrics.RecordAdd(0, time.Since(start), err)
		m.logger.LogAdd(ctx, requested, 0, err)
		return err
	}

	var admitted int64
	var err error
	if entities {
		admitted, err = source.AddEntities(m.writer, dim, quota)
	} else {
		admitted, err = source.Add(m.writer, dim, quota)
	}
	if admitted < quota {
		m.res.ReleaseMemory((quota - admitted) * recSize)
	}
	if err != nil {
		m.metrics.RecordAdd(admitted, time.Since(start), err)
		m.logger.LogAdd(ctx, requested, admitted, err)
		return err
	}

	m.currentMem += admitted * recSize
	m.metrics.RecordAdd(admitted, time.Since(start), nil)
	m.logger.LogAdd(ctx, requested, admitted, nil)
	return nil
}

// Delete removes the first buffered row carrying the given identifier,
// preserving the order of the remaining rows. Deleting an absent identifier
// is a no-op. Accounted memory is unchanged; capacity is not reclaimed.
func (m *MemSegment) Delete(ctx context.Context, id model.DocID) error {
	start := time.Now()

	removed := 0
	buf := m.writer.Buffer()
	for i, v := range buf.IDs() {
		if v == id {
			buf.Erase(i)
			removed = 1
			break
		}
	}

	m.metrics.RecordDelete(removed, time.Since(start))
	m.logger.LogDelete(ctx, 1, removed)
	return nil
}

// DeleteBatch removes every buffered row whose identifier appears in ids.
// Duplicate buffered rows matching the set are all removed; surviving rows
// keep their order. Accounted memory is unchanged.
func (m *MemSegment) DeleteBatch(ctx context.Context, ids []model.DocID) error {
	start := time.Now()

	if len(ids) == 0 {
		m.metrics.RecordDelete(0, time.Since(start))
		m.logger.LogDelete(ctx, 0, 0)
		return nil
	}

	sorted := make([]model.DocID, len(ids))
	copy(sorted, ids)
	slices.Sort(sorted)

	buf := m.writer.Buffer()
	matched := roaring.New()
	for i, v := range buf.IDs() {
		if _, ok := slices.BinarySearch(sorted, v); ok {
			matched.Add(uint32(i))
		}
	}
	removed := buf.EraseSet(matched)

	m.metrics.RecordDelete(removed, time.Since(start))
	m.logger.LogDelete(ctx, len(ids), removed)
	return nil
}

// Serialize flushes the buffered rows to a durable segment file and pushes
// the segment into the collection's snapshot lineage, tagged with the
// write-ahead-log sequence number lsn.
//
// The physical write strictly precedes the durable push: if the write
// fails, the operation is aborted and a WriterError is returned with
// nothing made durable. An empty buffer flushes to a valid zero-row file.
//
// Serialize is terminal. The MemSegment must be discarded afterwards
// regardless of outcome.
func (m *MemSegment) Serialize(ctx context.Context, lsn uint64) error {
	start := time.Now()
	size := m.currentMem

	fctx := snapshot.SegmentFileContext{
		FieldName:    snapshot.FieldVector,
		FieldElement: snapshot.ElementRaw,
		CollectionID: m.segment.CollectionID,
		PartitionID:  m.segment.PartitionID,
		SegmentID:    m.segment.ID,
	}
	file, err := m.op.CommitNewSegmentFile(fctx)
	if err != nil {
		m.metrics.RecordSerialize(size, time.Since(start), err)
		m.logger.LogSerialize(ctx, 0, 0, lsn, err)
		return err
	}

	m.writer.SetName(strconv.FormatInt(int64(m.segment.ID), 10))
	if err := m.writer.Serialize(ctx); err != nil {
		m.op.Abort()
		werr := &WriterError{SegmentID: m.segment.ID, cause: err}
		m.metrics.RecordSerialize(size, time.Since(start), werr)
		m.logger.LogSerialize(ctx, file.ID, 0, lsn, werr)
		return werr
	}

	file.SetSize(m.writer.Size())
	file.SetRowCount(m.writer.RowCount())
	m.op.SetMaxLSN(lsn)

	if err := m.op.Push(ctx); err != nil {
		m.metrics.RecordSerialize(size, time.Since(start), err)
		m.logger.LogSerialize(ctx, file.ID, file.Size, lsn, err)
		return err
	}

	m.res.ReleaseMemory(size)
	m.currentMem = 0
	m.metrics.RecordSerialize(size, time.Since(start), nil)
	m.logger.LogSerialize(ctx, file.ID, file.Size, lsn, nil)
	return nil
}

// Close releases the buffer's reservation against the shared resource
// controller and abandons the segment operation if it never committed.
// Close after a successful Serialize is a no-op.
func (m *MemSegment) Close() error {
	if m.op.State() == snapshot.StateCommitted {
		return nil
	}
	m.res.ReleaseMemory(m.currentMem)
	m.currentMem = 0
	return m.op.Abort()
}
