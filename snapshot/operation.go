package snapshot

import (
	"context"
	"fmt"

	"github.com/hupe1980/vecseg/model"
)

// State is the lifecycle state of a NewSegmentOperation.
type State int32

const (
	// StateCreated: operation opened, no segment identity reserved yet.
	StateCreated State = iota
	// StateWriting: segment identity reserved, files may be staged.
	StateWriting
	// StateCommitted: Push succeeded; terminal.
	StateCommitted
	// StateAborted: the operation was abandoned; terminal.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateWriting:
		return "writing"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// OperationContext carries the prior state an operation builds on.
type OperationContext struct {
	// PrevPartition is the partition the new segment belongs to, as
	// resolved from the base snapshot.
	PrevPartition *Partition
}

// SegmentFileContext describes a segment file to be staged.
type SegmentFileContext struct {
	FieldName    string
	FieldElement string
	CollectionID model.CollectionID
	PartitionID  model.PartitionID
	SegmentID    model.SegmentID
}

// NewSegmentOperation is the two-phase commit helper for promoting one
// buffered segment into the snapshot lineage.
//
// Phase one reserves identities and stages metadata (CommitNewSegment,
// CommitNewSegmentFile); phase two (Push) builds the successor snapshot and
// commits it durably. The ordering invariant "never push after a physical
// write failure" is enforced by the state machine: a caller that hits a
// write failure calls Abort, after which Push returns ErrInvalidState.
//
// An operation is not safe for concurrent use; it belongs to the single
// writer driving its segment.
type NewSegmentOperation struct {
	store *Store
	base  *Snapshot
	octx  OperationContext

	state   State
	segment *Segment
	files   []*SegmentFile
	maxLSN  uint64
}

// NewSegmentOperation opens a segment operation against the given base
// snapshot.
func (s *Store) NewSegmentOperation(base *Snapshot, octx OperationContext) *NewSegmentOperation {
	return &NewSegmentOperation{
		store: s,
		base:  base,
		octx:  octx,
		state: StateCreated,
	}
}

// State returns the operation's current lifecycle state.
func (o *NewSegmentOperation) State() State {
	return o.state
}

// CommitNewSegment reserves a new segment identity against the base
// snapshot. It may be called exactly once, before any files are staged.
func (o *NewSegmentOperation) CommitNewSegment() (*Segment, error) {
	if o.state != StateCreated {
		return nil, fmt.Errorf("commit new segment in state %s: %w", o.state, ErrInvalidState)
	}
	if o.octx.PrevPartition == nil {
		return nil, ErrUnknownPartition
	}

	o.segment = &Segment{
		ID:           o.base.NextSegmentID,
		CollectionID: o.base.Collection.ID,
		PartitionID:  o.octx.PrevPartition.ID,
	}
	o.state = StateWriting
	return o.segment, nil
}

// CommitNewSegmentFile stages a new segment-file record. The returned
// handle's Size and RowCount are expected to be populated from the segment
// writer's counters before Push.
func (o *NewSegmentOperation) CommitNewSegmentFile(fctx SegmentFileContext) (*SegmentFile, error) {
	if o.state != StateWriting {
		return nil, fmt.Errorf("commit new segment file in state %s: %w", o.state, ErrInvalidState)
	}

	f := &SegmentFile{
		ID:           o.base.NextSegmentFileID + model.SegmentFileID(len(o.files)),
		CollectionID: fctx.CollectionID,
		PartitionID:  fctx.PartitionID,
		SegmentID:    fctx.SegmentID,
		FieldName:    fctx.FieldName,
		FieldElement: fctx.FieldElement,
	}
	o.files = append(o.files, f)
	return f, nil
}

// SetMaxLSN records the write-ahead-log sequence number associated with
// this flush. It is carried on the pushed snapshot for observability only.
func (o *NewSegmentOperation) SetMaxLSN(lsn uint64) {
	o.maxLSN = lsn
}

// Push builds the successor snapshot from the base plus everything staged
// and commits it durably. Terminal: after a successful Push the operation
// is committed; after a failed Push it is aborted and must be discarded.
func (o *NewSegmentOperation) Push(ctx context.Context) error {
	if o.state != StateWriting {
		return fmt.Errorf("push in state %s: %w", o.state, ErrInvalidState)
	}

	next := o.base.clone()
	next.Segments = append(next.Segments, *o.segment)
	for _, f := range o.files {
		next.SegmentFiles = append(next.SegmentFiles, *f)
	}
	next.NextSegmentID = o.segment.ID + 1
	next.NextSegmentFileID = o.base.NextSegmentFileID + model.SegmentFileID(len(o.files))
	if o.maxLSN > next.MaxLSN {
		next.MaxLSN = o.maxLSN
	}

	if err := o.store.commit(ctx, next, o.base.ID); err != nil {
		o.state = StateAborted
		return err
	}
	o.state = StateCommitted
	return nil
}

// Abort abandons the operation. Staged metadata is dropped; nothing was
// made durable. Aborting a committed operation is an error.
func (o *NewSegmentOperation) Abort() error {
	switch o.state {
	case StateCommitted:
		return fmt.Errorf("abort in state %s: %w", o.state, ErrInvalidState)
	case StateAborted:
		return nil
	default:
		o.state = StateAborted
		return nil
	}
}
