package model

import "fmt"

// CollectionID identifies a collection of vector data.
type CollectionID int64

// PartitionID identifies a partition within a collection.
type PartitionID int64

// SegmentID identifies an immutable data segment within a partition.
type SegmentID int64

// SegmentFileID identifies a single on-disk file belonging to a segment.
type SegmentFileID int64

// DocID is the caller-assigned document/entity identifier. It is the sole
// key used for deletions against buffered rows; uniqueness is a caller
// invariant and is not enforced here.
type DocID int64

// FloatSize is the byte size of one vector component (float32).
const FloatSize = 4

// VectorRecordSize returns the memory footprint of one raw vector record
// at the given dimension.
func VectorRecordSize(dim int) int64 {
	return int64(dim) * FloatSize
}

// SegmentKey identifies a segment globally.
type SegmentKey struct {
	CollectionID CollectionID
	PartitionID  PartitionID
	SegmentID    SegmentID
}

// String returns a string representation of the SegmentKey.
func (k SegmentKey) String() string {
	return fmt.Sprintf("Seg(%d:%d:%d)", k.CollectionID, k.PartitionID, k.SegmentID)
}
