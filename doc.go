// Package vecseg implements the write path of a vector storage engine: a
// memory-bounded insertion buffer (MemSegment) that admits vector and
// entity records under a hard per-segment memory ceiling, buffers them
// columnar in memory, and flushes them as immutable segment files whose
// metadata is committed atomically into a versioned snapshot lineage.
//
// The flow of one segment: NewMemSegment reserves a segment identity
// against the collection's current snapshot; Add/AddEntities admit records
// from a caller-owned VectorSource up to the remaining capacity; Delete and
// DeleteBatch retract still-buffered rows; Serialize writes the segment
// file durably and pushes the new snapshot. Buffers saturate rather than
// grow: a full buffer admits nothing, and the caller rotates to a fresh
// MemSegment, re-offering the partially consumed source.
package vecseg
