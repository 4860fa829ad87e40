// Package snapshot provides the versioned collection-metadata store and the
// two-phase segment lifecycle operation.
//
// A collection's metadata (schema, partitions, segments, segment files)
// lives in an immutable lineage of snapshots behind a CURRENT pointer blob.
// Readers always see a complete snapshot; writers derive a successor from a
// base snapshot and commit it with a version fence.
//
// Promoting a buffered segment is a two-phase commit driven by
// [NewSegmentOperation]: identities are reserved first, the physical write
// happens outside this package, and Push makes the result visible. The
// state machine forbids pushing after an abort, so a physical-write failure
// can never be followed by the durable commit.
package snapshot
