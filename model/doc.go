// Package model defines the identity and sizing vocabulary shared by all
// vecseg packages.
//
//   - CollectionID, PartitionID, SegmentID, SegmentFileID: durable identities
//     assigned by the snapshot layer
//   - DocID: caller-assigned record identifier, the deletion key
//   - FloatSize / VectorRecordSize: memory-accounting units for admission
package model
