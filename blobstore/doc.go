// Package blobstore abstracts blob storage for segment files and snapshot
// metadata.
//
// Implementations:
//
//   - [LocalStore]: local filesystem, mmap reads, atomic writes
//   - [MemoryStore]: in-memory, for tests
//   - minio.Store: MinIO / S3-compatible object storage
package blobstore
