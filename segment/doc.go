// Package segment provides the in-memory columnar buffer of one segment and
// the writer that serializes it to a durable, checksummed segment file.
//
// The buffer keeps rows dense and in insertion order; deletions compact in
// place. The file format stores the identifier, vector and payload columns
// as independently compressed blocks (none, LZ4 or zstd) behind a fixed
// header, sealed with a CRC32 footer. Writes are atomic (temp file +
// rename + directory sync) and may be throttled and mirrored to remote
// object storage.
package segment
