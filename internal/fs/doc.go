// Package fs provides filesystem abstractions for testability and fault
// injection.
//
//   - [LocalFS]: production implementation using the standard os package
//   - [FaultyFS]: test utility that injects write errors
//
// The interfaces intentionally do not take context.Context: local filesystem
// operations are fast and non-interruptible at the syscall level. Slow
// storage (object stores) lives behind blobstore, which has context support.
package fs
