package snapshot

import "errors"

var (
	// ErrNotFound is returned when a collection has no current snapshot.
	ErrNotFound = errors.New("snapshot not found")

	// ErrCollectionExists is returned when creating a collection that
	// already has a snapshot lineage.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrConflict is returned when a commit would clobber a snapshot
	// committed by someone else since the operation's base was taken.
	ErrConflict = errors.New("snapshot version conflict")

	// ErrUnknownPartition is returned when an operation references a
	// partition the base snapshot does not contain.
	ErrUnknownPartition = errors.New("unknown partition")

	// ErrIncompatibleVersion is returned when a persisted snapshot uses an
	// unsupported format version.
	ErrIncompatibleVersion = errors.New("incompatible snapshot version")

	// ErrInvalidState is returned when a segment operation is driven out of
	// order, e.g. Push after Abort.
	ErrInvalidState = errors.New("invalid segment operation state")
)
