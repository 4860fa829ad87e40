package vecseg

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecseg/model"
)

var (
	// ErrSnapshotUnavailable indicates the collection has no current
	// snapshot. Fatal to the current operation; not retried internally.
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")

	// ErrInvalidSchema indicates the vector field is missing or lacks a
	// dimension parameter. Typed details are carried by SchemaError.
	ErrInvalidSchema = errors.New("invalid schema")
)

// SchemaError indicates that a collection's schema cannot support
// admission: the vector field is absent or its dimension is non-positive.
//
// SchemaError matches ErrInvalidSchema via errors.Is.
type SchemaError struct {
	CollectionID model.CollectionID
	Dimension    int
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("collection %d: vector field dimension %d", e.CollectionID, e.Dimension)
}

func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// WriterError indicates that physical serialization of a segment failed.
// The durable push was not performed; the staged segment-file metadata is
// left for the snapshot layer to reconcile.
//
// The underlying error can be accessed via errors.Unwrap.
type WriterError struct {
	SegmentID model.SegmentID
	cause     error
}

func (e *WriterError) Error() string {
	return fmt.Sprintf("serialize segment %d: %v", e.SegmentID, e.cause)
}

func (e *WriterError) Unwrap() error { return e.cause }
