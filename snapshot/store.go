package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/hupe1980/vecseg/blobstore"
	"github.com/hupe1980/vecseg/codec"
	"github.com/hupe1980/vecseg/model"
)

const (
	// SnapshotFilePrefix is the prefix of numbered snapshot blobs.
	SnapshotFilePrefix = "SNAPSHOT"

	// CurrentFileName is the per-collection pointer to the live snapshot.
	CurrentFileName = "CURRENT"

	// CurrentVersion is the persisted snapshot format version.
	CurrentVersion = 1
)

// Store manages the versioned snapshot lineage of collections.
//
// Each collection owns a CURRENT pointer blob plus numbered snapshot blobs;
// commits write the new snapshot first and flip the pointer last, so a
// reader always observes a complete snapshot. Store is safe for concurrent
// use; writers to the same collection are additionally fenced by a version
// check on commit.
type Store struct {
	store blobstore.BlobStore
	codec codec.Codec
	mu    sync.Mutex
}

// NewStore creates a snapshot store on top of the given blob store.
// If c is nil, codec.Default is used.
func NewStore(store blobstore.BlobStore, c codec.Codec) *Store {
	if c == nil {
		c = codec.Default
	}
	return &Store{store: store, codec: c}
}

func currentName(id model.CollectionID) string {
	return fmt.Sprintf("C%d/%s", id, CurrentFileName)
}

func snapshotName(id model.CollectionID, ssID uint64) string {
	return fmt.Sprintf("C%d/%s-%06d", id, SnapshotFilePrefix, ssID)
}

// CreateCollection bootstraps the snapshot lineage for a new collection and
// returns its first snapshot.
func (s *Store) CreateCollection(ctx context.Context, coll Collection, partitions []Partition) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.readCurrent(ctx, coll.ID); err == nil {
		return nil, fmt.Errorf("collection %d: %w", coll.ID, ErrCollectionExists)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	ss := &Snapshot{
		Version:           CurrentVersion,
		Collection:        coll,
		Partitions:        partitions,
		NextSegmentID:     1,
		NextSegmentFileID: 1,
	}
	if err := s.commitLocked(ctx, ss, 0); err != nil {
		return nil, err
	}
	return ss, nil
}

// Current returns the freshest snapshot of the collection, or ErrNotFound
// if the collection has no snapshot lineage.
func (s *Store) Current(ctx context.Context, id model.CollectionID) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readCurrent(ctx, id)
}

func (s *Store) readCurrent(ctx context.Context, id model.CollectionID) (*Snapshot, error) {
	b, err := s.store.Open(ctx, currentName(id))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("collection %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	name, err := blobstore.ReadAll(ctx, b)
	closeErr := b.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return s.read(ctx, string(name))
}

func (s *Store) read(ctx context.Context, name string) (*Snapshot, error) {
	b, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", name, err)
	}
	data, err := blobstore.ReadAll(ctx, b)
	closeErr := b.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}

	ss := &Snapshot{}
	if err := s.codec.Unmarshal(data, ss); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	if ss.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrIncompatibleVersion, ss.Version, CurrentVersion)
	}
	return ss, nil
}

// commit durably writes the successor snapshot and flips the CURRENT
// pointer. baseID is the snapshot id the successor was derived from; the
// commit fails with ErrConflict if the lineage has moved past it.
func (s *Store) commit(ctx context.Context, next *Snapshot, baseID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(ctx, next, baseID)
}

func (s *Store) commitLocked(ctx context.Context, next *Snapshot, baseID uint64) error {
	cur, err := s.readCurrent(ctx, next.Collection.ID)
	switch {
	case err == nil:
		if cur.ID != baseID {
			return fmt.Errorf("%w: base %d, current %d", ErrConflict, baseID, cur.ID)
		}
	case errors.Is(err, ErrNotFound):
		if baseID != 0 {
			return fmt.Errorf("%w: base %d, no current snapshot", ErrConflict, baseID)
		}
	default:
		return err
	}

	next.Version = CurrentVersion
	next.ID = baseID + 1

	data, err := s.codec.Marshal(next)
	if err != nil {
		return err
	}

	name := snapshotName(next.Collection.ID, next.ID)
	if err := s.store.Put(ctx, name, data); err != nil {
		return err
	}
	return s.store.Put(ctx, currentName(next.Collection.ID), []byte(name))
}

// Versions lists the snapshot ids available for a collection, oldest first.
func (s *Store) Versions(ctx context.Context, id model.CollectionID) ([]string, error) {
	return s.store.List(ctx, fmt.Sprintf("C%d/%s-", id, SnapshotFilePrefix))
}
