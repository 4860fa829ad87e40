package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]BlobStore {
	t.Helper()
	return map[string]BlobStore{
		"memory": NewMemoryStore(),
		"local":  NewLocalStore(nil, t.TempDir()),
	}
}

func TestBlobStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "a/blob", []byte("hello")))

			b, err := store.Open(ctx, "a/blob")
			require.NoError(t, err)
			defer b.Close()

			assert.Equal(t, int64(5), b.Size())

			data, err := ReadAll(ctx, b)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), data)
		})
	}
}

func TestBlobStoreOpenMissing(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Open(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBlobStoreOverwrite(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "k", []byte("v1")))
			require.NoError(t, store.Put(ctx, "k", []byte("v2")))

			b, err := store.Open(ctx, "k")
			require.NoError(t, err)
			defer b.Close()

			data, err := ReadAll(ctx, b)
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), data)
		})
	}
}

func TestBlobStoreDelete(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "k", []byte("v")))
			require.NoError(t, store.Delete(ctx, "k"))

			_, err := store.Open(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBlobStoreList(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "C1/SNAPSHOT-000001", []byte("a")))
			require.NoError(t, store.Put(ctx, "C1/SNAPSHOT-000002", []byte("b")))
			require.NoError(t, store.Put(ctx, "C1/CURRENT", []byte("c")))

			names, err := store.List(ctx, "C1/SNAPSHOT-")
			require.NoError(t, err)
			assert.Equal(t, []string{"C1/SNAPSHOT-000001", "C1/SNAPSHOT-000002"}, names)
		})
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "k", []byte("aaa")))

	b, err := store.Open(ctx, "k")
	require.NoError(t, err)
	defer b.Close()

	// Overwriting must not mutate an already open blob.
	require.NoError(t, store.Put(ctx, "k", []byte("bbb")))

	data, err := ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []byte("aaa"), data)
}

func TestLocalStorePutIsAtomic(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewLocalStore(nil, root)

	require.NoError(t, store.Put(ctx, "dir/blob", []byte("data")))

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Join(root, "dir"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "blob", entries[0].Name())
}

func TestBlobReadAt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "k", []byte("0123456789")))

	b, err := store.Open(ctx, "k")
	require.NoError(t, err)
	defer b.Close()

	p := make([]byte, 4)
	n, err := b.ReadAt(ctx, p, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("3456"), p)
}
