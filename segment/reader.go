package segment

import (
	"context"

	"github.com/hupe1980/vecseg/blobstore"
)

// Open reads and verifies a serialized segment file from a blob store.
// The checksum and format version are validated before any column is
// decoded.
func Open(ctx context.Context, store blobstore.BlobStore, name string) (*Data, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	data, err := blobstore.ReadAll(ctx, b)
	if err != nil {
		return nil, err
	}
	return decodeFile(data)
}
