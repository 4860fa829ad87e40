package segment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/vecseg/blobstore"
	"github.com/hupe1980/vecseg/internal/fs"
	"github.com/hupe1980/vecseg/resource"
)

// ErrUnnamed is returned when Serialize is called before SetName.
var ErrUnnamed = errors.New("segment: writer has no name")

// Writer accumulates one segment's rows and serializes them to a durable
// segment file. A Writer is exclusively owned by the buffer controller of
// its segment and is not safe for concurrent use.
type Writer struct {
	fsys fs.FileSystem
	dir  string
	name string

	buf         *Buffer
	compression CompressionType
	res         *resource.Controller
	remote      blobstore.BlobStore

	written int64
}

// Option configures a Writer.
type Option func(*Writer)

// WithCompression selects the column-block compression algorithm.
func WithCompression(ct CompressionType) Option {
	return func(w *Writer) { w.compression = ct }
}

// WithResourceController throttles serialization IO through the given
// controller.
func WithResourceController(res *resource.Controller) Option {
	return func(w *Writer) { w.res = res }
}

// WithRemoteStore mirrors serialized files to the given blob store after
// the local write completes.
func WithRemoteStore(store blobstore.BlobStore) Option {
	return func(w *Writer) { w.remote = store }
}

// NewWriter creates a Writer bound to the given storage directory.
// If fsys is nil, the local file system is used.
func NewWriter(fsys fs.FileSystem, dir string, opts ...Option) *Writer {
	if fsys == nil {
		fsys = fs.Default
	}
	w := &Writer{
		fsys: fsys,
		dir:  dir,
		buf:  NewBuffer(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Buffer returns the writer's in-memory buffer.
func (w *Writer) Buffer() *Buffer {
	return w.buf
}

// SetName names the physical output file (without suffix).
func (w *Writer) SetName(name string) {
	w.name = name
}

// Name returns the output file name set via SetName.
func (w *Writer) Name() string {
	return w.name
}

// RowCount returns the number of buffered rows.
func (w *Writer) RowCount() int64 {
	return int64(w.buf.RowCount())
}

// Size returns the number of bytes physically written by the last
// Serialize, 0 if the writer has not serialized yet.
func (w *Writer) Size() int64 {
	return w.written
}

// FileName returns the serialized file's name within the writer directory.
func (w *Writer) FileName() string {
	return w.name + FileSuffix
}

// Serialize encodes the buffered rows and writes them durably to
// <dir>/<name>.seg via a temp file and an atomic rename. If a remote store
// is configured, the finished file is mirrored there afterwards.
//
// An empty buffer serializes to a valid zero-row file.
func (w *Writer) Serialize(ctx context.Context) error {
	if w.name == "" {
		return ErrUnnamed
	}

	data, err := encodeFile(ctx, w.buf, w.compression)
	if err != nil {
		return err
	}
	if err := w.res.AcquireIO(ctx, len(data)); err != nil {
		return err
	}

	if err := w.fsys.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(w.dir, w.FileName())
	tmp := path + ".tmp"

	f, err := w.fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		w.fsys.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		w.fsys.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		w.fsys.Remove(tmp)
		return err
	}
	if err := w.fsys.Rename(tmp, path); err != nil {
		w.fsys.Remove(tmp)
		return err
	}
	if err := w.syncDir(); err != nil {
		return err
	}

	if w.remote != nil {
		if err := w.remote.Put(ctx, w.FileName(), data); err != nil {
			return fmt.Errorf("mirror segment file: %w", err)
		}
	}

	w.written = int64(len(data))
	return nil
}

func (w *Writer) syncDir() error {
	f, err := w.fsys.OpenFile(w.dir, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
