package vecseg

import (
	"github.com/hupe1980/vecseg/internal/fs"
	"github.com/hupe1980/vecseg/resource"
	"github.com/hupe1980/vecseg/segment"
)

// DefaultMaxSegmentMemory is the default admission ceiling of one segment
// buffer.
const DefaultMaxSegmentMemory int64 = 128 << 20 // 128 MiB

type options struct {
	maxMemory  int64
	dataRoot   string
	fsys       fs.FileSystem
	logger     *Logger
	metrics    MetricsCollector
	res        *resource.Controller
	writerOpts []segment.Option
}

func defaultOptions() *options {
	return &options{
		maxMemory: DefaultMaxSegmentMemory,
		logger:    NewLogger(nil),
		metrics:   NoopMetricsCollector{},
	}
}

// Option configures a MemSegment.
type Option func(*options)

// WithMaxSegmentMemory sets the admission ceiling in bytes. The ceiling is
// hard: admission quotas are floored so buffered memory never exceeds it.
func WithMaxSegmentMemory(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxMemory = n
		}
	}
}

// WithDataRoot sets the root directory under which segment directories are
// created. Defaults to the process working directory.
func WithDataRoot(path string) Option {
	return func(o *options) { o.dataRoot = path }
}

// WithFileSystem injects the file system used by the segment writer.
// Defaults to the local file system; tests inject fs.FaultyFS.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) { o.fsys = fsys }
}

// WithLogger configures structured logging. Pass NoopLogger() to disable.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. If nil, metrics collection is disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithResourceController shares a process-wide resource controller across
// buffers: admitted bytes are reserved against its memory budget (released
// on flush) and flush IO is throttled through it.
func WithResourceController(res *resource.Controller) Option {
	return func(o *options) { o.res = res }
}

// WithWriterOptions passes extra options (compression, remote mirroring)
// to the underlying segment writer.
func WithWriterOptions(opts ...segment.Option) Option {
	return func(o *options) { o.writerOpts = append(o.writerOpts, opts...) }
}
