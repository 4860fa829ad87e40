package vecseg

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/vecseg/model"
)

// Logger wraps slog.Logger with vecseg-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// WithSegment adds the segment identity to the logger.
func (l *Logger) WithSegment(key model.SegmentKey) *Logger {
	return &Logger{Logger: l.Logger.With(
		"collection_id", int64(key.CollectionID),
		"partition_id", int64(key.PartitionID),
		"segment_id", int64(key.SegmentID),
	)}
}

// LogAdd logs an admission outcome.
func (l *Logger) LogAdd(ctx context.Context, requested, admitted int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"requested", requested,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"requested", requested,
			"admitted", admitted,
		)
	}
}

// LogDelete logs a deletion outcome.
func (l *Logger) LogDelete(ctx context.Context, requested, removed int) {
	l.DebugContext(ctx, "delete completed",
		"requested", requested,
		"removed", removed,
	)
}

// LogSerialize logs a flush outcome.
func (l *Logger) LogSerialize(ctx context.Context, fileID model.SegmentFileID, size int64, lsn uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "serialize failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "new segment file",
			"file_id", int64(fileID),
			"size", size,
			"lsn", lsn,
		)
	}
}
