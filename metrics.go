package vecseg

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordAdd is called after each admission attempt. admitted is the
	// number of records accepted (0 on capacity saturation), err is nil
	// unless the admission failed.
	RecordAdd(admitted int64, duration time.Duration, err error)

	// RecordDelete is called after each delete operation with the number
	// of buffered rows removed.
	RecordDelete(removed int, duration time.Duration)

	// RecordSerialize is called after each flush. bytes is the buffered
	// memory at flush time, err is nil if the flush committed.
	RecordSerialize(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(int64, time.Duration, error)       {}
func (NoopMetricsCollector) RecordDelete(int, time.Duration)             {}
func (NoopMetricsCollector) RecordSerialize(int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount       atomic.Int64
	AddErrors      atomic.Int64
	RecordsAdded   atomic.Int64
	DeleteCount    atomic.Int64
	RowsDeleted    atomic.Int64
	SerializeCount atomic.Int64
	SerializeBytes atomic.Int64
	SerializeFails atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(admitted int64, _ time.Duration, err error) {
	b.AddCount.Add(1)
	b.RecordsAdded.Add(admitted)
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(removed int, _ time.Duration) {
	b.DeleteCount.Add(1)
	b.RowsDeleted.Add(int64(removed))
}

// RecordSerialize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSerialize(bytes int64, _ time.Duration, err error) {
	b.SerializeCount.Add(1)
	if err != nil {
		b.SerializeFails.Add(1)
		return
	}
	b.SerializeBytes.Add(bytes)
}
