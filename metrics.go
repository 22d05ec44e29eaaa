package lookout

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/lookout/imagemetric"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// PrometheusCollector for a Prometheus implementation.
type MetricsCollector interface {
	// RecordAppend is called after each append attempt that passed validation.
	// duration covers metric computation and the store write.
	RecordAppend(duration time.Duration, err error)

	// RecordValidationFailure is called when a request is rejected before I/O.
	RecordValidationFailure(field string)

	// RecordMetric is called once per enabled metric and logged row.
	// computed is false when the metric was stored as null.
	RecordMetric(id imagemetric.ID, computed bool)

	// RecordCoercion is called for each value replaced by null because it
	// did not fit its column type.
	RecordCoercion(field string)

	// RecordSchemaEvolution is called when opening a log added columns.
	RecordSchemaEvolution(added int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAppend(time.Duration, error) {}
func (NoopMetricsCollector) RecordValidationFailure(string)    {}
func (NoopMetricsCollector) RecordMetric(imagemetric.ID, bool) {}
func (NoopMetricsCollector) RecordCoercion(string)             {}
func (NoopMetricsCollector) RecordSchemaEvolution(int)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AppendCount        atomic.Int64
	AppendErrors       atomic.Int64
	AppendTotalNanos   atomic.Int64
	ValidationFailures atomic.Int64
	MetricsComputed    atomic.Int64
	MetricsNull        atomic.Int64
	Coercions          atomic.Int64
	SchemaEvolutions   atomic.Int64
	ColumnsAdded       atomic.Int64
}

// RecordAppend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAppend(duration time.Duration, err error) {
	b.AppendCount.Add(1)
	b.AppendTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AppendErrors.Add(1)
	}
}

// RecordValidationFailure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordValidationFailure(string) {
	b.ValidationFailures.Add(1)
}

// RecordMetric implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMetric(_ imagemetric.ID, computed bool) {
	if computed {
		b.MetricsComputed.Add(1)
	} else {
		b.MetricsNull.Add(1)
	}
}

// RecordCoercion implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCoercion(string) {
	b.Coercions.Add(1)
}

// RecordSchemaEvolution implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSchemaEvolution(added int) {
	b.SchemaEvolutions.Add(1)
	b.ColumnsAdded.Add(int64(added))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AppendCount:        b.AppendCount.Load(),
		AppendErrors:       b.AppendErrors.Load(),
		AppendAvgNanos:     b.getAvgAppendNanos(),
		ValidationFailures: b.ValidationFailures.Load(),
		MetricsComputed:    b.MetricsComputed.Load(),
		MetricsNull:        b.MetricsNull.Load(),
		Coercions:          b.Coercions.Load(),
		SchemaEvolutions:   b.SchemaEvolutions.Load(),
		ColumnsAdded:       b.ColumnsAdded.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgAppendNanos() int64 {
	count := b.AppendCount.Load()
	if count == 0 {
		return 0
	}
	return b.AppendTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AppendCount        int64
	AppendErrors       int64
	AppendAvgNanos     int64
	ValidationFailures int64
	MetricsComputed    int64
	MetricsNull        int64
	Coercions          int64
	SchemaEvolutions   int64
	ColumnsAdded       int64
}
