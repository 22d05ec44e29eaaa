package lookout

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/hupe1980/lookout/blobstore"
	"github.com/hupe1980/lookout/imagemetric"
	"github.com/hupe1980/lookout/internal/colfile"
	"github.com/hupe1980/lookout/logstore"
)

// DefaultLogsDir is the local directory used when no backend is configured.
const DefaultLogsDir = "lookout_logs"

// Compression selects the block compression of log columns.
type Compression = colfile.Compression

// Supported compressions.
const (
	CompressionNone = colfile.CompressionNone
	CompressionLZ4  = colfile.CompressionLZ4
	CompressionZSTD = colfile.CompressionZSTD
)

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	return colfile.ParseCompression(s)
}

type options struct {
	logsDir          string
	backend          blobstore.BlobStore
	metrics          []imagemetric.ID
	registry         *imagemetric.Registry
	writerID         string
	compression      Compression
	metricsCollector MetricsCollector
	logger           *EventLogger
}

// Option configures a Logger.
type Option func(*options)

// WithLogsDir stores logs in a local directory. It is ignored when a backend
// is configured with WithBackend.
func WithLogsDir(dir string) Option {
	return func(o *options) {
		o.logsDir = dir
	}
}

// WithBackend stores logs in an arbitrary blob store, e.g. S3 or MinIO.
func WithBackend(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.backend = store
	}
}

// WithMetrics enables image metrics. Each enabled metric gets a column; the
// order of first enablement is the column order.
func WithMetrics(ids ...imagemetric.ID) Option {
	return func(o *options) {
		o.metrics = append(o.metrics, ids...)
	}
}

// WithRegistry computes metrics with a custom registry instead of
// imagemetric.Default.
func WithRegistry(r *imagemetric.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithWriterID sets the writer identity embedded in the log object name.
// Defaults to the process id. Two live loggers must never share one.
func WithWriterID(id string) Option {
	return func(o *options) {
		o.writerID = id
	}
}

// WithCompression sets the column block compression for writes.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &lookout.BasicMetricsCollector{}
//	logger, _ := lookout.New(ctx, "detector", lookout.WithMetricsCollector(metrics))
//	// ... log predictions ...
//	stats := metrics.GetStats()
//	fmt.Printf("Appends: %d, Avg latency: %dns\n", stats.AppendCount, stats.AppendAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithEventLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithEventLogger(logger *EventLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text event logger with the specified level and sets it.
// Convenience wrapper for WithEventLogger(NewTextEventLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextEventLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logsDir:          DefaultLogsDir,
		registry:         imagemetric.Default(),
		writerID:         strconv.Itoa(os.Getpid()),
		compression:      logstore.DefaultCompression,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopEventLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopEventLogger()
	}
	if o.registry == nil {
		o.registry = imagemetric.Default()
	}
	return o
}
