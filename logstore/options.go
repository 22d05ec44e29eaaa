package logstore

import (
	"log/slog"

	"github.com/hupe1980/lookout/internal/colfile"
)

// DefaultCompression is the column block compression used for new writes.
const DefaultCompression = colfile.CompressionLZ4

type options struct {
	compression colfile.Compression
	model       string
	writerID    string
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*options)

// WithCompression sets the compression for column blocks.
func WithCompression(c colfile.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithModel records the model name in the file metadata of a new log.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithWriterID records the writer id in the file metadata of a new log.
func WithWriterID(id string) Option {
	return func(o *options) {
		o.writerID = id
	}
}

// WithLogger sets the logger. Nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		compression: DefaultCompression,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}
