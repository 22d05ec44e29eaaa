package lookout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/lookout/blobstore"
	"github.com/hupe1980/lookout/imagemetric"
	"github.com/hupe1980/lookout/logstore"
	"github.com/hupe1980/lookout/schema"
	"github.com/hupe1980/lookout/table"
)

// Prediction is a single model output to be logged.
type Prediction struct {
	ImageName  string
	PredClass  string
	Confidence float64
	BBox       imagemetric.BBox
	// Image is optional. Without it every enabled metric is stored as null.
	Image *imagemetric.Input
}

func (p Prediction) fields() map[string]any {
	return map[string]any{
		schema.ImageName:  p.ImageName,
		schema.PredClass:  p.PredClass,
		schema.Confidence: p.Confidence,
		schema.BBoxX1:     p.BBox.X1,
		schema.BBoxY1:     p.BBox.Y1,
		schema.BBoxX2:     p.BBox.X2,
		schema.BBoxY2:     p.BBox.Y2,
	}
}

// Logger appends predictions to the log of one model and writer.
//
// Logger is safe for concurrent use; calls are serialized.
type Logger struct {
	mu sync.Mutex

	model    string
	writerID string
	metrics  []imagemetric.ID
	registry *imagemetric.Registry
	store    *logstore.Store

	collector MetricsCollector
	logger    *EventLogger
	closed    bool
}

// New opens the log of model, creating it if needed and widening it with the
// columns of newly enabled metrics.
func New(ctx context.Context, model string, optFns ...Option) (*Logger, error) {
	if err := validateModel(model); err != nil {
		return nil, err
	}

	opts := applyOptions(optFns)

	metrics, err := enabledMetrics(opts.registry, opts.metrics)
	if err != nil {
		return nil, err
	}

	backend := opts.backend
	if backend == nil {
		backend = blobstore.NewLocalStore(opts.logsDir)
	}

	logger := opts.logger.WithModel(model)
	object := logstore.ObjectName(model, opts.writerID)

	st, err := logstore.Open(ctx, backend, object, schema.Desired(metrics),
		logstore.WithCompression(opts.compression),
		logstore.WithModel(model),
		logstore.WithWriterID(opts.writerID),
		logstore.WithLogger(logger.Logger),
	)
	if err != nil {
		err = translateError(err)
		logger.ErrorContext(ctx, "open failed", "object", object, "error", err)
		return nil, err
	}

	if added := st.Added(); len(added) > 0 {
		names := make([]string, len(added))
		for i, f := range added {
			names[i] = f.Name
		}
		logger.LogSchemaEvolution(ctx, object, names)
		opts.metricsCollector.RecordSchemaEvolution(len(added))
	}

	return &Logger{
		model:     model,
		writerID:  opts.writerID,
		metrics:   metrics,
		registry:  opts.registry,
		store:     st,
		collector: opts.metricsCollector,
		logger:    logger,
	}, nil
}

func validateModel(model string) error {
	if model == "" || model == "." || model == ".." || strings.ContainsAny(model, `/\`) {
		return fmt.Errorf("%w: invalid model name %q", ErrValidation, model)
	}
	return nil
}

func enabledMetrics(r *imagemetric.Registry, ids []imagemetric.ID) ([]imagemetric.ID, error) {
	seen := make(map[imagemetric.ID]bool, len(ids))
	out := make([]imagemetric.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := r.Lookup(id); !ok {
			return nil, fmt.Errorf("%w: %w: %s", ErrValidation, imagemetric.ErrUnknownMetric, id)
		}
		if schema.IsMandatory(string(id)) {
			return nil, fmt.Errorf("%w: metric %s shadows a mandatory field", ErrValidation, id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// LogPrediction logs p. See Log.
func (l *Logger) LogPrediction(ctx context.Context, p Prediction) error {
	return l.Log(ctx, p.fields(), p.Image)
}

// Log appends one row built from the mandatory fields and the enabled metrics
// computed from image.
//
// fields must carry every mandatory field with a non-nil value, otherwise Log
// returns *ErrMissingField without touching the store. Other keys are ignored.
// Metrics that cannot be computed are stored as null.
func (l *Logger) Log(ctx context.Context, fields map[string]any, image *imagemetric.Input) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	mandatory := make(map[string]any, len(schema.MandatoryNames()))
	for _, name := range schema.MandatoryNames() {
		mandatory[name] = fields[name]
	}
	row := table.RowFromAny(mandatory)
	for _, name := range schema.MandatoryNames() {
		if row[name].IsNull() {
			err := &ErrMissingField{Field: name}
			l.collector.RecordValidationFailure(name)
			l.logger.LogValidationFailure(ctx, err)
			return err
		}
	}

	start := time.Now()

	res, failures := l.registry.Evaluate(image, bboxOf(row), l.metrics)
	for _, f := range failures {
		l.logger.LogMetricFailure(ctx, f.ID, f.Err)
	}
	for _, id := range l.metrics {
		v := res[id]
		l.collector.RecordMetric(id, v != nil)
		if v == nil {
			row[string(id)] = table.Null()
			continue
		}
		row[string(id)] = table.Float(*v)
	}

	report, err := l.store.Append(ctx, row)
	for _, c := range report.Coerced {
		l.collector.RecordCoercion(c.Field)
		l.logger.LogCoercion(ctx, c)
	}
	err = translateError(err)

	if errors.Is(err, ErrValidation) {
		for _, c := range report.Coerced {
			if schema.IsMandatory(c.Field) {
				l.collector.RecordValidationFailure(c.Field)
			}
		}
		l.logger.LogValidationFailure(ctx, err)
		return err
	}

	l.collector.RecordAppend(time.Since(start), err)
	l.logger.LogAppend(ctx, l.store.Name(), l.store.Info().Rows, err)
	return err
}

func bboxOf(row table.Row) *imagemetric.BBox {
	var c [4]float64
	for i, name := range [...]string{schema.BBoxX1, schema.BBoxY1, schema.BBoxX2, schema.BBoxY2} {
		v, err := table.Coerce(row[name], schema.FieldTypeFloat32)
		if err != nil {
			return nil
		}
		f, ok := v.AsFloat64()
		if !ok {
			return nil
		}
		c[i] = f
	}
	return &imagemetric.BBox{X1: c[0], Y1: c[1], X2: c[2], Y2: c[3]}
}

// Snapshot reads every row of the log.
func (l *Logger) Snapshot(ctx context.Context) (*table.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}
	t, err := l.store.ReadSnapshot(ctx)
	return t, translateError(err)
}

// Close releases the writer lock. Further calls to Log return ErrClosed.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.store.Close()
}

// Schema returns the current schema of the log.
func (l *Logger) Schema() schema.Schema {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Schema()
}

// ObjectName returns the name of the log object in the backend.
func (l *Logger) ObjectName() string { return l.store.Name() }

// Model returns the model name.
func (l *Logger) Model() string { return l.model }

// WriterID returns the writer identity.
func (l *Logger) WriterID() string { return l.writerID }

// Metrics returns the enabled metrics in column order.
func (l *Logger) Metrics() []imagemetric.ID {
	return append([]imagemetric.ID(nil), l.metrics...)
}

// Info returns the state of the log as of the last write.
func (l *Logger) Info() logstore.Info {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Info()
}
