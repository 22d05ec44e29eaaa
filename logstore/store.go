package logstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/lookout/blobstore"
	"github.com/hupe1980/lookout/internal/colfile"
	"github.com/hupe1980/lookout/schema"
	"github.com/hupe1980/lookout/table"
)

// Extension is the file extension of log objects.
const Extension = ".lkc"

// ObjectName returns the object name of the log for model written by writerID.
func ObjectName(model, writerID string) string {
	return path.Join(model, model+"_logs_"+writerID+Extension)
}

// AppendReport describes the adjustments made to an appended row.
type AppendReport struct {
	// Coerced lists values that could not be converted to their column
	// type and were stored as null.
	Coerced []table.Coercion
	// Ignored lists input keys that are not columns of the store.
	Ignored []string
}

// Info describes the current state of a log.
type Info struct {
	Name        string
	Meta        colfile.Meta
	Schema      schema.Schema
	Rows        int
	Size        int64
	Compression colfile.Compression
}

// Store is an open log.
type Store struct {
	backend blobstore.BlobStore
	name    string
	opts    options
	logger  *slog.Logger
	lock    io.Closer

	schema schema.Schema
	added  []schema.Field
	meta   colfile.Meta
	rows   int
	size   int64
	closed bool
}

// Open opens the log name on backend, creating it with desired if it does
// not exist. An existing log is widened with the desired columns it lacks.
//
// On local backends Open takes an advisory writer lock that is held until
// Close.
func Open(ctx context.Context, backend blobstore.BlobStore, name string, desired schema.Schema, optFns ...Option) (*Store, error) {
	opts := applyOptions(optFns)

	lock, err := blobstore.LockIfSupported(ctx, backend, name)
	if err != nil {
		return nil, &OpError{Op: OpOpen, Object: name, Err: err}
	}

	s := &Store{
		backend: backend,
		name:    name,
		opts:    opts,
		logger:  opts.logger.With("object", name),
		lock:    lock,
	}

	if err := s.init(ctx, desired); err != nil {
		_ = lock.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context, desired schema.Schema) error {
	f, err := s.load(ctx)
	if errors.Is(err, blobstore.ErrNotFound) {
		return s.create(ctx, desired)
	}
	if err != nil {
		return &OpError{Op: OpOpen, Object: s.name, Err: err}
	}

	if conflicts := schema.Conflicts(f.Table.Schema(), desired); len(conflicts) > 0 {
		return &OpError{Op: OpOpen, Object: s.name, Err: fmt.Errorf("%w: %v", ErrSchemaConflict, conflicts)}
	}

	s.meta = f.Meta
	s.schema = f.Table.Schema()
	s.rows = f.Table.NumRows()
	s.size = colfile.HeaderSize + int64(f.Header.BodyLength) //nolint:gosec // bounded by the decoded object size

	final, added := schema.Reconcile(f.Table.Schema(), desired)
	if len(added) == 0 {
		s.logger.Debug("log opened", "rows", s.rows, "columns", s.schema.Len())
		return nil
	}

	if err := f.Table.AppendColumns(added...); err != nil {
		return &OpError{Op: OpOpen, Object: s.name, Err: err}
	}
	if err := s.write(ctx, f.Table); err != nil {
		return err
	}
	s.added = added

	s.logger.Debug("schema evolved", "added", len(added), "columns", final.Len(), "rows", s.rows)
	return nil
}

func (s *Store) create(ctx context.Context, desired schema.Schema) error {
	s.meta = colfile.Meta{
		StoreID:   uuid.New(),
		CreatedAt: time.Now().UTC(),
		Model:     s.opts.model,
		Writer:    s.opts.writerID,
	}
	if err := s.write(ctx, table.New(desired)); err != nil {
		return err
	}
	s.logger.Debug("log created", "store_id", s.meta.StoreID, "columns", desired.Len())
	return nil
}

func (s *Store) load(ctx context.Context) (*colfile.File, error) {
	data, err := blobstore.ReadAll(ctx, s.backend, s.name)
	if err != nil {
		return nil, err
	}
	return colfile.Decode(data)
}

// write encodes t and replaces the object. The store state only advances
// when the write succeeded.
func (s *Store) write(ctx context.Context, t *table.Table) error {
	data, err := colfile.Encode(t, s.meta, s.opts.compression)
	if err != nil {
		return &OpError{Op: OpWrite, Object: s.name, Err: err}
	}
	if err := s.backend.Put(ctx, s.name, data); err != nil {
		return &OpError{Op: OpWrite, Object: s.name, Err: err}
	}
	s.schema = t.Schema()
	s.rows = t.NumRows()
	s.size = int64(len(data))
	return nil
}

// Append adds one row to the log.
//
// Missing keys and values that cannot be coerced to their column type are
// stored as null; a null in a mandatory column rejects the row before any
// I/O. Keys that are not columns are ignored.
func (s *Store) Append(ctx context.Context, row table.Row) (AppendReport, error) {
	if s.closed {
		return AppendReport{}, ErrClosed
	}

	rt, coerced, ignored := table.BuildRow(s.schema, row)
	report := AppendReport{Coerced: coerced, Ignored: ignored}

	var nulls []string
	for i := 0; i < rt.NumCols(); i++ {
		name := rt.Schema().FieldAt(i).Name
		if schema.IsMandatory(name) && rt.Column(i).IsNull(0) {
			nulls = append(nulls, name)
		}
	}
	if len(nulls) > 0 {
		return report, nullMandatory(nulls)
	}

	current, err := s.ReadSnapshot(ctx)
	if err != nil {
		return report, err
	}
	merged, err := table.Concat(current, rt)
	if err != nil {
		return report, &OpError{Op: OpRead, Object: s.name, Err: fmt.Errorf("%w: %v", ErrSchemaMismatch, err)}
	}
	if err := s.write(ctx, merged); err != nil {
		return report, err
	}

	s.logger.Debug("row appended", "rows", s.rows, "coerced", len(coerced), "ignored", len(ignored))
	return report, nil
}

// ReadSnapshot reads the full table from the backend.
func (s *Store) ReadSnapshot(ctx context.Context) (*table.Table, error) {
	if s.closed {
		return nil, ErrClosed
	}
	f, err := s.load(ctx)
	if err != nil {
		return nil, &OpError{Op: OpRead, Object: s.name, Err: err}
	}
	return f.Table, nil
}

// WriteSnapshot replaces the log with t, which must have the store schema.
func (s *Store) WriteSnapshot(ctx context.Context, t *table.Table) error {
	if s.closed {
		return ErrClosed
	}
	if !t.Schema().Equal(s.schema) {
		return fmt.Errorf("%w: have %s, want %s", ErrSchemaMismatch, t.Schema(), s.schema)
	}
	return s.write(ctx, t)
}

// Schema returns the current schema of the log.
func (s *Store) Schema() schema.Schema { return s.schema }

// Added returns the columns that Open appended to an existing log.
func (s *Store) Added() []schema.Field { return append([]schema.Field(nil), s.added...) }

// Name returns the object name of the log.
func (s *Store) Name() string { return s.name }

// Info returns the state of the log as of the last read or write.
func (s *Store) Info() Info {
	return Info{
		Name:        s.name,
		Meta:        s.meta,
		Schema:      s.schema,
		Rows:        s.rows,
		Size:        s.size,
		Compression: s.opts.compression,
	}
}

// Close releases the writer lock. It is safe to call Close more than once.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.lock.Close()
}
