package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/lookout/blobstore"
	"github.com/hupe1980/lookout/internal/colfile"
	"github.com/hupe1980/lookout/logstore"
	"github.com/hupe1980/lookout/table"
)

// ErrNoData is returned by Load when a model has no logs.
var ErrNoData = errors.New("insights: no log files found")

// DefaultConcurrency bounds the number of logs Load decodes at once.
const DefaultConcurrency = 4

// Dataset is the merged content of a model's logs.
type Dataset struct {
	// Files lists the objects the dataset was read from, in name order.
	Files []string
	Table *table.Table
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	concurrency int
}

// WithConcurrency sets how many logs are read at once.
func WithConcurrency(n int) LoadOption {
	return func(o *loadOptions) {
		o.concurrency = n
	}
}

// Load reads and merges every log of model in backend.
func Load(ctx context.Context, backend blobstore.BlobStore, model string, optFns ...LoadOption) (*Dataset, error) {
	opts := loadOptions{concurrency: DefaultConcurrency}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.concurrency < 1 {
		opts.concurrency = 1
	}

	names, err := backend.List(ctx, model+"/")
	if err != nil {
		return nil, fmt.Errorf("insights: list %s: %w", model, err)
	}

	var files []string
	for _, name := range names {
		if strings.HasSuffix(name, logstore.Extension) {
			files = append(files, name)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w for model %s", ErrNoData, model)
	}

	tables := make([]*table.Table, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for i, name := range files {
		g.Go(func() error {
			data, err := blobstore.ReadAll(gctx, backend, name)
			if err != nil {
				return fmt.Errorf("insights: read %s: %w", name, err)
			}
			f, err := colfile.Decode(data)
			if err != nil {
				return fmt.Errorf("insights: decode %s: %w", name, err)
			}
			tables[i] = f.Table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := table.Merge(tables...)
	if err != nil {
		return nil, fmt.Errorf("insights: merge: %w", err)
	}
	return &Dataset{Files: files, Table: merged}, nil
}

// FromTable wraps an in-memory table.
func FromTable(t *table.Table) *Dataset {
	return &Dataset{Table: t}
}

// NumericColumns returns the names of the numeric columns in schema order.
func (d *Dataset) NumericColumns() []string {
	var names []string
	for i := 0; i < d.Table.NumCols(); i++ {
		if d.Table.Column(i).IsNumeric() {
			names = append(names, d.Table.Schema().FieldAt(i).Name)
		}
	}
	return names
}

// values returns the non-null values of a numeric column with their row indices.
func (d *Dataset) values(name string) (vals []float64, rows []int) {
	c, ok := d.Table.ColumnByName(name)
	if !ok {
		return nil, nil
	}
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Numeric(i); ok {
			vals = append(vals, v)
			rows = append(rows, i)
		}
	}
	return vals, rows
}
