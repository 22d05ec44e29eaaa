package lookout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lookout/blobstore"
	"github.com/hupe1980/lookout/imagemetric"
	"github.com/hupe1980/lookout/internal/colfile"
	"github.com/hupe1980/lookout/internal/fs"
	"github.com/hupe1980/lookout/logstore"
	"github.com/hupe1980/lookout/schema"
	"github.com/hupe1980/lookout/table"
	"github.com/hupe1980/lookout/testutil"
)

func prediction(name string) Prediction {
	return Prediction{
		ImageName:  name,
		PredClass:  "person",
		Confidence: 0.97,
		BBox:       imagemetric.BBox{X1: 1, Y1: 1, X2: 5, Y2: 7},
	}
}

func floatAt(t *testing.T, tbl *table.Table, row int, col string) (float64, bool) {
	t.Helper()
	c, ok := tbl.ColumnByName(col)
	require.True(t, ok, "column %s", col)
	if c.IsNull(row) {
		return 0, false
	}
	return c.Value(row).AsFloat64()
}

func TestScenario_CreateThenEvolve(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	img := imagemetric.FromImage(testutil.Checkerboard(8, 8, 1))

	logger, err := New(ctx, "m", WithLogsDir(dir), WithWriterID("1"), WithMetrics(imagemetric.Contrast))
	require.NoError(t, err)

	p := prediction("first.png")
	p.Image = img
	require.NoError(t, logger.LogPrediction(ctx, p))

	wantNames := append(schema.MandatoryNames(), "contrast")
	assert.Equal(t, wantNames, logger.Schema().Names())
	snap, err := logger.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.NumRows())
	require.NoError(t, logger.Close())

	_, err = os.Stat(filepath.Join(dir, "m", "m_logs_1.lkc"))
	require.NoError(t, err)

	logger, err = New(ctx, "m", WithLogsDir(dir), WithWriterID("1"),
		WithMetrics(imagemetric.Contrast, imagemetric.Blur))
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, append(wantNames, "blur"), logger.Schema().Names())
	snap, err = logger.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, snap.NumRows())
	_, ok := floatAt(t, snap, 0, "blur")
	assert.False(t, ok, "pre-existing row must be null in the new column")
	contrast, ok := floatAt(t, snap, 0, "contrast")
	require.True(t, ok)
	assert.InDelta(t, 127.5, contrast, 1e-4)

	p = prediction("second.png")
	p.Image = img
	require.NoError(t, logger.LogPrediction(ctx, p))

	snap, err = logger.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, snap.NumRows())
	_, ok = floatAt(t, snap, 1, "contrast")
	assert.True(t, ok)
	blur, ok := floatAt(t, snap, 1, "blur")
	assert.True(t, ok)
	assert.Positive(t, blur)
}

func TestLog_MissingMandatoryField(t *testing.T) {
	ctx := context.Background()
	backend := blobstore.NewMemoryStore()
	metrics := &BasicMetricsCollector{}

	logger, err := New(ctx, "m", WithBackend(backend), WithMetricsCollector(metrics))
	require.NoError(t, err)
	defer logger.Close()
	puts := backend.Puts()

	for _, field := range schema.MandatoryNames() {
		t.Run(field, func(t *testing.T) {
			fields := testutil.NewRNG(1).Prediction(0)
			delete(fields, field)

			err := logger.Log(ctx, fields, nil)
			require.ErrorIs(t, err, ErrValidation)

			var missing *ErrMissingField
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, field, missing.Field)
		})
	}

	t.Run("nil value", func(t *testing.T) {
		fields := testutil.NewRNG(1).Prediction(0)
		fields[schema.Confidence] = nil
		var missing *ErrMissingField
		require.ErrorAs(t, logger.Log(ctx, fields, nil), &missing)
		assert.Equal(t, schema.Confidence, missing.Field)
	})

	typedNils := []struct {
		field string
		value any
	}{
		{schema.ImageName, (*url.URL)(nil)},
		{schema.Confidence, (*int)(nil)},
	}
	for _, tt := range typedNils {
		t.Run(fmt.Sprintf("typed nil %T", tt.value), func(t *testing.T) {
			fields := testutil.NewRNG(1).Prediction(0)
			fields[tt.field] = tt.value

			var missing *ErrMissingField
			require.ErrorAs(t, logger.Log(ctx, fields, nil), &missing)
			assert.Equal(t, tt.field, missing.Field)
		})
	}

	assert.Equal(t, puts, backend.Puts(), "validation failures must not write")
	assert.Equal(t, 0, logger.Info().Rows)
	assert.Equal(t, int64(len(schema.MandatoryNames())+1+len(typedNils)), metrics.GetStats().ValidationFailures)
	assert.Zero(t, metrics.GetStats().AppendCount)
}

func TestLog_UncoercibleMandatoryValue(t *testing.T) {
	ctx := context.Background()
	backend := blobstore.NewMemoryStore()
	metrics := &BasicMetricsCollector{}

	logger, err := New(ctx, "m", WithBackend(backend), WithMetricsCollector(metrics))
	require.NoError(t, err)
	defer logger.Close()
	puts := backend.Puts()

	fields := testutil.NewRNG(1).Prediction(0)
	fields[schema.Confidence] = "very high"

	err = logger.Log(ctx, fields, nil)
	require.ErrorIs(t, err, ErrValidation)
	var missing *ErrMissingField
	assert.False(t, errors.As(err, &missing))
	assert.Equal(t, puts, backend.Puts())
	assert.Equal(t, int64(1), metrics.GetStats().Coercions)
	assert.Equal(t, int64(1), metrics.GetStats().ValidationFailures)
}

func TestLog_CoercesMandatoryValues(t *testing.T) {
	ctx := context.Background()

	logger, err := New(ctx, "m", WithBackend(blobstore.NewMemoryStore()))
	require.NoError(t, err)
	defer logger.Close()

	err = logger.Log(ctx, map[string]any{
		"image_name": "a.png",
		"pred_class": "car",
		"confidence": "0.5",
		"bbox_x1":    1,
		"bbox_y1":    int64(2),
		"bbox_x2":    float32(3.5),
		"bbox_y2":    "4",
		"extra":      "ignored",
	}, nil)
	require.NoError(t, err)

	snap, err := logger.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, logger.Schema().Names(), snap.Schema().Names())
	row := snap.Row(0)
	for name, want := range map[string]float64{"confidence": 0.5, "bbox_x1": 1, "bbox_y1": 2, "bbox_x2": 3.5, "bbox_y2": 4} {
		got, ok := row[name].AsFloat64()
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := snap.ColumnByName("extra")
	assert.False(t, ok)
}

func TestLog_NoImageStoresNullMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}

	logger, err := New(ctx, "m", WithBackend(blobstore.NewMemoryStore()),
		WithMetrics(imagemetric.Contrast, imagemetric.Blur), WithMetricsCollector(metrics))
	require.NoError(t, err)
	defer logger.Close()

	require.NoError(t, logger.LogPrediction(ctx, prediction("a.png")))

	snap, err := logger.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, snap.NumRows())
	for _, id := range []string{"contrast", "blur"} {
		_, ok := floatAt(t, snap, 0, id)
		assert.False(t, ok, id)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.MetricsNull)
	assert.Equal(t, int64(1), stats.AppendCount)
	assert.Zero(t, stats.AppendErrors)
}

func TestLog_MetricIndependence(t *testing.T) {
	ctx := context.Background()

	exploding := imagemetric.Metric{
		ID:       "exploding",
		Requires: imagemetric.RequiresImage,
		Func: func(*imagemetric.Frame, *imagemetric.BBox) (float64, error) {
			panic("boom")
		},
	}
	reg, err := imagemetric.NewRegistry(append(imagemetric.Builtins(), exploding)...)
	require.NoError(t, err)

	metrics := &BasicMetricsCollector{}
	logger, err := New(ctx, "m", WithBackend(blobstore.NewMemoryStore()), WithRegistry(reg),
		WithMetrics("exploding", imagemetric.Contrast, imagemetric.Orientation), WithMetricsCollector(metrics))
	require.NoError(t, err)
	defer logger.Close()

	p := prediction("a.png")
	p.Image = imagemetric.FromImage(testutil.Checkerboard(8, 4, 2))
	require.NoError(t, logger.LogPrediction(ctx, p))

	snap, err := logger.Snapshot(ctx)
	require.NoError(t, err)

	_, ok := floatAt(t, snap, 0, "exploding")
	assert.False(t, ok)
	contrast, ok := floatAt(t, snap, 0, "contrast")
	require.True(t, ok)
	assert.InDelta(t, 127.5, contrast, 1e-4)
	orientation, ok := floatAt(t, snap, 0, "orientation")
	require.True(t, ok)
	assert.Equal(t, 1.0, orientation)

	assert.Equal(t, int64(2), metrics.GetStats().MetricsComputed)
	assert.Equal(t, int64(1), metrics.GetStats().MetricsNull)
}

func TestLog_BBoxRatio(t *testing.T) {
	ctx := context.Background()

	logger, err := New(ctx, "m", WithBackend(blobstore.NewMemoryStore()), WithMetrics(imagemetric.BBoxRatio))
	require.NoError(t, err)
	defer logger.Close()

	p := prediction("a.png")
	p.BBox = imagemetric.BBox{X1: 0, Y1: 0, X2: 10, Y2: 10}
	p.Image = imagemetric.FromBytes(testutil.EncodePNG(t, testutil.Uniform(100, 50, 128)))
	require.NoError(t, logger.LogPrediction(ctx, p))

	// Degenerate box: the row is still written, the ratio is null.
	p.BBox = imagemetric.BBox{X1: 10, Y1: 10, X2: 10, Y2: 20}
	require.NoError(t, logger.LogPrediction(ctx, p))

	snap, err := logger.Snapshot(ctx)
	require.NoError(t, err)
	ratio, ok := floatAt(t, snap, 0, "bbox_ratio")
	require.True(t, ok)
	assert.InDelta(t, 0.02, ratio, 1e-6)
	_, ok = floatAt(t, snap, 1, "bbox_ratio")
	assert.False(t, ok)
}

func TestLog_UnreadableImage(t *testing.T) {
	ctx := context.Background()

	logger, err := New(ctx, "m", WithBackend(blobstore.NewMemoryStore()), WithMetrics(imagemetric.Contrast))
	require.NoError(t, err)
	defer logger.Close()

	p := prediction("a.png")
	p.Image = imagemetric.FromPath(filepath.Join(t.TempDir(), "missing.png"))
	require.NoError(t, logger.LogPrediction(ctx, p))

	snap, err := logger.Snapshot(ctx)
	require.NoError(t, err)
	_, ok := floatAt(t, snap, 0, "contrast")
	assert.False(t, ok)
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()

	for _, model := range []string{"", ".", "..", "a/b", `a\b`} {
		t.Run(fmt.Sprintf("model %q", model), func(t *testing.T) {
			_, err := New(ctx, model, WithBackend(blobstore.NewMemoryStore()))
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	t.Run("unknown metric", func(t *testing.T) {
		_, err := New(ctx, "m", WithBackend(blobstore.NewMemoryStore()), WithMetrics("brightness"))
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, imagemetric.ErrUnknownMetric)
	})
}

func TestNew_DuplicateMetrics(t *testing.T) {
	ctx := context.Background()

	logger, err := New(ctx, "m", WithBackend(blobstore.NewMemoryStore()),
		WithMetrics(imagemetric.Blur, imagemetric.Contrast, imagemetric.Blur))
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, []imagemetric.ID{imagemetric.Blur, imagemetric.Contrast}, logger.Metrics())
	assert.Equal(t, "m", logger.Model())
	assert.Equal(t, fmt.Sprint(os.Getpid()), logger.WriterID())
	assert.Equal(t, fmt.Sprintf("m/m_logs_%d.lkc", os.Getpid()), logger.ObjectName())
}

func TestNew_CorruptStore(t *testing.T) {
	ctx := context.Background()
	backend := blobstore.NewMemoryStore()
	require.NoError(t, backend.Put(ctx, "m/m_logs_1.lkc", []byte("garbage")))

	_, err := New(ctx, "m", WithBackend(backend), WithWriterID("1"))
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, colfile.ErrCorrupt)

	var storeErr *ErrStoreIO
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "open", storeErr.Op)
	assert.Equal(t, "m/m_logs_1.lkc", storeErr.Object)
}

func TestNew_SchemaConflictIsOpenFailure(t *testing.T) {
	ctx := context.Background()
	backend := blobstore.NewMemoryStore()

	stored, err := schema.Desired(nil).Append(schema.Field{Name: string(imagemetric.Contrast), Type: schema.FieldTypeString})
	require.NoError(t, err)
	data, err := colfile.Encode(table.New(stored), colfile.Meta{Model: "m", Writer: "1"}, colfile.CompressionNone)
	require.NoError(t, err)
	require.NoError(t, backend.Put(ctx, "m/m_logs_1.lkc", data))

	_, err = New(ctx, "m", WithBackend(backend), WithWriterID("1"), WithMetrics(imagemetric.Contrast))
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, logstore.ErrSchemaConflict)

	var storeErr *ErrStoreIO
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "open", storeErr.Op)
}

func TestLog_WriteFailure(t *testing.T) {
	ctx := context.Background()
	injected := errors.New("disk full")
	ffs := fs.NewFaultyFS(nil)
	backend := blobstore.NewLocalStore(t.TempDir(), blobstore.WithFileSystem(ffs))
	metrics := &BasicMetricsCollector{}

	logger, err := New(ctx, "m", WithBackend(backend), WithWriterID("1"), WithMetricsCollector(metrics))
	require.NoError(t, err)
	defer logger.Close()
	require.NoError(t, logger.LogPrediction(ctx, prediction("a.png")))

	ffs.AddRule(fs.TempSuffix, fs.Fault{FailAfterBytes: -1, FailOnSync: true, Err: injected})
	err = logger.LogPrediction(ctx, prediction("b.png"))
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, injected)

	var storeErr *ErrStoreIO
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "write", storeErr.Op)

	ffs.ClearRules()
	snap, err := logger.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.NumRows())

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.AppendCount)
	assert.Equal(t, int64(1), stats.AppendErrors)
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	logger, err := New(ctx, "m", WithBackend(blobstore.NewMemoryStore()))
	require.NoError(t, err)
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	assert.ErrorIs(t, logger.LogPrediction(ctx, prediction("a.png")), ErrClosed)
	_, err = logger.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLog_Concurrent(t *testing.T) {
	ctx := context.Background()

	logger, err := New(ctx, "m", WithBackend(blobstore.NewMemoryStore()), WithMetrics(imagemetric.Orientation))
	require.NoError(t, err)
	defer logger.Close()

	const workers, perWorker = 4, 5
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				p := prediction(fmt.Sprintf("w%d_%d.png", w, i))
				p.Image = imagemetric.FromImage(testutil.Uniform(4, 8, 10))
				assert.NoError(t, logger.LogPrediction(ctx, p))
			}
		}(w)
	}
	wg.Wait()

	snap, err := logger.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, snap.NumRows())
}
