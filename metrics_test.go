package lookout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lookout/blobstore"
	"github.com/hupe1980/lookout/imagemetric"
	"github.com/hupe1980/lookout/logstore"
)

func TestBasicMetricsCollector(t *testing.T) {
	var m BasicMetricsCollector
	m.RecordAppend(2*time.Millisecond, nil)
	m.RecordAppend(4*time.Millisecond, errors.New("boom"))
	m.RecordValidationFailure("bbox_y2")
	m.RecordMetric(imagemetric.Contrast, true)
	m.RecordMetric(imagemetric.Blur, false)
	m.RecordCoercion("confidence")
	m.RecordSchemaEvolution(2)

	assert.Equal(t, BasicMetricsStats{
		AppendCount:        2,
		AppendErrors:       1,
		AppendAvgNanos:     (3 * time.Millisecond).Nanoseconds(),
		ValidationFailures: 1,
		MetricsComputed:    1,
		MetricsNull:        1,
		Coercions:          1,
		SchemaEvolutions:   1,
		ColumnsAdded:       2,
	}, m.GetStats())
}

func TestPrometheusCollector(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	pc, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	_, err = NewPrometheusCollector(reg)
	assert.Error(t, err, "registering twice must fail")

	backend := blobstore.NewMemoryStore()
	logger, err := New(ctx, "m", WithBackend(backend), WithWriterID("1"), WithMetricsCollector(pc))
	require.NoError(t, err)
	require.NoError(t, logger.LogPrediction(ctx, prediction("a.png")))
	require.NoError(t, logger.Close())

	logger, err = New(ctx, "m", WithBackend(backend), WithWriterID("1"),
		WithMetrics(imagemetric.Contrast, imagemetric.Blur), WithMetricsCollector(pc))
	require.NoError(t, err)
	defer logger.Close()

	require.NoError(t, logger.LogPrediction(ctx, prediction("b.png")))
	require.Error(t, logger.Log(ctx, map[string]any{"image_name": "c.png"}, nil))

	families, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 2.0, findMetric(t, families, "lookout_schema_columns_added_total", nil).GetCounter().GetValue())
	assert.Equal(t, 1.0, findMetric(t, families, "lookout_validation_failures_total",
		map[string]string{"field": "pred_class"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, findMetric(t, families, "lookout_metric_results_total",
		map[string]string{"metric": "contrast", "status": "null"}).GetCounter().GetValue())
	assert.Equal(t, uint64(2), findMetric(t, families, "lookout_append_duration_seconds",
		map[string]string{"status": "success"}).GetHistogram().GetSampleCount())
}

func findMetric(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func TestEventLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	events := NewEventLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	backend := blobstore.NewMemoryStore()
	logger, err := New(ctx, "m", WithBackend(backend), WithWriterID("1"))
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	logger, err = New(ctx, "m", WithBackend(backend), WithWriterID("1"),
		WithMetrics(imagemetric.Orientation), WithEventLogger(events))
	require.NoError(t, err)
	defer logger.Close()

	p := prediction("a.png")
	p.Image = imagemetric.FromBytes([]byte("not an image"))
	require.NoError(t, logger.LogPrediction(ctx, p))

	var msgs []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.Equal(t, "m", rec["model"])
		msgs = append(msgs, rec["msg"].(string))
	}
	assert.Contains(t, msgs, "schema evolved")
	assert.Contains(t, msgs, "metric not computed")
	assert.Contains(t, msgs, "append completed")
}

func TestTranslateError(t *testing.T) {
	cause := errors.New("boom")

	err := translateError(&logstore.OpError{Op: logstore.OpRead, Object: "m/x.lkc", Err: cause})
	var storeErr *ErrStoreIO
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "read", storeErr.Op)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store read m/x.lkc: boom", err.Error())

	assert.ErrorIs(t, translateError(logstore.ErrNullMandatory), ErrValidation)
	assert.ErrorIs(t, translateError(logstore.ErrClosed), ErrClosed)
	assert.NoError(t, translateError(nil))
	assert.Equal(t, cause, translateError(cause))
}
