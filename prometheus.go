package lookout

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/lookout/imagemetric"
)

// PrometheusCollector implements MetricsCollector with Prometheus metrics.
type PrometheusCollector struct {
	appendLatency *prometheus.HistogramVec
	validation    *prometheus.CounterVec
	metricResults *prometheus.CounterVec
	coercions     *prometheus.CounterVec
	columnsAdded  prometheus.Counter
}

// NewPrometheusCollector creates a PrometheusCollector and registers its
// metrics with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &PrometheusCollector{
		appendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lookout_append_duration_seconds",
			Help:    "Latency of prediction appends including metric computation",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		validation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lookout_validation_failures_total",
			Help: "Predictions rejected for a missing or null mandatory field",
		}, []string{"field"}),
		metricResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lookout_metric_results_total",
			Help: "Image metric results by outcome",
		}, []string{"metric", "status"}),
		coercions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lookout_coercions_total",
			Help: "Values stored as null because they did not fit their column type",
		}, []string{"field"}),
		columnsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lookout_schema_columns_added_total",
			Help: "Columns added to existing logs by schema evolution",
		}),
	}

	for _, c := range []prometheus.Collector{p.appendLatency, p.validation, p.metricResults, p.coercions, p.columnsAdded} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordAppend implements MetricsCollector.
func (p *PrometheusCollector) RecordAppend(d time.Duration, err error) {
	p.appendLatency.WithLabelValues(status(err)).Observe(d.Seconds())
}

// RecordValidationFailure implements MetricsCollector.
func (p *PrometheusCollector) RecordValidationFailure(field string) {
	p.validation.WithLabelValues(field).Inc()
}

// RecordMetric implements MetricsCollector.
func (p *PrometheusCollector) RecordMetric(id imagemetric.ID, computed bool) {
	s := "null"
	if computed {
		s = "computed"
	}
	p.metricResults.WithLabelValues(string(id), s).Inc()
}

// RecordCoercion implements MetricsCollector.
func (p *PrometheusCollector) RecordCoercion(field string) {
	p.coercions.WithLabelValues(field).Inc()
}

// RecordSchemaEvolution implements MetricsCollector.
func (p *PrometheusCollector) RecordSchemaEvolution(added int) {
	p.columnsAdded.Add(float64(added))
}
