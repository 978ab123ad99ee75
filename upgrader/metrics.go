/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package upgrader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Script kinds used as metric label values.
const (
	ScriptKindVersioned = "versioned"
	ScriptKindCommon    = "common"
)

// Script results used as metric label values.
const (
	ScriptResultApplied = "applied"
	ScriptResultSkipped = "skipped"
	ScriptResultFailed  = "failed"
)

// MetricsCollector collects metrics of upgrade runs.
type MetricsCollector interface {
	IncScripts(kind, result string)
	ObserveStatementDuration(kind string, duration time.Duration)
}

type disabledMetrics struct{}

func (disabledMetrics) IncScripts(string, string)                      {}
func (disabledMetrics) ObserveStatementDuration(string, time.Duration) {}

// PrometheusMetricsOpts represents options for PrometheusMetrics.
type PrometheusMetricsOpts struct {
	// Namespace is a namespace for metrics. It will be prepended to all metric names.
	Namespace string
	// DurationBuckets is a list of buckets for the statement duration histogram.
	DurationBuckets []float64
	// ConstLabels is a set of labels that will be applied to all metrics.
	ConstLabels prometheus.Labels
}

// PrometheusMetrics represents a collector of Prometheus metrics for upgrade runs.
type PrometheusMetrics struct {
	ScriptsTotal      *prometheus.CounterVec
	StatementDuration *prometheus.HistogramVec
}

var _ MetricsCollector = (*PrometheusMetrics)(nil)

// DefaultStatementDurationBuckets is the default buckets of the statement duration histogram.
var DefaultStatementDurationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 60, 300}

// NewPrometheusMetrics creates a new metrics collector.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{})
}

// NewPrometheusMetricsWithOpts creates a new metrics collector with the provided options.
func NewPrometheusMetricsWithOpts(opts PrometheusMetricsOpts) *PrometheusMetrics {
	buckets := opts.DurationBuckets
	if buckets == nil {
		buckets = DefaultStatementDurationBuckets
	}
	return &PrometheusMetrics{
		ScriptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "dbupgrade_scripts_total",
			Help:        "Number of processed scripts by kind and result.",
			ConstLabels: opts.ConstLabels,
		}, []string{"kind", "result"}),
		StatementDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "dbupgrade_statement_duration_seconds",
			Help:        "A histogram of script statements execution durations.",
			Buckets:     buckets,
			ConstLabels: opts.ConstLabels,
		}, []string{"kind"}),
	}
}

// MustRegister registers metrics in Prometheus and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(pm.ScriptsTotal, pm.StatementDuration)
}

// Unregister cancels registration of metrics collector in Prometheus.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.ScriptsTotal)
	prometheus.Unregister(pm.StatementDuration)
}

// IncScripts increments the counter of processed scripts.
func (pm *PrometheusMetrics) IncScripts(kind, result string) {
	pm.ScriptsTotal.WithLabelValues(kind, result).Inc()
}

// ObserveStatementDuration observes the duration of a single statement.
func (pm *PrometheusMetrics) ObserveStatementDuration(kind string, duration time.Duration) {
	pm.StatementDuration.WithLabelValues(kind).Observe(duration.Seconds())
}
