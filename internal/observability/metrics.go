// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pipeline metrics
	RunsTotal     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	StageFailures *prometheus.CounterVec

	// Registry and monitoring metrics
	ModelsRegistered *prometheus.CounterVec
	AlertsRaised     *prometheus.CounterVec
	EvaluationsTotal *prometheus.CounterVec
	LastRunCompleted prometheus.Gauge
	LastHoldoutR2    *prometheus.GaugeVec
	BarsFetched      prometheus.Counter
	FetchesTotal     *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "stock_prediction_lab"
	}

	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs by final state",
		}, []string{"state"}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		StageFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_failures_total",
			Help:      "Stage failures by stage",
		}, []string{"stage"}),
		ModelsRegistered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "models_registered_total",
			Help:      "Models registered by variant",
		}, []string{"variant"}),
		AlertsRaised: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "alerts_raised_total",
			Help:      "Alerts raised by kind",
		}, []string{"kind"}),
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "evaluations_total",
			Help:      "Model evaluations by outcome",
		}, []string{"outcome"}),
		LastRunCompleted: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "last_run_completed_timestamp_seconds",
			Help:      "Unix time of the last completed run",
		}),
		LastHoldoutR2: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "last_holdout_r2",
			Help:      "Most recent holdout R² by symbol and variant",
		}, []string{"symbol", "variant"}),
		BarsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "bars_fetched_total",
			Help:      "Total daily bars fetched",
		}),
		FetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "fetches_total",
			Help:      "Fetch attempts by outcome",
		}, []string{"outcome"}),
	}
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
