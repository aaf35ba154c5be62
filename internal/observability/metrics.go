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
	// History reconstruction metrics
	HistoryRequests  *prometheus.CounterVec
	ProviderBarsKept prometheus.Counter
	TickBarsBuilt    prometheus.Counter
	AnomaliesDropped *prometheus.CounterVec
	FetchFailures    *prometheus.CounterVec
	FetchLatency     *prometheus.HistogramVec

	// Live feed metrics
	LiveTicksReceived prometheus.Counter
	LiveBufferSize    prometheus.Gauge
	FeedConnected     prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "txf_bar_engine"
	}

	return &Metrics{
		HistoryRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "requests_total",
			Help:      "Total number of history reconstruction requests by session kind",
		}, []string{"session"}),
		ProviderBarsKept: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "provider_bars_kept_total",
			Help:      "Total number of provider bars admitted into reconstructed series",
		}),
		TickBarsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "tick_bars_built_total",
			Help:      "Total number of bars aggregated from raw ticks",
		}),
		AnomaliesDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "anomalies_dropped_total",
			Help:      "Total number of provider points dropped by correction rules, by reason",
		}, []string{"reason"}),
		FetchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetch_failures_total",
			Help:      "Total number of failed provider fetch calls by call",
		}, []string{"call"}),
		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetch_latency_seconds",
			Help:      "Provider fetch call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"call"}),

		LiveTicksReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "ticks_received_total",
			Help:      "Total number of live ticks received from the feed",
		}),
		LiveBufferSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "buffer_size",
			Help:      "Current number of points in the live tick buffer",
		}),
		FeedConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "connected",
			Help:      "Whether the market-data feed session is up (1) or down (0)",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordHistoryRequest increments the history request counter.
func RecordHistoryRequest(session string) {
	DefaultMetrics.HistoryRequests.WithLabelValues(session).Inc()
}

// RecordProviderBarsKept adds to the admitted provider bar counter.
func RecordProviderBarsKept(n int) {
	DefaultMetrics.ProviderBarsKept.Add(float64(n))
}

// RecordTickBarsBuilt adds to the tick-derived bar counter.
func RecordTickBarsBuilt(n int) {
	DefaultMetrics.TickBarsBuilt.Add(float64(n))
}

// RecordAnomalyDropped counts one point dropped by a correction rule.
func RecordAnomalyDropped(reason string) {
	DefaultMetrics.AnomaliesDropped.WithLabelValues(reason).Inc()
}

// RecordFetchFailure counts one failed provider fetch call.
func RecordFetchFailure(call string) {
	DefaultMetrics.FetchFailures.WithLabelValues(call).Inc()
}

// RecordFetchLatency records one provider fetch call's duration.
func RecordFetchLatency(call string, seconds float64) {
	DefaultMetrics.FetchLatency.WithLabelValues(call).Observe(seconds)
}

// RecordLiveTick counts one live tick and updates the buffer gauge.
func RecordLiveTick(bufferSize int) {
	DefaultMetrics.LiveTicksReceived.Inc()
	DefaultMetrics.LiveBufferSize.Set(float64(bufferSize))
}

// SetFeedConnected updates the feed connection gauge.
func SetFeedConnected(up bool) {
	if up {
		DefaultMetrics.FeedConnected.Set(1)
	} else {
		DefaultMetrics.FeedConnected.Set(0)
	}
}
