// Package observability holds the bot's Prometheus instruments.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the bot.
type Metrics struct {
	registry *prometheus.Registry

	ActiveSessions prometheus.Gauge
	FlowEntries    *prometheus.CounterVec
	Events         *prometheus.CounterVec
	HandlerErrors  *prometheus.CounterVec
	RemoteCalls    *prometheus.CounterVec
	RemoteLatency  *prometheus.HistogramVec
	RecordsWritten *prometheus.CounterVec
}

// NewMetrics registers the instruments on a fresh registry together with the
// Go runtime and process collectors.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live conversation sessions.",
		}),
		FlowEntries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_entries_total",
			Help:      "Flow entries by flow.",
		}, []string{"flow"}),
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Inbound chat events by kind.",
		}, []string{"kind"}),
		HandlerErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_errors_total",
			Help:      "Failed event handlers by event kind.",
		}, []string{"kind"}),
		RemoteCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Remote API calls by pipeline and status class.",
		}, []string{"pipeline", "status"}),
		RemoteLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Remote API call latency by pipeline.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"pipeline"}),
		RecordsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Persisted audit records by table.",
		}, []string{"table"}),
	}
}

// ObserveRemoteCall records one remote call. A zero status means no response
// was received.
func (m *Metrics) ObserveRemoteCall(pipeline string, status int, d time.Duration) {
	m.RemoteCalls.WithLabelValues(pipeline, StatusClass(status)).Inc()
	m.RemoteLatency.WithLabelValues(pipeline).Observe(d.Seconds())
}

// StatusClass buckets an HTTP status as "2xx", "4xx" and so on, or "none".
func StatusClass(status int) string {
	if status <= 0 {
		return "none"
	}
	return strconv.Itoa(status/100) + "xx"
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
