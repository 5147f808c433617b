package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/flowchart/pkg/observability"
)

// Metrics is a Prometheus implementation of the observability hooks.
type Metrics struct {
	arrangeDuration *prometheus.HistogramVec
	arrangeNodes    prometheus.Histogram
	routeDuration   *prometheus.HistogramVec
	arrowsRouted    prometheus.Counter
	danglingDeps    prometheus.Counter
	cacheEvents     *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpInFlight    prometheus.Gauge
	liveSessions    prometheus.Gauge
}

var (
	_ observability.LayoutHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		arrangeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowchart_arrange_duration_seconds",
			Help:    "Arrange pass latency, labelled by direction and outcome.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"direction", "status"}),

		arrangeNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowchart_arrange_nodes",
			Help:    "Number of nodes per arrange pass.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),

		routeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowchart_route_duration_seconds",
			Help:    "Route pass latency, labelled by path strategy and outcome.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"strategy", "status"}),

		arrowsRouted: f.NewCounter(prometheus.CounterOpts{
			Name: "flowchart_arrows_routed_total",
			Help: "Total number of connectors computed.",
		}),

		danglingDeps: f.NewCounter(prometheus.CounterOpts{
			Name: "flowchart_dangling_dependencies_total",
			Help: "Total number of deps skipped because they name an unknown node.",
		}),

		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flowchart_cache_events_total",
			Help: "Result cache lookups and writes, labelled by key type and event.",
		}, []string{"key_type", "event"}),

		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flowchart_cache_written_bytes_total",
			Help: "Bytes written to the result cache, labelled by key type.",
		}, []string{"key_type"}),

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flowchart_http_requests_total",
			Help: "HTTP requests served, labelled by method, route and status code.",
		}, []string{"method", "route", "code"}),

		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowchart_http_request_duration_seconds",
			Help:    "HTTP request latency, labelled by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "flowchart_http_requests_in_flight",
			Help: "Requests currently being served.",
		}),

		liveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "flowchart_live_sessions",
			Help: "Open websocket editing sessions.",
		}),
	}
}

// Register installs m as the process-wide layout, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetLayoutHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnArrangeStart implements observability.LayoutHooks.
func (m *Metrics) OnArrangeStart(_ context.Context, _ string, nodeCount int) {
	m.arrangeNodes.Observe(float64(nodeCount))
}

// OnArrangeComplete implements observability.LayoutHooks.
func (m *Metrics) OnArrangeComplete(_ context.Context, direction string, d time.Duration, err error) {
	m.arrangeDuration.WithLabelValues(direction, status(err)).Observe(d.Seconds())
}

// OnRouteComplete implements observability.LayoutHooks.
func (m *Metrics) OnRouteComplete(_ context.Context, strategy string, arrows int, d time.Duration, err error) {
	m.routeDuration.WithLabelValues(strategy, status(err)).Observe(d.Seconds())
	m.arrowsRouted.Add(float64(arrows))
}

// OnDanglingDependency implements observability.LayoutHooks.
func (m *Metrics) OnDanglingDependency(context.Context, string, string) {
	m.danglingDeps.Inc()
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (m *Metrics) OnRequest(context.Context, string, string) {
	m.httpInFlight.Inc()
}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// SessionOpened increments the open session gauge.
func (m *Metrics) SessionOpened() { m.liveSessions.Inc() }

// SessionClosed decrements the open session gauge.
func (m *Metrics) SessionClosed() { m.liveSessions.Dec() }
