package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// LabelEventType is the metric label for the event kind.
	LabelEventType = "event_type"
	// LabelReason is the metric label for why an event was dropped.
	LabelReason = "reason"
)

// Metrics captures ingestion and reducer metrics on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	eventsTotal   *prometheus.CounterVec
	droppedTotal  *prometheus.CounterVec
	applyDuration prometheus.Histogram
	graphNodes    prometheus.Gauge
	graphEdges    prometheus.Gauge
	queueDepth    prometheus.Gauge
	subscribers   prometheus.Gauge
}

// NewMetrics initializes a new metrics registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "searchviz_events_total", Help: "Events applied to the graph, by type"},
			[]string{LabelEventType},
		),
		droppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "searchviz_events_dropped_total", Help: "Events dropped at ingestion and changes dropped for lagging streams, by reason"},
			[]string{LabelReason},
		),
		applyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "searchviz_apply_duration_seconds",
			Help:    "Time spent applying one event",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{Name: "searchviz_graph_nodes", Help: "Nodes in the graph"}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{Name: "searchviz_graph_edges", Help: "Edges in the graph"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{Name: "searchviz_queue_depth", Help: "Events waiting for the reducer"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "searchviz_stream_subscribers",
			Help: "Open graph change streams",
		}),
	}

	registry.MustRegister(
		m.eventsTotal, m.droppedTotal, m.applyDuration,
		m.graphNodes, m.graphEdges, m.queueDepth, m.subscribers,
		collectors.NewGoCollector(),
	)
	return m
}

// RecordApplied records one event handed to the reducer.
func (m *Metrics) RecordApplied(eventType string, duration time.Duration) {
	m.eventsTotal.WithLabelValues(eventType).Inc()
	m.applyDuration.Observe(duration.Seconds())
}

// RecordDropped records an event that never reached the reducer, or a
// change a stream subscriber missed.
func (m *Metrics) RecordDropped(reason string) {
	m.droppedTotal.WithLabelValues(reason).Inc()
}

// SetGraphSize records the current node and edge counts.
func (m *Metrics) SetGraphSize(nodes, edges int) {
	m.graphNodes.Set(float64(nodes))
	m.graphEdges.Set(float64(edges))
}

// SetQueueDepth records the number of buffered events.
func (m *Metrics) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

// AddSubscribers adjusts the open stream gauge by delta.
func (m *Metrics) AddSubscribers(delta int) {
	m.subscribers.Add(float64(delta))
}

// Registry exposes the registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
