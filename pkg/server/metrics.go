package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/tessera/pkg/protocol"
)

// MetricsConfig configures the Prometheus collectors of a Server.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "tessera").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for sync and batch durations.
	// Default: prometheus.DefBuckets
	Buckets []float64
}

// MetricsOption configures the metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// Metrics holds the session collectors.
type Metrics struct {
	sessionsActive prometheus.Gauge
	sessionsTotal  *prometheus.CounterVec
	framesReceived *prometheus.CounterVec
	framesSent     *prometheus.CounterVec
	bytesReceived  prometheus.Counter
	bytesSent      prometheus.Counter
	frameErrors    *prometheus.CounterVec
	syncDuration   prometheus.Histogram
	nodesPainted   prometheus.Counter
	staleRefs      prometheus.Counter
	rejectedValues prometheus.Counter
}

// NewMetrics registers the collectors with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer, opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "tessera",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "sessions_active",
			Help:        "Number of open sessions",
			ConstLabels: config.ConstLabels,
		}),

		sessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "sessions_total",
			Help:        "Sessions by handshake outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		framesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "frames_received_total",
			Help:        "Frames received from clients",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		framesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "frames_sent_total",
			Help:        "Frames sent to clients",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		bytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "received_bytes_total",
			Help:        "Bytes received from clients, frame headers included",
			ConstLabels: config.ConstLabels,
		}),

		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "sent_bytes_total",
			Help:        "Bytes sent to clients, frame headers included",
			ConstLabels: config.ConstLabels,
		}),

		frameErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "frame_errors_total",
			Help:        "Client frames answered with an Error frame",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		syncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "sync_duration_seconds",
			Help:        "Duration of window synchronization passes",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		nodesPainted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "painted_nodes_total",
			Help:        "Paint nodes emitted, references included",
			ConstLabels: config.ConstLabels,
		}),

		staleRefs: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "stale_references_total",
			Help:        "Variable changes addressed to components no longer in the window",
			ConstLabels: config.ConstLabels,
		}),

		rejectedValues: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "rejected_values_total",
			Help:        "Variable values refused by their component",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// The methods below accept a nil receiver so that a Server without metrics
// needs no checks at call sites.

func (m *Metrics) sessionOpened() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
}

func (m *Metrics) sessionClosed() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

func (m *Metrics) handshake(status protocol.HelloStatus) {
	if m == nil {
		return
	}
	m.sessionsTotal.WithLabelValues(status.String()).Inc()
}

func (m *Metrics) received(t protocol.FrameType, n int) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(t.String()).Inc()
	m.bytesReceived.Add(float64(n))
}

func (m *Metrics) sent(t protocol.FrameType, n int) {
	if m == nil {
		return
	}
	m.framesSent.WithLabelValues(t.String()).Inc()
	m.bytesSent.Add(float64(n))
}

func (m *Metrics) frameError(code protocol.ErrorCode) {
	if m == nil {
		return
	}
	m.frameErrors.WithLabelValues(code.String()).Inc()
}

func (m *Metrics) synced(seconds float64, nodes int) {
	if m == nil {
		return
	}
	m.syncDuration.Observe(seconds)
	m.nodesPainted.Add(float64(nodes))
}

func (m *Metrics) batch(stale, rejected int) {
	if m == nil {
		return
	}
	m.staleRefs.Add(float64(stale))
	m.rejectedValues.Add(float64(rejected))
}
