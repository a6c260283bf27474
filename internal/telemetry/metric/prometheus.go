package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "replikv"

// Command results.
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultRateLimited = "rate_limited"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Connection metrics
	ConnectionsActive   prometheus.Gauge
	ConnectionsTotal    prometheus.Counter
	ConnectionsRejected *prometheus.CounterVec
	ProtocolErrors      prometheus.Counter

	// Store metrics
	KeysExpired prometheus.Counter

	// Replication metrics
	HandshakesTotal   *prometheus.CounterVec
	HandshakeDuration prometheus.Histogram
	FullResyncs       prometheus.Counter
}

// NewRegistry creates a registry with the Go runtime and process collectors
// and all replikv metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		registry: reg,
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed, by command name and result.",
		}, []string{"command", "result"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command execution latency.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"command"}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Open client connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Accepted client connections.",
		}),
		ConnectionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Client connections refused, by reason.",
		}, []string{"reason"}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Connections closed after malformed input.",
		}),
		KeysExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_expired_total",
			Help:      "Keys removed because their TTL elapsed.",
		}),
		HandshakesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replication_handshakes_total",
			Help:      "Replica handshakes attempted, by result.",
		}, []string{"result"}),
		HandshakeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "replication_handshake_duration_seconds",
			Help:      "Time to complete the replica handshake.",
			Buckets:   prometheus.DefBuckets,
		}),
		FullResyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replication_full_resyncs_total",
			Help:      "FULLRESYNC replies sent to replicas.",
		}),
	}

	reg.MustRegister(
		r.CommandsTotal,
		r.CommandDuration,
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.ConnectionsRejected,
		r.ProtocolErrors,
		r.KeysExpired,
		r.HandshakesTotal,
		r.HandshakeDuration,
		r.FullResyncs,
	)
	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns the /metrics handler of the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// RecordCommand counts one command with its result.
func (r *Registry) RecordCommand(command, result string) {
	r.CommandsTotal.WithLabelValues(command, result).Inc()
}

// ObserveCommandDuration records command latency in seconds.
func (r *Registry) ObserveCommandDuration(command string, seconds float64) {
	r.CommandDuration.WithLabelValues(command).Observe(seconds)
}

// ConnectionOpened tracks an accepted connection.
func (r *Registry) ConnectionOpened() {
	r.ConnectionsTotal.Inc()
	r.ConnectionsActive.Inc()
}

// ConnectionClosed tracks a closed connection.
func (r *Registry) ConnectionClosed() {
	r.ConnectionsActive.Dec()
}

// RecordRejectedConnection counts a refused connection.
func (r *Registry) RecordRejectedConnection(reason string) {
	r.ConnectionsRejected.WithLabelValues(reason).Inc()
}

// IncProtocolErrors counts a connection closed after malformed input.
func (r *Registry) IncProtocolErrors() {
	r.ProtocolErrors.Inc()
}

// IncKeysExpired counts one expired key.
func (r *Registry) IncKeysExpired() {
	r.KeysExpired.Inc()
}

// RecordHandshake records a finished replica handshake.
func (r *Registry) RecordHandshake(ok bool, seconds float64) {
	result := ResultOK
	if !ok {
		result = ResultError
	}
	r.HandshakesTotal.WithLabelValues(result).Inc()
	if ok {
		r.HandshakeDuration.Observe(seconds)
	}
}

// IncFullResyncs counts one FULLRESYNC reply.
func (r *Registry) IncFullResyncs() {
	r.FullResyncs.Inc()
}
