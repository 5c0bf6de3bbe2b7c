// Package metrics defines the Prometheus instruments exported by the server.
// Every instrument is registered on a Registry owned by the caller, so tests can
// build as many servers as they like.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ragchat"

// Status labels for request outcomes.
const (
	StatusSuccess      = "success"
	StatusError        = "error"
	StatusDisconnected = "disconnected"
)

// Metrics holds the server's instruments.
type Metrics struct {
	Registry *prometheus.Registry

	// RequestsTotal labels: endpoint, status.
	RequestsTotal *prometheus.CounterVec

	// ErrorsTotal labels: endpoint, code (decode, documents, prompt, model_<kind>, stream).
	ErrorsTotal *prometheus.CounterVec

	// ActiveStreams labels: endpoint.
	ActiveStreams *prometheus.GaugeVec

	// TimeToFirstChunkSeconds labels: endpoint.
	TimeToFirstChunkSeconds *prometheus.HistogramVec

	// StreamDurationSeconds labels: endpoint, status.
	StreamDurationSeconds *prometheus.HistogramVec

	// ChunksTotal labels: endpoint.
	ChunksTotal *prometheus.CounterVec

	// ClientDisconnectsTotal labels: endpoint.
	ClientDisconnectsTotal *prometheus.CounterVec

	// DocumentLoadsTotal labels: result (success, error).
	DocumentLoadsTotal *prometheus.CounterVec
}

// New creates the instruments on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Chat requests by endpoint and outcome",
		}, []string{"endpoint", "status"}),
		ErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Chat request failures by endpoint and error code",
		}, []string{"endpoint", "code"}),
		ActiveStreams: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_streams",
			Help:      "Response streams currently open",
		}, []string{"endpoint"}),
		TimeToFirstChunkSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "time_to_first_chunk_seconds",
			Help:      "Delay between opening the model stream and its first chunk",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"endpoint"}),
		StreamDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stream_duration_seconds",
			Help:      "Total response stream duration",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"endpoint", "status"}),
		ChunksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Text chunks forwarded to clients",
		}, []string{"endpoint"}),
		ClientDisconnectsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_disconnects_total",
			Help:      "Streams abandoned by the client before completion",
		}, []string{"endpoint"}),
		DocumentLoadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_loads_total",
			Help:      "Document collection loads by result",
		}, []string{"result"}),
	}
}

// StreamStarted marks a stream open and returns the function that records its
// outcome.
func (m *Metrics) StreamStarted(endpoint string) func(status string, chunks int, firstChunk time.Duration) {
	start := time.Now()
	m.ActiveStreams.WithLabelValues(endpoint).Inc()

	return func(status string, chunks int, firstChunk time.Duration) {
		m.ActiveStreams.WithLabelValues(endpoint).Dec()
		m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
		m.StreamDurationSeconds.WithLabelValues(endpoint, status).Observe(time.Since(start).Seconds())
		m.ChunksTotal.WithLabelValues(endpoint).Add(float64(chunks))
		if chunks > 0 {
			m.TimeToFirstChunkSeconds.WithLabelValues(endpoint).Observe(firstChunk.Seconds())
		}
		if status == StatusDisconnected {
			m.ClientDisconnectsTotal.WithLabelValues(endpoint).Inc()
		}
	}
}

// Failed records a request that failed before streaming started.
func (m *Metrics) Failed(endpoint, code string) {
	m.RequestsTotal.WithLabelValues(endpoint, StatusError).Inc()
	m.ErrorsTotal.WithLabelValues(endpoint, code).Inc()
}
