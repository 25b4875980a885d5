package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all pipeline metrics.
type Metrics struct {
	// Capture loop counters
	FramesRead      atomic.Uint64
	FramesProcessed atomic.Uint64

	// Recognition counters
	Candidates      atomic.Uint64
	BelowConfidence atomic.Uint64
	RecognizeErrors atomic.Uint64

	// Acceptance counters
	Accepted   atomic.Uint64
	Suppressed atomic.Uint64

	// Persistence
	PersistErrors    atomic.Uint64
	PersistLatencyMs atomic.Uint64

	// Session state
	SessionDetections atomic.Uint64

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own Prometheus registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "platewatch_frames_read_total",
			Help: "Total frames read from the capture source",
		},
		func() float64 { return float64(m.FramesRead.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "platewatch_frames_processed_total",
			Help: "Total frames handed to the recognizer",
		},
		func() float64 { return float64(m.FramesProcessed.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "platewatch_candidates_total",
			Help: "Total plate candidates produced by the recognizer",
		},
		func() float64 { return float64(m.Candidates.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "platewatch_below_confidence_total",
			Help: "Total candidates rejected by the confidence gate",
		},
		func() float64 { return float64(m.BelowConfidence.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "platewatch_recognize_errors_total",
			Help: "Total recognizer call failures",
		},
		func() float64 { return float64(m.RecognizeErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "platewatch_detections_accepted_total",
			Help: "Total detections accepted into the session journal",
		},
		func() float64 { return float64(m.Accepted.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "platewatch_duplicates_suppressed_total",
			Help: "Total candidates suppressed as within-window duplicates",
		},
		func() float64 { return float64(m.Suppressed.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "platewatch_persist_errors_total",
			Help: "Total session journal write failures",
		},
		func() float64 { return float64(m.PersistErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "platewatch_persist_latency_ms",
			Help: "Latency of the last session journal write in milliseconds",
		},
		func() float64 { return float64(m.PersistLatencyMs.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "platewatch_session_detections",
			Help: "Detections accepted in the current session",
		},
		func() float64 { return float64(m.SessionDetections.Load()) },
	))
}

// UpdatePersistLatency records the duration of a journal write.
func (m *Metrics) UpdatePersistLatency(d time.Duration) {
	m.PersistLatencyMs.Store(uint64(d.Milliseconds()))
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
