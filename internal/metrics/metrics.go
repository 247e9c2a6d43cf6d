// Package metrics exposes resolution progress as Prometheus metrics. A
// Recorder is a reactor.Observer; register it once and share it between runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/yangreactor/internal/reactor"
)

const namespace = "yangreactor"

// Recorder holds the resolution metrics. It is safe for concurrent use.
type Recorder struct {
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	contexts    prometheus.Histogram
	sweeps      *prometheus.CounterVec
	stalled     *prometheus.CounterVec
	phaseSweeps *prometheus.HistogramVec
}

var _ reactor.Observer = (*Recorder)(nil)

// New creates an unregistered recorder.
func New() *Recorder {
	return &Recorder{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Resolution runs by result.",
			},
			[]string{"result"}, // "success" or "error"
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a resolution run in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 100µs to ~3s
			},
			[]string{"result"},
		),
		contexts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_statements",
				Help:      "Statement contexts created by a run, copies included.",
				Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
			},
		),
		sweeps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "phase",
				Name:      "sweeps_total",
				Help:      "Scheduler sweeps by phase.",
			},
			[]string{"phase"},
		),
		stalled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "phase",
				Name:      "stalled_sweeps_total",
				Help:      "Sweeps that made no progress, by phase.",
			},
			[]string{"phase"},
		),
		phaseSweeps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "phase",
				Name:      "sweeps_to_fixed_point",
				Help:      "Sweeps a phase needed to reach its fixed point.",
				Buckets:   prometheus.LinearBuckets(1, 1, 10),
			},
			[]string{"phase"},
		),
	}
}

// MustRegister registers the metrics with the given Prometheus registry.
func (m *Recorder) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(m.runs, m.runDuration, m.contexts, m.sweeps, m.stalled, m.phaseSweeps)
}

// SweepCompleted implements reactor.Observer.
func (m *Recorder) SweepCompleted(phase reactor.Phase, progress bool) {
	m.sweeps.WithLabelValues(phase.String()).Inc()
	if !progress {
		m.stalled.WithLabelValues(phase.String()).Inc()
	}
}

// PhaseCompleted implements reactor.Observer.
func (m *Recorder) PhaseCompleted(phase reactor.Phase, sweeps int) {
	m.phaseSweeps.WithLabelValues(phase.String()).Observe(float64(sweeps))
}

// RunCompleted implements reactor.Observer.
func (m *Recorder) RunCompleted(stats reactor.Stats, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.WithLabelValues(result).Observe(stats.Duration.Seconds())
	m.contexts.Observe(float64(stats.Contexts))
}
