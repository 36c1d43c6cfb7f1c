// Package metrics defines the Prometheus metrics of a stretching session.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the session metrics. A nil *Metrics is valid and records
// nothing.
//
// Metrics:
//   - stretch_evaluations_total{result} - pose comparisons by result
//   - stretch_compare_duration_seconds - comparison call latency
//   - stretch_utterances_total{outcome} - utterances by outcome
//   - stretch_speech_failures_total - synthesis and playback failures
//   - stretch_phase_transitions_total{phase} - phase entries
//   - stretch_samples_total{disposition} - pose samples accepted or dropped
//   - stretch_sessions_completed_total - routines completed
type Metrics struct {
	Evaluations       *prometheus.CounterVec
	CompareDuration   prometheus.Histogram
	Utterances        *prometheus.CounterVec
	SpeechFailures    prometheus.Counter
	PhaseTransitions  *prometheus.CounterVec
	Samples           *prometheus.CounterVec
	SessionsCompleted prometheus.Counter
}

// Evaluation results.
const (
	ResultMatch        = "match"
	ResultMismatch     = "mismatch"
	ResultNoLandmarks  = "no_landmarks"
	ResultNoMetadata   = "no_metadata"
	ResultNetworkError = "network_error"
)

// Sample dispositions.
const (
	SampleAccepted = "accepted"
	SampleDropped  = "dropped"
)

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stretch_evaluations_total",
				Help: "Total number of pose evaluations by result",
			},
			[]string{"result"},
		),
		CompareDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stretch_compare_duration_seconds",
				Help:    "Duration of pose comparison calls in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8},
			},
		),
		Utterances: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stretch_utterances_total",
				Help: "Total number of spoken cues by outcome",
			},
			[]string{"outcome"},
		),
		SpeechFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stretch_speech_failures_total",
				Help: "Total number of speech synthesis or playback failures",
			},
		),
		PhaseTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stretch_phase_transitions_total",
				Help: "Total number of phase entries by phase",
			},
			[]string{"phase"},
		),
		Samples: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stretch_samples_total",
				Help: "Total number of pose samples received by disposition",
			},
			[]string{"disposition"},
		),
		SessionsCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stretch_sessions_completed_total",
				Help: "Total number of routines completed",
			},
		),
	}
}

func (m *Metrics) ObserveEvaluation(result string, took time.Duration) {
	if m == nil {
		return
	}

	m.Evaluations.WithLabelValues(result).Inc()
	if took > 0 {
		m.CompareDuration.Observe(took.Seconds())
	}
}

func (m *Metrics) ObserveUtterance(outcome string) {
	if m == nil {
		return
	}

	m.Utterances.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSpeechFailure() {
	if m == nil {
		return
	}

	m.SpeechFailures.Inc()
}

func (m *Metrics) ObservePhase(phase string) {
	if m == nil {
		return
	}

	m.PhaseTransitions.WithLabelValues(phase).Inc()
}

func (m *Metrics) ObserveSample(disposition string) {
	if m == nil {
		return
	}

	m.Samples.WithLabelValues(disposition).Inc()
}

func (m *Metrics) ObserveCompletion() {
	if m == nil {
		return
	}

	m.SessionsCompleted.Inc()
}
