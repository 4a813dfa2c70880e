// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ai_interview"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsCreated prometheus.Counter
	SessionsByState *prometheus.CounterVec

	// Live relay metrics
	RelaysTotal    prometheus.Counter
	RelaysActive   prometheus.Gauge
	RelayDuration  prometheus.Histogram
	AudioBytesIn   prometheus.Counter
	AudioBytesOut  prometheus.Counter
	ClientFramesIn prometheus.Counter

	// Transcript metrics
	TranscriptsPartial *prometheus.CounterVec
	TranscriptsFinal   *prometheus.CounterVec

	// Model tool metrics
	ToolCalls *prometheus.CounterVec

	// Phase metrics
	PhaseTransitions *prometheus.CounterVec

	// Evaluation pipeline metrics
	PipelineRuns          *prometheus.CounterVec
	PipelineStageAttempts *prometheus.CounterVec
	PipelineDuration      prometheus.Histogram

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of interview sessions created",
		}),
		SessionsByState: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_status_transitions_total",
			Help:      "Total session status transitions",
		}, []string{"status"}),

		RelaysTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relays_total",
			Help:      "Total number of live relays started",
		}),
		RelaysActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relays_active",
			Help:      "Number of currently active live relays",
		}),
		RelayDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_duration_seconds",
			Help:      "Duration of live relays in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		}),
		AudioBytesIn: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_in_total",
			Help:      "Total audio bytes received from clients",
		}),
		AudioBytesOut: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_out_total",
			Help:      "Total synthesized audio bytes sent to clients",
		}),
		ClientFramesIn: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_frames_in_total",
			Help:      "Total frames received from clients",
		}),

		TranscriptsPartial: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_partial_total",
			Help:      "Total partial transcript fragments relayed",
		}, []string{"role"}),
		TranscriptsFinal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_final_total",
			Help:      "Total final transcript fragments relayed",
		}, []string{"role"}),

		ToolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total model tool invocations",
		}, []string{"tool", "outcome"}),

		PhaseTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_transitions_total",
			Help:      "Total interview phase transitions",
		}, []string{"phase"}),

		PipelineRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total evaluation pipeline runs",
		}, []string{"outcome"}),
		PipelineStageAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_attempts_total",
			Help:      "Total evaluation pipeline stage attempts",
		}, []string{"stage"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of evaluation pipeline runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total Kafka publish attempts",
		}, []string{"topic"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total Kafka publish errors",
		}, []string{"topic"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Latency of Kafka publishes in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"topic"}),
	}
}

// RecordRelayStart increments relay counters.
func (m *Metrics) RecordRelayStart() {
	m.RelaysTotal.Inc()
	m.RelaysActive.Inc()
}

// RecordRelayEnd decrements the active gauge and observes the duration.
func (m *Metrics) RecordRelayEnd(d time.Duration) {
	m.RelaysActive.Dec()
	m.RelayDuration.Observe(d.Seconds())
}

// RecordKafkaPublish records a publish attempt with latency and optional error.
func (m *Metrics) RecordKafkaPublish(topic string, err error, seconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic).Inc()
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic).Inc()
	}
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(seconds)
}

// RecordToolCall records a model tool invocation.
func (m *Metrics) RecordToolCall(tool, outcome string) {
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
}
