// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "live_caption"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Recognition session metrics
	SessionsStarted   prometheus.Counter
	SessionsEnded     prometheus.Counter
	SessionRestarts   prometheus.Counter
	RecognitionFatal  prometheus.Counter
	RecognitionErrors *prometheus.CounterVec

	// Transcript metrics
	EventsProcessed prometheus.Counter
	EventsNoChange  prometheus.Counter
	IndexAnomalies  prometheus.Counter
	CaptionsEmitted prometheus.Counter
	CaptionsCleared prometheus.Counter
	CaptionLength   prometheus.Histogram

	// Export metrics
	ExportsServed prometheus.Counter
	ExportLines   prometheus.Histogram

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
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of recognition sessions started",
		}),
		SessionsEnded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Total number of recognition sessions ended",
		}),
		SessionRestarts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_restarts_total",
			Help:      "Total number of automatic session restarts after silence",
		}),
		RecognitionFatal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_fatal_total",
			Help:      "Total number of fatal platform-incapability transitions",
		}),
		RecognitionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_errors_total",
			Help:      "Total number of recognition errors by code",
		}, []string{"code"}),

		EventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_processed_total",
			Help:      "Total number of recognition events applied to the ledger",
		}),
		EventsNoChange: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_no_change_total",
			Help:      "Total number of recognition events producing no material change",
		}),
		IndexAnomalies: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_anomalies_total",
			Help:      "Total number of events re-reporting an already-finalized index",
		}),
		CaptionsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captions_emitted_total",
			Help:      "Total number of caption updates emitted to the owner",
		}),
		CaptionsCleared: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captions_cleared_total",
			Help:      "Total number of inactivity caption clears",
		}),
		CaptionLength: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "caption_length_chars",
			Help:      "Length of emitted captions in characters",
			Buckets:   []float64{10, 25, 50, 100, 200, 300, 500},
		}),

		ExportsServed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_served_total",
			Help:      "Total number of transcript exports served",
		}),
		ExportLines: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_lines",
			Help:      "Number of lines per served transcript export",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000},
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordSessionStarted records a recognition session starting.
func (m *Metrics) RecordSessionStarted() {
	m.SessionsStarted.Inc()
}

// RecordSessionEnded records a recognition session ending.
func (m *Metrics) RecordSessionEnded() {
	m.SessionsEnded.Inc()
}

// RecordRestart records an automatic restart after a transient end.
func (m *Metrics) RecordRestart() {
	m.SessionRestarts.Inc()
}

// RecordFatal records the one-way disabled transition.
func (m *Metrics) RecordFatal() {
	m.RecognitionFatal.Inc()
}

// RecordRecognitionError records a recognition error by code.
func (m *Metrics) RecordRecognitionError(code string) {
	m.RecognitionErrors.WithLabelValues(code).Inc()
}

// RecordEventProcessed records one recognition event and whether it
// changed the displayable transcript.
func (m *Metrics) RecordEventProcessed(changed bool) {
	m.EventsProcessed.Inc()
	if !changed {
		m.EventsNoChange.Inc()
	}
}

// RecordIndexAnomaly records an event re-reporting a finalized index.
func (m *Metrics) RecordIndexAnomaly() {
	m.IndexAnomalies.Inc()
}

// RecordCaptionEmitted records a caption update of the given length.
func (m *Metrics) RecordCaptionEmitted(lengthChars int) {
	m.CaptionsEmitted.Inc()
	m.CaptionLength.Observe(float64(lengthChars))
}

// RecordCaptionCleared records an inactivity auto-clear.
func (m *Metrics) RecordCaptionCleared() {
	m.CaptionsCleared.Inc()
}

// RecordExportServed records a transcript export of the given size.
func (m *Metrics) RecordExportServed(lines int) {
	m.ExportsServed.Inc()
	m.ExportLines.Observe(float64(lines))
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
