package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// ConvertMetrics instruments the conversion pipeline. It satisfies the
// batch use case's observer contract.
type ConvertMetrics struct {
	registry *prometheus.Registry
	service  string

	filesTotal    *prometheus.CounterVec
	fileDuration  *prometheus.HistogramVec
	filesInFlight prometheus.Gauge
	encodeQuality *prometheus.HistogramVec
	batchSize     *prometheus.HistogramVec
}

func NewConvertMetrics(service string) *ConvertMetrics {
	registry := prometheus.NewRegistry()

	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edc",
			Subsystem: "convert",
			Name:      "files_total",
			Help:      "Total converted files by final status.",
		},
		[]string{"service", "status"},
	)
	fileDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edc",
			Subsystem: "convert",
			Name:      "file_duration_seconds",
			Help:      "Per-file conversion duration in seconds by final status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	filesInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "edc",
			Subsystem: "convert",
			Name:      "files_in_flight",
			Help:      "Number of files currently in the pipeline.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	encodeQuality := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edc",
			Subsystem: "convert",
			Name:      "encode_quality",
			Help:      "Accepted encoder quality per lossy conversion, one bucket per search step.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9},
		},
		[]string{"service"},
	)
	batchSize := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edc",
			Subsystem: "convert",
			Name:      "batch_size",
			Help:      "Distribution of files per batch.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)

	registry.MustRegister(filesTotal, fileDuration, filesInFlight, encodeQuality, batchSize)

	return &ConvertMetrics{
		registry:      registry,
		service:       service,
		filesTotal:    filesTotal,
		fileDuration:  fileDuration,
		filesInFlight: filesInFlight,
		encodeQuality: encodeQuality,
		batchSize:     batchSize,
	}
}

func (m *ConvertMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ConvertMetrics) StartFile() {
	m.filesInFlight.Inc()
}

func (m *ConvertMetrics) FinishFile(status domain.Phase, duration time.Duration) {
	m.filesInFlight.Dec()

	label := string(status)
	if label == "" {
		label = "unknown"
	}
	m.filesTotal.WithLabelValues(m.service, label).Inc()
	m.fileDuration.WithLabelValues(m.service, label).Observe(duration.Seconds())
}

func (m *ConvertMetrics) ObserveQuality(quality float64) {
	m.encodeQuality.WithLabelValues(m.service).Observe(quality)
}

func (m *ConvertMetrics) ObserveBatch(size int) {
	m.batchSize.WithLabelValues(m.service).Observe(float64(size))
}
