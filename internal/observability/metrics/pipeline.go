package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records the organize pipeline: per-file extraction
// outcomes, classification latency and finished packages.
type PipelineMetrics struct {
	service string

	extractionTotal        *prometheus.CounterVec
	classificationTotal    *prometheus.CounterVec
	classificationDuration *prometheus.HistogramVec
	packageTotal           *prometheus.CounterVec
	packageFiles           *prometheus.HistogramVec
	packageDuration        *prometheus.HistogramVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	extractionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "extractions_total",
			Help:      "Per-file text extractions by format and failure kind.",
		},
		[]string{"service", "format", "failure"},
	)
	classificationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "classifications_total",
			Help:      "Classification calls by outcome.",
		},
		[]string{"service", "outcome"},
	)
	classificationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "classification_duration_seconds",
			Help:      "Time spent waiting for the folder plan.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 15, 20, 30, 45, 60},
		},
		[]string{"service", "outcome"},
	)
	packageTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "packages_total",
			Help:      "Organize runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	packageFiles := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "package_files",
			Help:      "Files per organize run.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"service"},
	)
	packageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "package_duration_seconds",
			Help:      "End-to-end organize duration by outcome.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60, 90},
		},
		[]string{"service", "outcome"},
	)

	registerer.MustRegister(
		extractionTotal,
		classificationTotal,
		classificationDuration,
		packageTotal,
		packageFiles,
		packageDuration,
	)

	return &PipelineMetrics{
		service:                service,
		extractionTotal:        extractionTotal,
		classificationTotal:    classificationTotal,
		classificationDuration: classificationDuration,
		packageTotal:           packageTotal,
		packageFiles:           packageFiles,
		packageDuration:        packageDuration,
	}
}

func (m *PipelineMetrics) ObserveExtraction(format, failure string) {
	if failure == "" {
		failure = "none"
	}
	m.extractionTotal.WithLabelValues(m.service, formatLabel(format), failure).Inc()
}

func (m *PipelineMetrics) ObserveClassification(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.classificationTotal.WithLabelValues(m.service, outcome).Inc()
	m.classificationDuration.WithLabelValues(m.service, outcome).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObservePackage(outcome string, files int, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.packageTotal.WithLabelValues(m.service, outcome).Inc()
	m.packageDuration.WithLabelValues(m.service, outcome).Observe(duration.Seconds())
	if files > 0 {
		m.packageFiles.WithLabelValues(m.service).Observe(float64(files))
	}
}

// formatLabel maps an extension onto a fixed label set; uploaders choose
// extensions freely.
func formatLabel(ext string) string {
	switch ext {
	case ".pdf", ".xlsx", ".txt", ".csv", ".md", ".png", ".jpg", ".jpeg", ".webp":
		return ext[1:]
	case "":
		return "none"
	default:
		return "other"
	}
}
