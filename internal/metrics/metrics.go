package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photomark_images_processed_total",
			Help: "Total number of images processed",
		},
		[]string{"status", "code"},
	)

	ImageProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photomark_image_processing_duration_seconds",
			Help:    "Duration of single image processing in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)

	ImagesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photomark_images_in_flight",
			Help: "Number of images currently being processed",
		},
	)

	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photomark_batches_total",
			Help: "Total number of batches by outcome",
		},
		[]string{"status"},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photomark_batch_duration_seconds",
			Help:    "Duration of whole batches in seconds",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photomark_batch_size_images",
			Help:    "Number of images submitted per batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photomark_app_info",
			Help: "Application information",
		},
		[]string{"version", "environment"},
	)
)

func RecordImage(status, code string, durationSeconds float64) {
	ImagesProcessedTotal.WithLabelValues(status, code).Inc()
	ImageProcessingDuration.WithLabelValues(status).Observe(durationSeconds)
}

func RecordBatch(status string, size int, durationSeconds float64) {
	BatchesTotal.WithLabelValues(status).Inc()
	BatchSize.Observe(float64(size))
	BatchDuration.Observe(durationSeconds)
}

func SetAppInfo(version, environment string) {
	AppInfo.WithLabelValues(version, environment).Set(1)
}

// WriteTextfile dumps the default registry in the node-exporter textfile
// format. The file is replaced atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
