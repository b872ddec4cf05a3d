package metrics

import (
	"time"
)

// PrometheusCollector receives batch lifecycle events and feeds the
// package-level Prometheus metrics.
type PrometheusCollector struct{}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{}
}

func (c *PrometheusCollector) ImageStarted(path string) {
	ImagesInFlight.Inc()
}

// ImageFinished records one image. code is empty on success.
func (c *PrometheusCollector) ImageFinished(path, code string, duration time.Duration) {
	ImagesInFlight.Dec()
	status := "success"
	if code != "" {
		status = "error"
	}
	RecordImage(status, code, duration.Seconds())
	recordLatency(duration.Milliseconds())
}

// BatchFinished records a batch; rejected batches report zero succeeded and zero failed.
func (c *PrometheusCollector) BatchFinished(total, succeeded, failed int, duration time.Duration) {
	status := "success"
	switch {
	case succeeded+failed == 0 && total > 0:
		status = "rejected"
	case failed > 0 && succeeded == 0:
		status = "error"
	case failed > 0:
		status = "partial"
	}
	RecordBatch(status, total, duration.Seconds())
}
