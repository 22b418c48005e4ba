package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "market"

// UploadMetrics records media uploads per kind (image or video).
type UploadMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewUploadMetrics registers the upload metrics on the provided registerer.
func NewUploadMetrics(reg prometheus.Registerer) *UploadMetrics {
	if reg == nil {
		return &UploadMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "media_upload_duration_seconds",
		Help:      "Duration of media uploads to the object store.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"kind"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_upload_success_total",
		Help:      "Media objects stored successfully.",
	}, []string{"kind"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_upload_failure_total",
		Help:      "Media uploads rejected by the object store.",
	}, []string{"kind"})
	reg.MustRegister(duration, success, failure)
	return &UploadMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// Observe records one upload attempt.
func (u *UploadMetrics) Observe(kind string, took time.Duration, err error) {
	if u == nil || u.duration == nil {
		return
	}
	kind = normalizeLabel(kind)
	u.duration.WithLabelValues(kind).Observe(took.Seconds())
	if err != nil {
		u.failure.WithLabelValues(kind).Inc()
		return
	}
	u.success.WithLabelValues(kind).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
