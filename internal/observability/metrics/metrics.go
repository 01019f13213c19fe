package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signflow/internal/config"
)

// Sign attempt outcomes
const (
	OutcomeSigned    = "signed"
	OutcomeRejected  = "rejected"
	OutcomeConflict  = "conflict"
	OutcomeIntegrity = "integrity_violation"
	OutcomeError     = "error"
)

type SigningMetrics struct {
	registry *prometheus.Registry

	signAttempts       *prometheus.CounterVec
	signDuration       *prometheus.HistogramVec
	requestsCreated    prometheus.Counter
	requestsCompleted  prometheus.Counter
	requestsCancelled  prometheus.Counter
	artifactGeneration *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewSigningMetrics(cfg *config.Config) *SigningMetrics {
	return newSigningMetrics(cfg.App.Name)
}

func newSigningMetrics(service string) *SigningMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	signAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "signflow",
			Subsystem:   "signing",
			Name:        "sign_attempts_total",
			Help:        "Signing attempts by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	signDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "signflow",
			Subsystem:   "signing",
			Name:        "sign_duration_seconds",
			Help:        "Signing duration in seconds by outcome.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	requestsCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "signflow",
			Subsystem:   "requests",
			Name:        "created_total",
			Help:        "Signature requests created.",
			ConstLabels: constLabels,
		},
	)
	requestsCompleted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "signflow",
			Subsystem:   "requests",
			Name:        "completed_total",
			Help:        "Signature requests that reached completion.",
			ConstLabels: constLabels,
		},
	)
	requestsCancelled := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "signflow",
			Subsystem:   "requests",
			Name:        "cancelled_total",
			Help:        "Signature requests cancelled.",
			ConstLabels: constLabels,
		},
	)
	artifactGeneration := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "signflow",
			Subsystem:   "artifact",
			Name:        "generation_total",
			Help:        "Signed artifact generation runs by status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "signflow",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests processed.",
			ConstLabels: constLabels,
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "signflow",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(
		signAttempts,
		signDuration,
		requestsCreated,
		requestsCompleted,
		requestsCancelled,
		artifactGeneration,
		httpRequests,
		httpRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &SigningMetrics{
		registry:            registry,
		signAttempts:        signAttempts,
		signDuration:        signDuration,
		requestsCreated:     requestsCreated,
		requestsCompleted:   requestsCompleted,
		requestsCancelled:   requestsCancelled,
		artifactGeneration:  artifactGeneration,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
	}
}

func (m *SigningMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *SigningMetrics) ObserveSign(outcome string, duration time.Duration) {
	m.signAttempts.WithLabelValues(outcome).Inc()
	m.signDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *SigningMetrics) RequestCreated() {
	m.requestsCreated.Inc()
}

func (m *SigningMetrics) RequestCompleted() {
	m.requestsCompleted.Inc()
}

func (m *SigningMetrics) RequestCancelled() {
	m.requestsCancelled.Inc()
}

func (m *SigningMetrics) ArtifactGenerated(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.artifactGeneration.WithLabelValues(status).Inc()
}

func (m *SigningMetrics) ObserveHTTP(method, path string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
