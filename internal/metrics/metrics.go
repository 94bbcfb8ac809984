package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	submissionsTotal   *prometheus.CounterVec
	processTotal       *prometheus.CounterVec
	processDuration    prometheus.Histogram
	uploadBytes        prometheus.Histogram
	activeFormSessions prometheus.GaugeFunc
}

// New registers the service metrics. activeSessions is sampled on scrape.
func New(activeSessions func() float64) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "claimdesk",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "claimdesk",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		requestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "claimdesk",
				Subsystem: "http",
				Name:      "in_flight_requests",
				Help:      "Number of in-flight HTTP requests.",
			},
		),
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "claimdesk",
				Subsystem: "form",
				Name:      "submissions_total",
				Help:      "Form submissions by outcome.",
			},
			[]string{"outcome"},
		),
		processTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "claimdesk",
				Subsystem: "processor",
				Name:      "requests_total",
				Help:      "Calls to the document processing service by outcome.",
			},
			[]string{"outcome"},
		),
		processDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "claimdesk",
				Subsystem: "processor",
				Name:      "request_duration_seconds",
				Help:      "Duration of calls to the document processing service.",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		uploadBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "claimdesk",
				Subsystem: "form",
				Name:      "upload_bytes",
				Help:      "Size of selected documents.",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
	}
	if activeSessions != nil {
		m.activeFormSessions = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "claimdesk",
				Subsystem: "form",
				Name:      "active_sessions",
				Help:      "Form sessions currently held in memory.",
			},
			activeSessions,
		)
		registry.MustRegister(m.activeFormSessions)
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.submissionsTotal,
		m.processTotal,
		m.processDuration,
		m.uploadBytes,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveProcess implements processor.Observer.
func (m *Metrics) ObserveProcess(duration time.Duration, outcome string) {
	m.processTotal.WithLabelValues(outcome).Inc()
	m.processDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordSubmission(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordUpload(size int) {
	m.uploadBytes.Observe(float64(size))
}
