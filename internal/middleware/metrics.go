package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores application metrics
type Metrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   prometheus.Gauge
	uploads    *prometheus.CounterVec
	modelCalls *prometheus.CounterVec
	modelTime  *prometheus.HistogramVec
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labsight",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "labsight",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "labsight",
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labsight",
			Name:      "uploads_total",
			Help:      "Stored lab report uploads by analysis status.",
		}, []string{"analysis_status"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labsight",
			Name:      "model_calls_total",
			Help:      "Generative model calls by kind and outcome.",
		}, []string{"kind", "outcome"}),
		modelTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "labsight",
			Name:      "model_call_duration_seconds",
			Help:      "Generative model call latency by kind.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 45, 90},
		}, []string{"kind"}),
	}
	reg.MustRegister(m.requests, m.duration, m.inFlight, m.uploads, m.modelCalls, m.modelTime)
	return m
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		route := routePattern(r)
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveUpload implements labreports.UploadObserver.
func (m *Metrics) ObserveUpload(status string) {
	m.uploads.WithLabelValues(status).Inc()
}

// ObserveModelCall implements analysis.Observer.
func (m *Metrics) ObserveModelCall(kind, outcome string, d time.Duration) {
	m.modelCalls.WithLabelValues(kind, outcome).Inc()
	m.modelTime.WithLabelValues(kind).Observe(d.Seconds())
}

// Handler returns metrics in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
