// Package metrics exposes Prometheus collectors for HTTP traffic and check-in activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check-in outcomes used as the "result" label.
const (
	ResultRecorded = "recorded"
	ResultRejected = "rejected"
)

type Metrics struct {
	registry prometheus.Gatherer

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	tokensIssued prometheus.Counter
	checkIns     *prometheus.CounterVec
	jobRuns      *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry, so that several
// instances (for example in tests) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wellpass_qr_tokens_issued_total",
			Help: "QR check-in tokens issued.",
		}),
		checkIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellpass_checkins_total",
			Help: "Check-in attempts by result and reason.",
		}, []string{"result", "reason"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellpass_job_runs_total",
			Help: "Background job executions by job and outcome.",
		}, []string{"job", "outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.tokensIssued,
		m.checkIns,
		m.jobRuns,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Instrument records in-flight requests, totals and latency. The route label is the
// matched chi pattern, so path parameters do not explode the label set.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		code := strconv.Itoa(status)

		m.httpRequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, route, code).Inc()
	})
}

// TokenIssued and the other counters below are no-ops on a nil *Metrics.
func (m *Metrics) TokenIssued() {
	if m == nil {
		return
	}
	m.tokensIssued.Inc()
}

// CheckInRecorded counts a successful redemption.
func (m *Metrics) CheckInRecorded() {
	if m == nil {
		return
	}
	m.checkIns.WithLabelValues(ResultRecorded, "").Inc()
}

// CheckInRejected counts a refused redemption with a short machine reason.
func (m *Metrics) CheckInRejected(reason string) {
	if m == nil {
		return
	}
	m.checkIns.WithLabelValues(ResultRejected, reason).Inc()
}

func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
