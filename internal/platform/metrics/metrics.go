package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry plus the service's collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Solves          *prometheus.CounterVec
	SolveDuration   *prometheus.HistogramVec
	MatrixPopulates *prometheus.CounterVec
	ExcludedPoints  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_server_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_server_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	m.Solves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tour_solves_total",
		Help: "Tour solves by point kind, strategy and resulting status",
	}, []string{"kind", "strategy", "status"})

	m.SolveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tour_solve_duration_seconds",
		Help:    "Wall time of a tour solve including matrix population",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 60},
	}, []string{"kind", "strategy"})

	m.MatrixPopulates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_matrix_populates_total",
		Help: "Travel matrix populate attempts by kind and outcome",
	}, []string{"kind", "outcome"})

	m.ExcludedPoints = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tour_excluded_points_total",
		Help: "Flexible points left out of feasible tours",
	})

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.Solves,
		m.SolveDuration,
		m.MatrixPopulates,
		m.ExcludedPoints,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one finished request. A nil receiver is a no-op.
func (m *Metrics) ObserveHTTP(method, path string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, statusClass(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(dur.Seconds())
}

// ObserveSolve records a finished solve. A nil receiver is a no-op.
func (m *Metrics) ObserveSolve(kind, strategy, status string, excluded int, dur time.Duration) {
	if m == nil {
		return
	}
	m.Solves.WithLabelValues(kind, strategy, status).Inc()
	m.SolveDuration.WithLabelValues(kind, strategy).Observe(dur.Seconds())
	m.ExcludedPoints.Add(float64(excluded))
}

// ObservePopulate records a matrix populate outcome. A nil receiver is a no-op.
func (m *Metrics) ObservePopulate(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.MatrixPopulates.WithLabelValues(kind, outcome).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
