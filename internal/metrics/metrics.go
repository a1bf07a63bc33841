package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the storefront's Prometheus collectors
type Metrics struct {
	registry       *prometheus.Registry
	RequestCounter *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
	StoreMutations *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
}

// New creates the collectors and registers them on a dedicated registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_requests_total",
				Help: "Total number of requests to the storefront API",
			},
			[]string{"method", "route", "status"},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_request_duration_seconds",
				Help:    "Duration of storefront API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		StoreMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_store_mutations_total",
				Help: "Number of state changes per session store",
			},
			[]string{"store"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "storefront_active_sessions",
				Help: "Number of sessions with live stores",
			},
		),
	}

	registry.MustRegister(
		m.RequestCounter,
		m.RequestLatency,
		m.StoreMutations,
		m.ActiveSessions,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
