package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry
	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blogsphere",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blogsphere",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "blogsphere",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "path"}),
	}

	m.registry.MustRegister(
		m.inFlight,
		m.requests,
		m.duration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument records request metrics labelled by the route pattern that router
// matches, so ids and unknown paths do not add label values.
func (app *application) instrument(router *httprouter.Router, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		app.metrics.inFlight.Inc()
		defer app.metrics.inFlight.Dec()

		next.ServeHTTP(rec, r)

		path := routePattern(router, r.Method, r.URL.Path)
		app.metrics.requests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		app.metrics.duration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

const unmatchedRoute = "unmatched"

// routePattern rebuilds the registered pattern for path, turning each
// parameter value back into its :name. Paths without a route share one label.
func routePattern(router *httprouter.Router, method, path string) string {
	handle, params, _ := router.Lookup(method, path)
	if handle == nil {
		return unmatchedRoute
	}

	if len(params) == 0 {
		return path
	}

	segments := strings.Split(path, "/")
	next := len(params) - 1

	for i := len(segments) - 1; i >= 0 && next >= 0; i-- {
		if segments[i] == params[next].Value {
			segments[i] = ":" + params[next].Key
			next--
		}
	}

	return strings.Join(segments, "/")
}
