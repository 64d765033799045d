package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
// Every Observe method is safe on a nil *Metrics.
type Metrics struct {
	reg *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	steps    *prometheus.CounterVec
	reveals  prometheus.Counter
	loads    *prometheus.CounterVec
	misses   *prometheus.CounterVec
	agent    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_week_steps_total",
			Help: "Week navigation requests; moved=false at a boundary.",
		}, []string{"direction", "moved"}),
		reveals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_reveals_total",
			Help: "Demo reveals that swapped the window to full history.",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_loads_total",
			Help: "Results loads by outcome.",
		}, []string{"result"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_lookup_misses_total",
			Help: "Actions or ad groups whose referenced entity was absent from the snapshot.",
		}, []string{"kind"}),
		agent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_agent_runs_total",
			Help: "Agent trigger requests by outcome.",
		}, []string{"result"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.steps, m.reveals, m.loads, m.misses, m.agent,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) ObserveStep(dir int, moved bool) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(strconv.Itoa(dir), strconv.FormatBool(moved)).Inc()
}

func (m *Metrics) ObserveReveal() {
	if m == nil {
		return
	}
	m.reveals.Inc()
}

func (m *Metrics) ObserveLoad(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.loads.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveMisses(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.misses.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) ObserveAgentRun(result string) {
	if m == nil {
		return
	}
	m.agent.WithLabelValues(result).Inc()
}

// Middleware records count and latency per chi route pattern. Requests that
// match no route share the "unmatched" label.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
