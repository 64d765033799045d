package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCounters(t *testing.T) {
	m := NewMetrics()
	m.ObserveStep(-1, true)
	m.ObserveStep(-1, true)
	m.ObserveStep(1, false)
	m.ObserveReveal()
	m.ObserveLoad(nil)
	m.ObserveLoad(errors.New("boom"))
	m.ObserveMisses("audience", 3)
	m.ObserveMisses("audience", 0)

	if got := testutil.ToFloat64(m.steps.WithLabelValues("-1", "true")); got != 2 {
		t.Fatalf("steps backward: got %v", got)
	}
	if got := testutil.ToFloat64(m.steps.WithLabelValues("1", "false")); got != 1 {
		t.Fatalf("steps forward blocked: got %v", got)
	}
	if got := testutil.ToFloat64(m.reveals); got != 1 {
		t.Fatalf("reveals: got %v", got)
	}
	if got := testutil.ToFloat64(m.loads.WithLabelValues("error")); got != 1 {
		t.Fatalf("load errors: got %v", got)
	}
	if got := testutil.ToFloat64(m.misses.WithLabelValues("audience")); got != 3 {
		t.Fatalf("misses: got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveStep(1, true)
	m.ObserveReveal()
	m.ObserveLoad(nil)
	m.ObserveMisses("bid", 1)
	m.ObserveAgentRun("ok")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected passthrough, got %d", rec.Code)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/campaigns/{campaignID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	srv := httptest.NewServer(r)
	defer srv.Close()

	for _, id := range []string{"1", "2"} {
		resp, err := http.Get(srv.URL + "/campaigns/" + id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/campaigns/{campaignID}", "404")); got != 2 {
		t.Fatalf("expected 2 requests on the pattern label, got %v", got)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "dashboard_http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}

func TestMiddlewareGroupsUnmatchedRoutes(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {})

	srv := httptest.NewServer(r)
	defer srv.Close()

	for _, p := range []string{"/nope-a", "/nope-b/c", "/wp-login.php"} {
		resp, err := http.Get(srv.URL + p)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unmatched", "404")); got != 3 {
		t.Fatalf("expected 3 unmatched requests, got %v", got)
	}
	if n := testutil.CollectAndCount(m.requests); n != 1 {
		t.Fatalf("unknown paths must share one series, got %d", n)
	}
}

func TestSetupTracingDisabled(t *testing.T) {
	for _, tc := range []struct {
		name     string
		endpoint string
		enabled  bool
	}{
		{"disabled", "http://localhost:4318", false},
		{"no endpoint", "", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			shutdown, err := SetupTracing(context.Background(), "test", tc.endpoint, tc.enabled)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("noop shutdown: %v", err)
			}
		})
	}
}
