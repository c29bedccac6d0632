package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jeffreydtz/canchaya-slots/internal/metrics"
)

func TestWithMetrics_UsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := WithMetrics(mux)

	for _, path := range []string{"/widgets/abc", "/widgets/def"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	pattern := "GET /widgets/{id}"
	if got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, pattern, "OK")); got != 2 {
		t.Fatalf("pattern-labeled count: %v", got)
	}
	// Raw paths must never become label values.
	if got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/widgets/abc", "OK")); got != 0 {
		t.Fatalf("raw path leaked into labels: %v", got)
	}
}

func TestWithMetrics_UnmatchedRoute(t *testing.T) {
	mux := http.NewServeMux()
	handler := WithMetrics(mux)

	req := httptest.NewRequest(http.MethodGet, "/nope/12345", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "Not Found")); got < 1 {
		t.Fatalf("unmatched requests must share one label: %v", got)
	}
}
