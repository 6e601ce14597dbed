package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *HTTPServerMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	handler := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("No files uploaded"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/path/123", nil))

	body := scrape(t, m)
	for _, want := range []string{
		`rts_http_requests_total{method="POST",path="/api/generate",service="api",status="400"} 1`,
		`rts_http_requests_total{method="GET",path="other",service="api",status="400"} 1`,
		`rts_http_response_bytes_sum{path="/api/generate",service="api"} 17`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestPipelineMetricsShareRegistry(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	p := NewPipelineMetrics("api", m.Registry())

	p.ObserveExtraction(".pdf", "")
	p.ObserveExtraction(".PSD", "network")
	p.ObserveClassification("timeout", 45*time.Second)
	p.ObservePackage("success", 3, 2*time.Second)
	m.RecordRejection("api", "rate_limited")

	body := scrape(t, m)
	for _, want := range []string{
		`rts_pipeline_extractions_total{failure="none",format="pdf",service="api"} 1`,
		`rts_pipeline_extractions_total{failure="network",format="other",service="api"} 1`,
		`rts_pipeline_classifications_total{outcome="timeout",service="api"} 1`,
		`rts_pipeline_packages_total{outcome="success",service="api"} 1`,
		`rts_pipeline_package_files_sum{service="api"} 3`,
		`rts_http_rejected_total{reason="rate_limited",service="api"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestFormatLabel(t *testing.T) {
	cases := map[string]string{
		".jpeg": "jpeg",
		".xlsx": "xlsx",
		"":      "none",
		".exe":  "other",
	}
	for in, want := range cases {
		if got := formatLabel(in); got != want {
			t.Fatalf("formatLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
