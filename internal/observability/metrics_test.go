package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestMetrics_Usable verifies that all Prometheus metrics can be used without
// panic, ensuring label dimensions match usage across the loader, cleaner, render and http packages.
func TestMetrics_Usable(t *testing.T) {
	// Route uses path template to avoid cardinality (/frames/{day}.svg not /frames/12.svg)
	HTTPRequestsTotal.WithLabelValues("GET", "/frames/{day}.svg", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/").Observe(0.01)
	InputFilesTotal.Inc()
	InputRowsTotal.WithLabelValues("arrivals").Add(3)
	RecordsDroppedTotal.Add(0)
	PipelineStageDuration.WithLabelValues("aggregate").Observe(0.001)
	TrafficDays.Set(30)
	FrameRendersTotal.WithLabelValues("success").Inc()
	FrameCacheHitsTotal.WithLabelValues("in_memory").Inc()
	FrameCacheErrorsTotal.WithLabelValues("get").Inc()
}

// TestMetricsHandler_ServesPrometheusFormat verifies that MetricsHandler serves
// Prometheus text exposition format with correct HTTP status and metric output.
func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	InputFilesTotal.Inc()
	handler := MetricsHandler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("MetricsHandler status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "inputFilesTotal") {
		t.Error("MetricsHandler response should contain inputFilesTotal")
	}
}
