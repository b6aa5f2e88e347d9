package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

func TestRouter_ServesDashboardRoutes(t *testing.T) {
	handler := newTestHandler(t, zap.NewNop(), nil)
	router := NewRouter(handler, RouterConfig{Logger: zap.NewNop()})

	tests := []struct {
		path        string
		status      int
		contentType string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/frames/1.svg", http.StatusOK, "image/svg+xml"},
		{"/frames/9.svg", http.StatusNotFound, "application/json"},
		{"/frames/x.svg", http.StatusNotFound, "application/json"},
		{"/api/summary", http.StatusOK, "application/json"},
		{"/api/days", http.StatusOK, "application/json"},
		{"/export/hourly.csv", http.StatusOK, "text/csv"},
		{"/metrics", http.StatusOK, "text/plain"},
		{"/does-not-exist", http.StatusNotFound, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want prefix %q", ct, tt.contentType)
			}
			if w.Header().Get("X-Correlation-ID") == "" {
				t.Error("X-Correlation-ID header missing")
			}
		})
	}
}

func TestMiddleware_CorrelationIDPropagated(t *testing.T) {
	handler := newTestHandler(t, zap.NewNop(), nil)
	router := NewRouter(handler, RouterConfig{})

	req := httptest.NewRequest("GET", "/frames/99.svg", nil)
	req.Header.Set("X-Correlation-ID", "client-provided-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "client-provided-id" {
		t.Errorf("X-Correlation-ID = %q, want client-provided-id", got)
	}
	var resp errorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.RequestID != "client-provided-id" {
		t.Errorf("error.requestId = %q, want client-provided-id", resp.Error.RequestID)
	}
}

func TestMiddleware_RequestLoggerCarriesCorrelationID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		requestLogger(r).Info("ping")
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("ping").All()
	if len(entries) != 1 {
		t.Fatalf("want 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["correlation_id"]; got != "abc-123" {
		t.Errorf("correlation_id = %v, want abc-123", got)
	}
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	var hasDeadline bool
	router := mux.NewRouter()
	router.Use(TimeoutMiddleware(50 * time.Millisecond))
	router.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
		<-r.Context().Done()
		w.WriteHeader(http.StatusGatewayTimeout)
	})

	req := httptest.NewRequest("GET", "/slow", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if !hasDeadline {
		t.Error("request context has no deadline")
	}
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", w.Code)
	}
}

func TestTimeoutMiddleware_ZeroDisables(t *testing.T) {
	var hasDeadline bool
	router := mux.NewRouter()
	router.Use(TimeoutMiddleware(0))
	router.HandleFunc("/fast", func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/fast", nil))
	if hasDeadline {
		t.Error("zero timeout should not set a deadline")
	}
}

func TestRateLimitMiddleware_Returns429WhenExceeded(t *testing.T) {
	handler := newTestHandler(t, zap.NewNop(), nil)
	router := NewRouter(handler, RouterConfig{Limiter: rate.NewLimiter(1, 2)})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/summary", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if i < 2 {
			if w.Code != http.StatusOK {
				t.Errorf("request %d: status = %d, want 200", i, w.Code)
			}
			continue
		}
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("request %d: status = %d, want 429", i, w.Code)
		}
		var errResp errorEnvelope
		if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
			t.Fatalf("decode 429 response: %v", err)
		}
		if errResp.Error.Code != "RATE_LIMITED" {
			t.Errorf("error.code = %q, want RATE_LIMITED", errResp.Error.Code)
		}
	}
}

func TestRateLimitMiddleware_HealthAndMetricsExempt(t *testing.T) {
	handler := newTestHandler(t, zap.NewNop(), nil)
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	router := NewRouter(handler, RouterConfig{Limiter: limiter})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	for _, path := range []string{"/health", "/metrics", "/health"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code == http.StatusTooManyRequests {
			t.Errorf("%s was rate limited", path)
		}
	}
}

func TestRateLimitMiddleware_NilLimiterPassesThrough(t *testing.T) {
	router := mux.NewRouter()
	router.Use(RateLimitMiddleware(nil))
	router.HandleFunc("/x", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 (nil limiter should allow)", i, w.Code)
		}
	}
}

func TestGetRoute(t *testing.T) {
	var got string
	router := mux.NewRouter()
	router.HandleFunc("/frames/{day:[0-9]+}.svg", func(w http.ResponseWriter, r *http.Request) {
		got = getRoute(r)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/frames/17.svg", nil))
	if got != "/frames/{day:[0-9]+}.svg" {
		t.Errorf("getRoute = %q, want path template", got)
	}

	if route := getRoute(httptest.NewRequest("GET", "/frames/17.svg", nil)); route != "other" {
		t.Errorf("getRoute outside router = %q, want other", route)
	}
}

func TestStatusCodeString(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 404: "4xx", 429: "4xx", 503: "5xx"}
	for code, want := range tests {
		if got := statusCodeString(code); got != want {
			t.Errorf("statusCodeString(%d) = %q, want %q", code, got, want)
		}
	}
}
