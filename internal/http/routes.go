package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/epwa-traffic-dashboard/internal/observability"
)

// RouterConfig carries the middleware settings of NewRouter.
type RouterConfig struct {
	Limiter        *rate.Limiter // nil disables rate limiting
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewRouter wires the dashboard routes. /health and /metrics sit outside the
// rate limit so probes keep working under load.
func NewRouter(h *Handler, cfg RouterConfig) *mux.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := mux.NewRouter()
	router.NotFoundHandler = CorrelationIDMiddleware(logger)(http.HandlerFunc(NotFound))
	router.Use(globalInFlightTracker.Middleware)
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)

	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	app := router.NewRoute().Subrouter()
	app.Use(RateLimitMiddleware(cfg.Limiter))
	app.Use(TimeoutMiddleware(cfg.RequestTimeout))
	app.HandleFunc("/", h.GetDashboard).Methods(http.MethodGet)
	app.HandleFunc("/frames/{day:[0-9]+}.svg", h.GetFrame).Methods(http.MethodGet)
	app.HandleFunc("/api/summary", h.GetSummary).Methods(http.MethodGet)
	app.HandleFunc("/api/days", h.GetDays).Methods(http.MethodGet)
	app.HandleFunc("/export/hourly.csv", h.ExportHourlyCSV).Methods(http.MethodGet)

	return router
}
