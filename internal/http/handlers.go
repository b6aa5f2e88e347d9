package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/epwa-traffic-dashboard/internal/aggregate"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/lifecycle"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/models"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/observability"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/render"
)

// HealthConfig holds what the health handler reports on.
type HealthConfig struct {
	StartTime time.Time
	// CachePing, when set, is called to check cache reachability. Used when backend is memcached.
	CachePing func() error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	dashboard        *render.Dashboard
	stats            aggregate.Stats
	exportName       string
	healthConfig     *HealthConfig
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler. exportName is the file name offered by
// the CSV download.
func NewHandler(
	dashboard *render.Dashboard,
	stats aggregate.Stats,
	exportName string,
	healthConfig *HealthConfig,
	logger *zap.Logger,
) *Handler {
	if exportName == "" {
		exportName = "hourly.csv"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		dashboard:    dashboard,
		stats:        stats,
		exportName:   exportName,
		healthConfig: healthConfig,
		logger:       logger,
	}
}

// GetDashboard handles GET /.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.dashboard.WritePage(&buf); err != nil {
		h.internalError(w, r, "render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// GetFrame handles GET /frames/{day}.svg.
func (h *Handler) GetFrame(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil {
		writeError(w, r, http.StatusNotFound, "UNKNOWN_DAY", "no frame for day")
		return
	}
	data, err := h.dashboard.FrameSVG(r.Context(), day)
	if errors.Is(err, render.ErrUnknownDay) {
		writeError(w, r, http.StatusNotFound, "UNKNOWN_DAY", "no frame for day "+strconv.Itoa(day))
		return
	}
	if err != nil {
		h.internalError(w, r, "render frame", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type summaryResponse struct {
	Text     render.Summary       `json:"text"`
	Weekdays []models.AveragePeak `json:"weekdays"`
	Workday  *models.AveragePeak  `json:"workday"`
	Weekend  *models.AveragePeak  `json:"weekend"`
}

// GetSummary handles GET /api/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	weekdays := h.stats.WeekdayPeaks
	if weekdays == nil {
		weekdays = []models.AveragePeak{}
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Text:     h.dashboard.Summary(),
		Weekdays: weekdays,
		Workday:  h.stats.Workday,
		Weekend:  h.stats.Weekend,
	})
}

type daysResponse struct {
	YMax float64        `json:"yMax"`
	Days []render.Frame `json:"days"`
}

// GetDays handles GET /api/days.
func (h *Handler) GetDays(w http.ResponseWriter, r *http.Request) {
	frames := h.dashboard.Frames()
	if frames == nil {
		frames = []render.Frame{}
	}
	writeJSON(w, http.StatusOK, daysResponse{YMax: h.dashboard.YMax(), Days: frames})
}

// ExportHourlyCSV handles GET /export/hourly.csv.
func (h *Handler) ExportHourlyCSV(w http.ResponseWriter, r *http.Request) {
	df := h.stats.Frame()
	if df.Err != nil {
		h.internalError(w, r, "build export frame", df.Err)
		return
	}
	var buf bytes.Buffer
	if err := df.WriteCSV(&buf); err != nil {
		h.internalError(w, r, "write export", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.exportName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := map[string]string{"data": "healthy"}
	if len(h.dashboard.Frames()) == 0 {
		checks["data"] = "empty"
	}
	if h.healthConfig != nil && h.healthConfig.CachePing != nil {
		if h.healthConfig.CachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
		}
	}
	resp := map[string]interface{}{
		"status":    result.status,
		"service":   observability.ServiceName,
		"version":   "dev",
		"checks":    checks,
		"days":      len(h.dashboard.Frames()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.healthConfig != nil && !h.healthConfig.StartTime.IsZero() {
		resp["uptimeSeconds"] = int64(time.Since(h.healthConfig.StartTime).Seconds())
	}
	writeJSON(w, result.statusCode, resp)
}

// computeHealthStatus evaluates, in order: shutting-down > starting > healthy.
// An unreachable cache is reported in checks but does not fail health; frames
// still render without it.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if !lifecycle.IsReady() {
		return healthResult{"starting", http.StatusServiceUnavailable, "not_ready"}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// NotFound writes the JSON 404 used for unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger := requestLogger(r)
	if logger == nil {
		logger = h.logger
	}
	logger.Error(msg, zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": correlationID(r),
		},
	})
}
