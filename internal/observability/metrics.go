package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Frame renders on cache miss dominate p99.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Rate limit denials.
	RateLimitDeniedTotal prometheus.Counter

	// CSV files read at startup.
	InputFilesTotal prometheus.Counter

	// Raw rows read per source label (arrivals/departures).
	InputRowsTotal *prometheus.CounterVec

	// Rows dropped because lastSeen did not parse. Watch for: nonzero after an export format change.
	RecordsDroppedTotal prometheus.Counter

	// Time spent per pipeline stage (load, clean, aggregate).
	PipelineStageDuration *prometheus.HistogramVec

	// Number of distinct days in the dashboard.
	TrafficDays prometheus.Gauge

	// Chart frame renders by outcome.
	FrameRendersTotal *prometheus.CounterVec

	// Frame cache hits per backend. Misses = frameRendersTotal{status="success"}.
	FrameCacheHitsTotal *prometheus.CounterVec

	// Frame cache errors by operation. The frame is still served on error.
	FrameCacheErrorsTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)
	InputFilesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inputFilesTotal",
			Help: "Total number of input CSV files loaded",
		},
	)
	InputRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inputRowsTotal",
			Help: "Total number of raw rows loaded, by source label",
		},
		[]string{"source"},
	)
	RecordsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recordsDroppedTotal",
			Help: "Total number of rows dropped for an unparsable lastSeen timestamp",
		},
	)
	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipelineStageDurationSeconds",
			Help:    "Duration of each startup pipeline stage in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)
	TrafficDays = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trafficDays",
			Help: "Number of distinct days shown on the dashboard",
		},
	)
	FrameRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameRendersTotal",
			Help: "Total number of chart frame renders",
		},
		[]string{"status"},
	)
	FrameCacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameCacheHitsTotal",
			Help: "Total number of rendered frames served from cache",
		},
		[]string{"cacheType"},
	)
	FrameCacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameCacheErrorsTotal",
			Help: "Total number of frame cache errors",
		},
		[]string{"operation"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		RateLimitDeniedTotal,
		InputFilesTotal, InputRowsTotal, RecordsDroppedTotal,
		PipelineStageDuration, TrafficDays,
		FrameRendersTotal, FrameCacheHitsTotal, FrameCacheErrorsTotal,
	)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
