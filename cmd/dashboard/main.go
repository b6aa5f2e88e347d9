package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/epwa-traffic-dashboard/internal/aggregate"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/cache"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/cleaner"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/config"
	httphandler "github.com/kjstillabower/epwa-traffic-dashboard/internal/http"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/lifecycle"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/loader"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/observability"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/render"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	logger.Info("config loaded",
		zap.String("data_dir", cfg.DataDir),
		zap.String("airport", cfg.Airport),
		zap.String("month", cfg.Month),
		zap.String("timezone", cfg.Timezone))

	stats, err := buildStats(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("traffic pipeline", zap.Error(err))
	}

	var frameCache cache.Cache
	var memcacheCloser *cache.MemcachedCache
	switch cfg.CacheBackend {
	case "memcached":
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.Airport+"-"+cfg.Month, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		memcacheCloser = mc
		frameCache = mc
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		frameCache = cache.NewInMemoryCache()
		logger.Info("cache backend: in_memory")
	}

	dashboard := render.New(stats, frameCache, dashboardOptions(cfg), logger)

	if cfg.WarmFrames {
		warmer := cache.NewFrameWarmer(dashboard, logger, cfg.WarmConcurrency)
		warmCtx, warmCancel := context.WithTimeout(context.Background(), cfg.WarmTimeout)
		if err := warmer.Warm(warmCtx, dashboard.Days()); err != nil {
			logger.Warn("frame cache warming failed", zap.Error(err))
		}
		warmCancel()
	}

	healthConfig := &httphandler.HealthConfig{StartTime: time.Now()}
	if memcacheCloser != nil {
		healthConfig.CachePing = memcacheCloser.Ping
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	handler := httphandler.NewHandler(dashboard, stats, cfg.ExportName(), healthConfig, logger)
	router := httphandler.NewRouter(handler, httphandler.RouterConfig{
		Limiter:        limiter,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort), zap.Int("days", len(dashboard.Days())))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()
	lifecycle.SetReady(true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if memcacheCloser != nil {
		if err := memcacheCloser.Close(); err != nil {
			logger.Error("memcached close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}

// buildStats runs load, clean and aggregate over the configured month.
func buildStats(ctx context.Context, cfg *config.Config, logger *zap.Logger) (aggregate.Stats, error) {
	df, err := loader.New(cfg.DataDir, loader.Pattern(cfg.Airport, cfg.Month), logger).Load(ctx)
	if err != nil {
		return aggregate.Stats{}, fmt.Errorf("load: %w", err)
	}
	res, err := cleaner.New(cfg.Location, logger).Clean(df)
	if err != nil {
		return aggregate.Stats{}, fmt.Errorf("clean: %w", err)
	}

	start := time.Now()
	records, outside := aggregate.InMonth(res.Records, cfg.MonthStart)
	if outside > 0 {
		observability.RecordsDroppedTotal.Add(float64(outside))
	}
	if len(records) == 0 {
		return aggregate.Stats{}, fmt.Errorf("no records in %s: %w", cfg.Month, cleaner.ErrNoRecords)
	}
	stats := aggregate.Build(records)
	observability.PipelineStageDuration.WithLabelValues("aggregate").Observe(time.Since(start).Seconds())
	observability.TrafficDays.Set(float64(len(stats.Days)))
	logger.Info("traffic aggregated",
		zap.Int("records", len(records)),
		zap.Int("dropped", res.Dropped),
		zap.Int("outside_month", outside),
		zap.Int("days", len(stats.Days)),
		zap.Int("max_hourly_count", stats.MaxCount))
	return stats, nil
}

func dashboardOptions(cfg *config.Config) render.Options {
	return render.Options{
		Airport:            cfg.Airport,
		Month:              cfg.MonthStart,
		FrameDuration:      cfg.FrameDuration,
		TransitionDuration: cfg.TransitionDuration,
		Width:              cfg.ChartWidth,
		Height:             cfg.ChartHeight,
		CacheTTL:           cfg.CacheTTL,
		CacheType:          cfg.CacheBackend,
	}
}
