package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/epwa-traffic-dashboard/internal/cleaner"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/config"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/loader"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/testhelpers"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		DataDir:    dir,
		Airport:    "EPWA",
		Month:      "2025-04",
		Location:   time.UTC,
		MonthStart: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildStats(t *testing.T) {
	cfg := testConfig(testhelpers.WriteTwoDayMonth(t))

	stats, err := buildStats(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("buildStats() error = %v", err)
	}
	if len(stats.Days) != 2 {
		t.Errorf("days = %v, want [1 2]", stats.Days)
	}
	if stats.MaxCount != 2 {
		t.Errorf("MaxCount = %d, want 2", stats.MaxCount)
	}
	if stats.Workday == nil || stats.Workday.Hour != 8 {
		t.Errorf("Workday = %+v, want hour 8", stats.Workday)
	}
}

func TestBuildStats_NoFiles(t *testing.T) {
	_, err := buildStats(context.Background(), testConfig(t.TempDir()), zap.NewNop())
	if !errors.Is(err, loader.ErrNoFiles) {
		t.Errorf("buildStats() error = %v, want ErrNoFiles", err)
	}
}

func TestBuildStats_NoValidRows(t *testing.T) {
	dir := t.TempDir()
	testhelpers.WriteCSV(t, dir, "arrivals_EPWA_2025-04-01.csv", testhelpers.FlightHeader, testhelpers.FlightRows("not a time", ""))

	_, err := buildStats(context.Background(), testConfig(dir), zap.NewNop())
	if !errors.Is(err, cleaner.ErrNoRecords) {
		t.Errorf("buildStats() error = %v, want ErrNoRecords", err)
	}
}

func TestBuildStats_KeepsOnlyConfiguredMonth(t *testing.T) {
	dir := t.TempDir()
	// The departures export for April 30 carries a flight last seen just after midnight UTC on May 1.
	testhelpers.WriteCSV(t, dir, "arrivals_EPWA_2025-04-01.csv", testhelpers.FlightHeader, testhelpers.FlightRows(
		"2025-04-01 08:00:00", "2025-04-01 08:30:00",
	))
	testhelpers.WriteCSV(t, dir, "departures_EPWA_2025-04-30.csv", testhelpers.FlightHeader, testhelpers.FlightRows(
		"2025-04-30 22:00:00", "2025-05-01 08:10:00",
	))

	stats, err := buildStats(context.Background(), testConfig(dir), zap.NewNop())
	if err != nil {
		t.Fatalf("buildStats() error = %v", err)
	}
	if len(stats.Days) != 2 || stats.Days[0] != 1 || stats.Days[1] != 30 {
		t.Fatalf("days = %v, want [1 30]", stats.Days)
	}
	peak, ok := stats.DailyPeak(1)
	if !ok {
		t.Fatal("no peak for day 1")
	}
	if peak.Count != 2 || peak.WeekdayLocal != "Wtorek" {
		t.Errorf("day 1 peak = %+v, want 2 flights on Wtorek", peak)
	}
}

func TestBuildStats_NothingInMonth(t *testing.T) {
	dir := t.TempDir()
	testhelpers.WriteCSV(t, dir, "arrivals_EPWA_2025-04-01.csv", testhelpers.FlightHeader, testhelpers.FlightRows(
		"2025-05-01 08:00:00",
	))

	_, err := buildStats(context.Background(), testConfig(dir), zap.NewNop())
	if !errors.Is(err, cleaner.ErrNoRecords) {
		t.Errorf("buildStats() error = %v, want ErrNoRecords", err)
	}
}

func TestDashboardOptions(t *testing.T) {
	cfg := testConfig("data")
	cfg.FrameDuration = 2 * time.Second
	cfg.TransitionDuration = 250 * time.Millisecond
	cfg.CacheBackend = "memcached"
	cfg.CacheTTL = time.Minute

	opts := dashboardOptions(cfg)
	if opts.Airport != "EPWA" || !opts.Month.Equal(cfg.MonthStart) {
		t.Errorf("opts = %+v", opts)
	}
	if opts.FrameDuration != 2*time.Second || opts.TransitionDuration != 250*time.Millisecond {
		t.Errorf("durations = %v/%v", opts.FrameDuration, opts.TransitionDuration)
	}
	if opts.CacheType != "memcached" || opts.CacheTTL != time.Minute {
		t.Errorf("cache = %s/%v", opts.CacheType, opts.CacheTTL)
	}
}
