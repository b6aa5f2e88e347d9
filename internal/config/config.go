package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MonthLayout is the format of data.month.
const MonthLayout = "2006-01"

// Config holds dashboard configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	RequestTimeout time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	DataDir  string
	Airport  string
	Month    string
	Timezone string
	// Location and MonthStart are derived from Timezone and Month during validation.
	Location   *time.Location
	MonthStart time.Time

	FrameDuration      time.Duration
	TransitionDuration time.Duration
	ChartWidth         int
	ChartHeight        int

	CacheBackend string // "in_memory" or "memcached"
	CacheTTL     time.Duration

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	WarmFrames      bool
	WarmConcurrency int
	WarmTimeout     time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`

	Data struct {
		Dir      string `yaml:"dir"`
		Airport  string `yaml:"airport"`
		Month    string `yaml:"month"`
		Timezone string `yaml:"timezone"`
	} `yaml:"data"`

	Chart struct {
		FrameDuration      string `yaml:"frame_duration"`
		TransitionDuration string `yaml:"transition_duration"`
		Width              int    `yaml:"width"`
		Height             int    `yaml:"height"`
	} `yaml:"chart"`

	Cache struct {
		Backend   string `yaml:"backend"`
		TTL       string `yaml:"ttl"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
		Warm struct {
			Enabled     *bool  `yaml:"enabled"`
			Concurrency int    `yaml:"concurrency"`
			Timeout     string `yaml:"timeout"`
		} `yaml:"warm"`
	} `yaml:"cache"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) relative to
// the working directory, applies env overrides and validates. Call from project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = envOr("SERVER_PORT", fc.Server.Port)
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8050"
	}

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 10*time.Second)
	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 50
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 100
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 15*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	cfg.DataDir = envOr("DATA_DIR", fc.Data.Dir)
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	cfg.Airport = strings.ToUpper(strings.TrimSpace(fc.Data.Airport))
	if cfg.Airport == "" {
		cfg.Airport = "EPWA"
	}
	cfg.Month = strings.TrimSpace(fc.Data.Month)
	if cfg.Month == "" {
		cfg.Month = "2025-04"
	}
	cfg.Timezone = strings.TrimSpace(fc.Data.Timezone)
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}

	cfg.FrameDuration = parseDuration(fc.Chart.FrameDuration, time.Second)
	cfg.TransitionDuration = parseDurationOrZero(fc.Chart.TransitionDuration, 500*time.Millisecond)
	if cfg.TransitionDuration < 0 {
		cfg.TransitionDuration = 0
	}
	cfg.ChartWidth = fc.Chart.Width
	cfg.ChartHeight = fc.Chart.Height

	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "in_memory"
	}
	cfg.CacheTTL = parseDurationOrZero(fc.Cache.TTL, time.Hour)
	cfg.MemcachedAddrs = envOr("MEMCACHED_ADDRS", fc.Cache.Memcached.Addrs)
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.WarmFrames = true
	if fc.Cache.Warm.Enabled != nil {
		cfg.WarmFrames = *fc.Cache.Warm.Enabled
	}
	cfg.WarmConcurrency = fc.Cache.Warm.Concurrency
	if cfg.WarmConcurrency <= 0 {
		cfg.WarmConcurrency = 4
	}
	cfg.WarmTimeout = parseDuration(fc.Cache.Warm.Timeout, 30*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExportName is the download name of the hourly CSV, e.g. EPWA_2025-04_hourly.csv.
func (c *Config) ExportName() string {
	return c.Airport + "_" + c.Month + "_hourly.csv"
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

func validate(cfg *Config) error {
	port, err := strconv.Atoi(cfg.ServerPort)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("server.port must be a TCP port, got %q", cfg.ServerPort)
	}
	if cfg.Airport == "" {
		return fmt.Errorf("data.airport is required")
	}
	monthStart, err := time.Parse(MonthLayout, cfg.Month)
	if err != nil {
		return fmt.Errorf("data.month must be YYYY-MM, got %q", cfg.Month)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("data.timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc
	cfg.MonthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, loc)
	switch cfg.CacheBackend {
	case "in_memory", "memcached":
	default:
		return fmt.Errorf("cache.backend must be in_memory or memcached, got %q", cfg.CacheBackend)
	}
	return nil
}
