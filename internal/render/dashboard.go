// Package render draws the per-day chart frames and the dashboard page.
package render

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/epwa-traffic-dashboard/internal/aggregate"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/cache"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/locale"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/models"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/observability"
)

// ErrUnknownDay is returned for a day that has no frame.
var ErrUnknownDay = errors.New("unknown day")

//go:embed templates/dashboard.html
var pageTemplate string

var page = template.Must(template.New("dashboard").Parse(pageTemplate))

// Options control how the dashboard is drawn.
type Options struct {
	Airport            string
	Month              time.Time
	FrameDuration      time.Duration
	TransitionDuration time.Duration
	Width              int
	Height             int
	CacheTTL           time.Duration
	CacheType          string
}

func (o Options) withDefaults() Options {
	if o.FrameDuration <= 0 {
		o.FrameDuration = time.Second
	}
	if o.TransitionDuration < 0 {
		o.TransitionDuration = 0
	}
	if o.Width <= 0 {
		o.Width = 1200
	}
	if o.Height <= 0 {
		o.Height = 520
	}
	if o.CacheType == "" {
		o.CacheType = "in_memory"
	}
	return o
}

// Frame is one day of the animation.
type Frame struct {
	Day         int                   `json:"day"`
	Weekday     string                `json:"dayOfWeekLocal"`
	Weekend     bool                  `json:"isWeekend"`
	DayCaption  string                `json:"dayCaption"`
	PeakCaption string                `json:"peakCaption"`
	Peak        models.DailyPeak      `json:"peak"`
	Buckets     []models.HourlyBucket `json:"buckets"`
}

// URL is the path of the frame image.
func (f Frame) URL() string {
	return "/frames/" + strconv.Itoa(f.Day) + ".svg"
}

// Dashboard holds everything the page needs. It is immutable after New apart
// from the frame cache.
type Dashboard struct {
	opts    Options
	frames  []Frame
	index   map[int]int
	summary Summary
	yMax    float64
	cache   cache.Cache
	logger  *zap.Logger
}

// New builds the frames and summary for stats. c may be nil to disable caching.
func New(stats aggregate.Stats, c cache.Cache, opts Options, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dashboard{
		opts:    opts.withDefaults(),
		index:   make(map[int]int, len(stats.Days)),
		summary: BuildSummary(stats, opts.Month),
		yMax:    float64(stats.MaxCount + yHeadroom),
		cache:   c,
		logger:  logger,
	}
	for _, day := range stats.Days {
		buckets := stats.DayBuckets(day)
		peak, ok := stats.DailyPeak(day)
		if !ok || len(buckets) == 0 {
			continue
		}
		d.index[day] = len(d.frames)
		d.frames = append(d.frames, Frame{
			Day:         day,
			Weekday:     peak.WeekdayLocal,
			Weekend:     peak.Weekend,
			DayCaption:  fmt.Sprintf(locale.DayCaption, day, peak.WeekdayLocal),
			PeakCaption: fmt.Sprintf(locale.PeakCaption, peak.Hour, peak.Count),
			Peak:        peak,
			Buckets:     buckets,
		})
	}
	return d
}

// Frames returns the frames in day order.
func (d *Dashboard) Frames() []Frame { return d.frames }

// Frame returns the frame of day.
func (d *Dashboard) Frame(day int) (Frame, bool) {
	i, ok := d.index[day]
	if !ok {
		return Frame{}, false
	}
	return d.frames[i], true
}

// Days returns the days that have a frame.
func (d *Dashboard) Days() []int {
	out := make([]int, len(d.frames))
	for i, f := range d.frames {
		out[i] = f.Day
	}
	return out
}

// Summary returns the summary panel.
func (d *Dashboard) Summary() Summary { return d.summary }

// YMax is the shared upper bound of the y axis.
func (d *Dashboard) YMax() float64 { return d.yMax }

// FrameSVG returns the rendered chart of day, from cache when possible. Cache
// errors are counted and otherwise ignored.
func (d *Dashboard) FrameSVG(ctx context.Context, day int) ([]byte, error) {
	frame, ok := d.Frame(day)
	if !ok {
		return nil, fmt.Errorf("day %d: %w", day, ErrUnknownDay)
	}
	key := "frame:" + strconv.Itoa(day)
	if d.cache != nil {
		data, hit, err := d.cache.Get(ctx, key)
		switch {
		case err != nil:
			observability.FrameCacheErrorsTotal.WithLabelValues("get").Inc()
			d.logger.Debug("frame cache get failed", zap.Int("day", day), zap.Error(err))
		case hit:
			observability.FrameCacheHitsTotal.WithLabelValues(d.opts.CacheType).Inc()
			return data, nil
		}
	}

	var buf bytes.Buffer
	if err := renderFrame(&buf, frame.Buckets, d.yMax, d.opts.Width, d.opts.Height); err != nil {
		observability.FrameRendersTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("day %d: %w", day, err)
	}
	observability.FrameRendersTotal.WithLabelValues("success").Inc()
	data := buf.Bytes()

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, data, d.opts.CacheTTL); err != nil {
			observability.FrameCacheErrorsTotal.WithLabelValues("set").Inc()
			d.logger.Warn("frame cache set failed", zap.Int("day", day), zap.Error(err))
		}
	}
	return data, nil
}

type pageData struct {
	Title        string
	Subtitle     string
	HourAxis     string
	PlayLabel    string
	PauseLabel   string
	Frames       []Frame
	LastIndex    int
	Summary      Summary
	FrameMs      int64
	TransitionMs int64
	Width        int
	Height       int
}

// WritePage renders the single dashboard page.
func (d *Dashboard) WritePage(w io.Writer) error {
	data := pageData{
		Title:        fmt.Sprintf(locale.ChartTitle, d.opts.Airport, locale.Month(d.opts.Month)),
		Subtitle:     locale.ChartSubtitle,
		HourAxis:     locale.HourAxis,
		PlayLabel:    locale.PlayLabel,
		PauseLabel:   locale.PauseLabel,
		Frames:       d.frames,
		LastIndex:    len(d.frames) - 1,
		Summary:      d.summary,
		FrameMs:      d.opts.FrameDuration.Milliseconds(),
		TransitionMs: d.opts.TransitionDuration.Milliseconds(),
		Width:        d.opts.Width,
		Height:       d.opts.Height,
	}
	return page.Execute(w, data)
}
