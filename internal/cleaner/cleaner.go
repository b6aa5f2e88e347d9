// Package cleaner parses the lastSeen timestamps of a loaded traffic table and
// derives the calendar fields the aggregator groups by.
package cleaner

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"

	"github.com/kjstillabower/epwa-traffic-dashboard/internal/locale"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/models"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/observability"
)

const (
	TimestampColumn = "lastSeen"
	SourceColumn    = "source"

	HourColumn         = "hour"
	DayColumn          = "day"
	WeekdayColumn      = "day_of_week"
	WeekdayLocalColumn = "day_of_week_pl"
	WeekendColumn      = "is_weekend"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrNoRecords     = errors.New("no records with a valid timestamp")
)

// layouts are tried in order. Layouts without a zone are interpreted in the
// cleaner's location.
var layouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02 15:04:05.999999999Z07:00", true},
	{"2006-01-02 15:04:05Z07:00", true},
	{"2006-01-02 15:04:05.999999999", false},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02 15:04", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02", false},
	{"2006/01/02 15:04:05", false},
}

// Cleaner turns raw rows into records.
type Cleaner struct {
	loc    *time.Location
	logger *zap.Logger
}

// Result is the cleaned table plus the same rows as typed records.
type Result struct {
	Frame   dataframe.DataFrame
	Records []models.Record
	Dropped int
}

// New returns a Cleaner placing naive timestamps in loc (UTC when nil).
func New(loc *time.Location, logger *zap.Logger) *Cleaner {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cleaner{loc: loc, logger: logger}
}

// ParseTimestamp parses a lastSeen value. Unix epoch seconds are accepted as
// well as the date-time layouts above.
func (c *Cleaner) ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "nat") {
		return time.Time{}, false
	}
	if t, ok := c.parseEpoch(s); ok {
		return t, true
	}
	for _, l := range layouts {
		var (
			t   time.Time
			err error
		)
		if l.zoned {
			t, err = time.Parse(l.layout, s)
		} else {
			t, err = time.ParseInLocation(l.layout, s, c.loc)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (c *Cleaner) parseEpoch(s string) (time.Time, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).In(c.loc), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).In(c.loc), true
}

// Clean drops rows whose lastSeen does not parse and adds the derived columns.
// Dropped rows are only counted, never logged individually.
func (c *Cleaner) Clean(df dataframe.DataFrame) (Result, error) {
	start := time.Now()
	if df.Err != nil {
		return Result{}, df.Err
	}
	if !hasColumn(df, TimestampColumn) {
		return Result{}, fmt.Errorf("%s: %w", TimestampColumn, ErrMissingColumn)
	}

	raw := df.Col(TimestampColumn).Records()
	var sources []string
	if hasColumn(df, SourceColumn) {
		sources = df.Col(SourceColumn).Records()
	}

	keep := make([]int, 0, len(raw))
	records := make([]models.Record, 0, len(raw))
	for i, value := range raw {
		ts, ok := c.ParseTimestamp(value)
		if !ok {
			continue
		}
		rec := NewRecord(ts)
		if sources != nil {
			rec.Source = sources[i]
		}
		keep = append(keep, i)
		records = append(records, rec)
	}

	dropped := len(raw) - len(records)
	observability.RecordsDroppedTotal.Add(float64(dropped))
	if len(records) == 0 {
		return Result{Dropped: dropped}, ErrNoRecords
	}

	frame := df.Subset(keep)
	frame = withDerivedColumns(frame, records)
	if frame.Err != nil {
		return Result{}, fmt.Errorf("derive columns: %w", frame.Err)
	}

	observability.PipelineStageDuration.WithLabelValues("clean").Observe(time.Since(start).Seconds())
	c.logger.Info("records cleaned",
		zap.Int("records", len(records)),
		zap.Duration("duration", time.Since(start)))
	return Result{Frame: frame, Records: records, Dropped: dropped}, nil
}

// NewRecord derives the calendar fields of a sighting at ts.
func NewRecord(ts time.Time) models.Record {
	wd := ts.Weekday()
	local, _ := locale.WeekdayName(wd.String())
	return models.Record{
		LastSeen:     ts,
		Hour:         ts.Hour(),
		Day:          ts.Day(),
		Weekday:      wd,
		WeekdayName:  wd.String(),
		WeekdayLocal: local,
		Weekend:      locale.IsWeekend(wd),
	}
}

func withDerivedColumns(df dataframe.DataFrame, records []models.Record) dataframe.DataFrame {
	n := len(records)
	hours := make([]int, n)
	days := make([]int, n)
	names := make([]string, n)
	locals := make([]string, n)
	weekend := make([]bool, n)
	for i, r := range records {
		hours[i] = r.Hour
		days[i] = r.Day
		names[i] = r.WeekdayName
		locals[i] = r.WeekdayLocal
		weekend[i] = r.Weekend
	}
	return df.
		Mutate(series.New(hours, series.Int, HourColumn)).
		Mutate(series.New(days, series.Int, DayColumn)).
		Mutate(series.New(names, series.String, WeekdayColumn)).
		Mutate(series.New(locals, series.String, WeekdayLocalColumn)).
		Mutate(series.New(weekend, series.Bool, WeekendColumn))
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
