package render

import (
	"fmt"
	"time"

	"github.com/kjstillabower/epwa-traffic-dashboard/internal/aggregate"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/locale"
)

// Summary is the static text panel under the chart. Workday and Weekend are
// empty when the month has no day of that kind.
type Summary struct {
	Title        string   `json:"title"`
	WeekdayTitle string   `json:"weekdayTitle"`
	Weekdays     []string `json:"weekdays"`
	Workday      string   `json:"workday,omitempty"`
	Weekend      string   `json:"weekend,omitempty"`
}

// BuildSummary formats the average peak hours of stats.
func BuildSummary(stats aggregate.Stats, month time.Time) Summary {
	s := Summary{
		Title:        fmt.Sprintf(locale.SummaryTitle, locale.MonthIn(month)),
		WeekdayTitle: locale.SummaryByDay,
	}
	for _, p := range stats.WeekdayPeaks {
		s.Weekdays = append(s.Weekdays, p.Label+": "+HourLabel(p.Hour))
	}
	if stats.Workday != nil {
		s.Workday = fmt.Sprintf(locale.SummaryWork, stats.Workday.Hour)
	}
	if stats.Weekend != nil {
		s.Weekend = fmt.Sprintf(locale.SummaryWeek, stats.Weekend.Hour)
	}
	return s
}
