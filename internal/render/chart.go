package render

import (
	"fmt"
	"io"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/kjstillabower/epwa-traffic-dashboard/internal/aggregate"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/locale"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/models"
)

// Bar colours, one per weekend flag.
var (
	WorkdayColor = drawing.ColorFromHex("1F77B4")
	WeekendColor = drawing.ColorFromHex("FF7F0E")
)

// yHeadroom is added to the month's highest count so every frame shares one y range.
const yHeadroom = 10

// HourLabel formats an hour bucket the way the x axis shows it ("8:00").
func HourLabel(hour int) string {
	return strconv.Itoa(hour) + ":00"
}

// barColor picks the fill for a bucket.
func barColor(weekend bool) drawing.Color {
	if weekend {
		return WeekendColor
	}
	return WorkdayColor
}

// renderFrame writes one day's 24-bar chart as SVG. yMax fixes the y range so
// frames line up during playback; buckets must hold all hours of the day.
func renderFrame(w io.Writer, buckets []models.HourlyBucket, yMax float64, width, height int) error {
	if len(buckets) != aggregate.HoursPerDay {
		return fmt.Errorf("frame needs %d hourly buckets, got %d", aggregate.HoursPerDay, len(buckets))
	}
	bars := make([]chart.Value, 0, len(buckets))
	for _, b := range buckets {
		color := barColor(b.Weekend)
		bars = append(bars, chart.Value{
			Label: HourLabel(b.Hour),
			Value: float64(b.Count),
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
				StrokeWidth: 1,
			},
		})
	}

	bc := chart.BarChart{
		Width:      width,
		Height:     height,
		BarWidth:   barWidth(width),
		BarSpacing: barSpacing(width),
		Background: chart.Style{
			Padding:   chart.Box{Top: 20, Left: 10, Right: 20, Bottom: 10},
			FillColor: drawing.ColorWhite,
		},
		Canvas: chart.Style{FillColor: drawing.ColorWhite},
		XAxis: chart.Style{
			FontSize: 9,
		},
		YAxis: chart.YAxis{
			Name:  locale.CountAxis,
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return strconv.Itoa(int(f))
				}
				return ""
			},
		},
		Bars: bars,
	}
	if err := bc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// barWidth and barSpacing split the plot width across 24 bars with a 3:1 ratio.
func barWidth(width int) int {
	w := (width - 120) * 3 / (4 * aggregate.HoursPerDay)
	if w < 4 {
		return 4
	}
	return w
}

func barSpacing(width int) int {
	s := (width - 120) / (4 * aggregate.HoursPerDay)
	if s < 1 {
		return 1
	}
	return s
}
