// Package aggregate turns cleaned records into hourly buckets and peak-hour
// statistics.
//
// Peak selection is first-occurrence-wins: buckets are visited in ascending hour
// order, so on equal counts the earliest hour is reported.
package aggregate

import (
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/kjstillabower/epwa-traffic-dashboard/internal/locale"
	"github.com/kjstillabower/epwa-traffic-dashboard/internal/models"
)

// HoursPerDay is the number of buckets every day carries after densification.
const HoursPerDay = 24

// Stats is the full aggregation of one month of records.
type Stats struct {
	// Buckets holds HoursPerDay dense buckets per day, ordered by day then hour.
	Buckets      []models.HourlyBucket
	Days         []int
	DailyPeaks   []models.DailyPeak
	WeekdayPeaks []models.AveragePeak
	Workday      *models.AveragePeak
	Weekend      *models.AveragePeak
	MaxCount     int
}

type bucketKey struct {
	day     int
	hour    int
	weekday time.Weekday
	weekend bool
}

// Build runs the whole aggregation.
func Build(records []models.Record) Stats {
	dense := Densify(HourlyCounts(records))
	workday, weekend := WeekendPeaks(dense)
	stats := Stats{
		Buckets:      dense,
		Days:         days(dense),
		DailyPeaks:   DailyPeaks(dense),
		WeekdayPeaks: WeekdayPeaks(dense),
		Workday:      workday,
		Weekend:      weekend,
	}
	for _, b := range dense {
		if b.Count > stats.MaxCount {
			stats.MaxCount = b.Count
		}
	}
	return stats
}

// InMonth keeps the records whose wall-clock LastSeen falls in the year and month
// of month, and returns how many were left out. Day of month is only unique
// within one calendar month.
func InMonth(records []models.Record, month time.Time) ([]models.Record, int) {
	kept := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.LastSeen.Year() == month.Year() && r.LastSeen.Month() == month.Month() {
			kept = append(kept, r)
		}
	}
	return kept, len(records) - len(kept)
}

// HourlyCounts groups records by (day, hour, weekday, weekend) and counts them.
// Only non-empty buckets are returned, ordered by day, hour, then weekday.
func HourlyCounts(records []models.Record) []models.HourlyBucket {
	counts := make(map[bucketKey]int)
	for _, r := range records {
		counts[bucketKey{r.Day, r.Hour, r.Weekday, r.Weekend}]++
	}
	out := make([]models.HourlyBucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.HourlyBucket{
			Day:          k.day,
			Hour:         k.hour,
			Weekday:      k.weekday,
			WeekdayLocal: locale.Weekday(k.weekday),
			Weekend:      k.weekend,
			Count:        n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return locale.Index(out[i].Weekday) < locale.Index(out[j].Weekday)
	})
	return out
}

// Densify expands sparse buckets so every day present has hours 0..23. Missing
// hours get a zero count and the weekday of the day's first sparse bucket.
func Densify(sparse []models.HourlyBucket) []models.HourlyBucket {
	type dayInfo struct {
		weekday time.Weekday
		local   string
		weekend bool
		counts  [HoursPerDay]int
	}
	byDay := make(map[int]*dayInfo)
	var order []int
	for _, b := range sparse {
		info, ok := byDay[b.Day]
		if !ok {
			info = &dayInfo{weekday: b.Weekday, local: b.WeekdayLocal, weekend: b.Weekend}
			byDay[b.Day] = info
			order = append(order, b.Day)
		}
		if b.Hour >= 0 && b.Hour < HoursPerDay {
			info.counts[b.Hour] += b.Count
		}
	}
	sort.Ints(order)

	out := make([]models.HourlyBucket, 0, len(order)*HoursPerDay)
	for _, day := range order {
		info := byDay[day]
		for hour := 0; hour < HoursPerDay; hour++ {
			out = append(out, models.HourlyBucket{
				Day:          day,
				Hour:         hour,
				Weekday:      info.weekday,
				WeekdayLocal: info.local,
				Weekend:      info.weekend,
				Count:        info.counts[hour],
			})
		}
	}
	return out
}

// DailyPeaks returns the busiest bucket of each day, in day order.
func DailyPeaks(buckets []models.HourlyBucket) []models.DailyPeak {
	var out []models.DailyPeak
	index := make(map[int]int)
	for _, b := range buckets {
		i, ok := index[b.Day]
		if !ok {
			index[b.Day] = len(out)
			out = append(out, models.DailyPeak{
				Day:          b.Day,
				WeekdayLocal: b.WeekdayLocal,
				Weekend:      b.Weekend,
				Hour:         b.Hour,
				Count:        b.Count,
			})
			continue
		}
		if b.Count > out[i].Count {
			out[i].Hour = b.Hour
			out[i].Count = b.Count
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// WeekdayPeaks averages each hour over all days sharing a weekday and returns
// the best hour per weekday, Monday first. Weekdays without data are omitted.
func WeekdayPeaks(buckets []models.HourlyBucket) []models.AveragePeak {
	groups := make(map[time.Weekday]*hourMeans)
	for _, b := range buckets {
		g, ok := groups[b.Weekday]
		if !ok {
			g = newHourMeans()
			groups[b.Weekday] = g
		}
		g.add(b)
	}
	var out []models.AveragePeak
	for _, wd := range locale.Week {
		g, ok := groups[wd]
		if !ok {
			continue
		}
		out = append(out, g.peak(locale.Weekday(wd)))
	}
	return out
}

// WeekendPeaks is WeekdayPeaks grouped by the weekend flag. Either result is
// nil when the month has no day of that kind.
func WeekendPeaks(buckets []models.HourlyBucket) (workday, weekend *models.AveragePeak) {
	groups := map[bool]*hourMeans{}
	for _, b := range buckets {
		g, ok := groups[b.Weekend]
		if !ok {
			g = newHourMeans()
			groups[b.Weekend] = g
		}
		g.add(b)
	}
	if g, ok := groups[false]; ok {
		p := g.peak(locale.WorkdayLabel)
		workday = &p
	}
	if g, ok := groups[true]; ok {
		p := g.peak(locale.WeekendLabel)
		weekend = &p
	}
	return workday, weekend
}

// DayBuckets returns the HoursPerDay buckets of day, or nil if the day has none.
func (s Stats) DayBuckets(day int) []models.HourlyBucket {
	i := sort.Search(len(s.Buckets), func(i int) bool { return s.Buckets[i].Day >= day })
	if i >= len(s.Buckets) || s.Buckets[i].Day != day {
		return nil
	}
	end := i
	for end < len(s.Buckets) && s.Buckets[end].Day == day {
		end++
	}
	return s.Buckets[i:end]
}

// DailyPeak returns the peak of day.
func (s Stats) DailyPeak(day int) (models.DailyPeak, bool) {
	for _, p := range s.DailyPeaks {
		if p.Day == day {
			return p, true
		}
	}
	return models.DailyPeak{}, false
}

// Frame exposes the dense buckets as a table, one row per (day, hour).
func (s Stats) Frame() dataframe.DataFrame {
	return dataframe.LoadStructs(s.Buckets)
}

// hourMeans accumulates per-hour sums and the set of days contributing to them.
type hourMeans struct {
	sums [HoursPerDay]int
	days map[int]struct{}
}

func newHourMeans() *hourMeans {
	return &hourMeans{days: make(map[int]struct{})}
}

func (h *hourMeans) add(b models.HourlyBucket) {
	if b.Hour < 0 || b.Hour >= HoursPerDay {
		return
	}
	h.sums[b.Hour] += b.Count
	h.days[b.Day] = struct{}{}
}

func (h *hourMeans) peak(label string) models.AveragePeak {
	n := len(h.days)
	p := models.AveragePeak{Label: label, Days: n}
	if n == 0 {
		return p
	}
	best := -1
	for hour, sum := range h.sums {
		if best < 0 || sum > h.sums[best] {
			best = hour
		}
	}
	p.Hour = best
	p.MeanCount = float64(h.sums[best]) / float64(n)
	return p
}

func days(buckets []models.HourlyBucket) []int {
	var out []int
	for _, b := range buckets {
		if len(out) == 0 || out[len(out)-1] != b.Day {
			out = append(out, b.Day)
		}
	}
	return out
}
