// Package locale holds the Polish labels used by the dashboard.
package locale

import "time"

// Week is the canonical display order, Monday first.
var Week = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

var weekdayNames = map[string]string{
	"Monday":    "Poniedziałek",
	"Tuesday":   "Wtorek",
	"Wednesday": "Środa",
	"Thursday":  "Czwartek",
	"Friday":    "Piątek",
	"Saturday":  "Sobota",
	"Sunday":    "Niedziela",
}

const (
	WorkdayLabel = "Dzień roboczy"
	WeekendLabel = "Weekend"

	ChartTitle    = "Dzienny rytm ruchu lotniczego %s - %s"
	ChartSubtitle = "Animacja pokazująca zmiany godzinowe dzień po dniu"
	HourAxis      = "Godzina"
	CountAxis     = "Liczba lotów"
	DayCaption    = "Dzień: %d (%s)"
	PeakCaption   = "Godzina największego ruchu: %d:00 (%d lotów)"
	SummaryTitle  = "Średnie godziny największego ruchu w %s:"
	SummaryByDay  = "Dla dni tygodnia:"
	SummaryWork   = "Dla dni roboczych: %d:00"
	SummaryWeek   = "Dla weekendów: %d:00"
	PlayLabel     = "Odtwórz"
	PauseLabel    = "Pauza"
)

var monthNames = [...]string{
	"styczeń", "luty", "marzec", "kwiecień", "maj", "czerwiec",
	"lipiec", "sierpień", "wrzesień", "październik", "listopad", "grudzień",
}

// monthLocative is the "w <month>" form used in running text.
var monthLocative = [...]string{
	"styczniu", "lutym", "marcu", "kwietniu", "maju", "czerwcu",
	"lipcu", "sierpniu", "wrześniu", "październiku", "listopadzie", "grudniu",
}

// WeekdayName translates an English weekday name. ok is false for unknown names.
func WeekdayName(english string) (string, bool) {
	name, ok := weekdayNames[english]
	return name, ok
}

// Weekday returns the Polish name of d.
func Weekday(d time.Weekday) string {
	return weekdayNames[d.String()]
}

// Index returns the Monday-based position of d (Monday=0 .. Sunday=6).
func Index(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// IsWeekend reports whether d is Saturday or Sunday.
func IsWeekend(d time.Weekday) bool {
	return Index(d) >= 5
}

// WeekendGroup returns the summary label for a weekend flag.
func WeekendGroup(weekend bool) string {
	if weekend {
		return WeekendLabel
	}
	return WorkdayLabel
}

// Month returns the nominative month name, e.g. "kwiecień 2025".
func Month(t time.Time) string {
	return monthNames[t.Month()-1] + " " + t.Format("2006")
}

// MonthIn returns the locative month phrase, e.g. "kwietniu 2025".
func MonthIn(t time.Time) string {
	return monthLocative[t.Month()-1] + " " + t.Format("2006")
}
