package locale

import (
	"testing"
	"time"
)

func TestWeekdayName_TotalMapping(t *testing.T) {
	want := map[string]string{
		"Monday":    "Poniedziałek",
		"Tuesday":   "Wtorek",
		"Wednesday": "Środa",
		"Thursday":  "Czwartek",
		"Friday":    "Piątek",
		"Saturday":  "Sobota",
		"Sunday":    "Niedziela",
	}
	if len(weekdayNames) != len(want) {
		t.Fatalf("weekdayNames has %d entries, want %d", len(weekdayNames), len(want))
	}
	seen := make(map[string]bool)
	for en, pl := range want {
		got, ok := WeekdayName(en)
		if !ok || got != pl {
			t.Errorf("WeekdayName(%q) = %q, %v; want %q", en, got, ok, pl)
		}
		seen[got] = true
	}
	if len(seen) != 7 {
		t.Errorf("localized names not distinct: %v", seen)
	}
	if _, ok := WeekdayName("Funday"); ok {
		t.Error("WeekdayName(Funday) should not be found")
	}
}

func TestWeek_CanonicalOrder(t *testing.T) {
	if len(Week) != 7 || Week[0] != time.Monday || Week[6] != time.Sunday {
		t.Fatalf("Week = %v, want Monday..Sunday", Week)
	}
	for i, d := range Week {
		if Index(d) != i {
			t.Errorf("Index(%v) = %d, want %d", d, Index(d), i)
		}
	}
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		day  time.Weekday
		want bool
	}{
		{time.Monday, false},
		{time.Friday, false},
		{time.Saturday, true},
		{time.Sunday, true},
	}
	for _, tt := range tests {
		if got := IsWeekend(tt.day); got != tt.want {
			t.Errorf("IsWeekend(%v) = %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestMonth(t *testing.T) {
	april := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	if got := Month(april); got != "kwiecień 2025" {
		t.Errorf("Month() = %q", got)
	}
	if got := MonthIn(april); got != "kwietniu 2025" {
		t.Errorf("MonthIn() = %q", got)
	}
}
