package models

import "time"

// Record is one cleaned flight sighting. Derived fields are computed from LastSeen
// in the location it was parsed in.
type Record struct {
	Source       string       `json:"source"`
	LastSeen     time.Time    `json:"lastSeen"`
	Hour         int          `json:"hour"`
	Day          int          `json:"day"`
	Weekday      time.Weekday `json:"-"`
	WeekdayName  string       `json:"dayOfWeek"`
	WeekdayLocal string       `json:"dayOfWeekLocal"`
	Weekend      bool         `json:"isWeekend"`
}

// HourlyBucket counts the records seen in one hour of one day.
type HourlyBucket struct {
	Day          int          `json:"day" dataframe:"day"`
	Hour         int          `json:"hour" dataframe:"hour"`
	Weekday      time.Weekday `json:"-" dataframe:"-"`
	WeekdayLocal string       `json:"dayOfWeekLocal" dataframe:"day_of_week_pl"`
	Weekend      bool         `json:"isWeekend" dataframe:"is_weekend"`
	Count        int          `json:"count" dataframe:"count"`
}

// DailyPeak is the busiest hour of a single day.
type DailyPeak struct {
	Day          int    `json:"day"`
	WeekdayLocal string `json:"dayOfWeekLocal"`
	Weekend      bool   `json:"isWeekend"`
	Hour         int    `json:"hour"`
	Count        int    `json:"count"`
}

// AveragePeak is the hour with the highest mean count across a group of days
// (all Mondays, all weekend days, ...).
type AveragePeak struct {
	Label     string  `json:"label"`
	Hour      int     `json:"hour"`
	MeanCount float64 `json:"meanCount"`
	Days      int     `json:"days"`
}
