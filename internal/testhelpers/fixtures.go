// Package testhelpers writes the CSV fixtures shared by pipeline and HTTP tests.
package testhelpers

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

// FlightHeader mirrors the columns of an OpenSky arrivals/departures export.
var FlightHeader = []string{"icao24", "firstSeen", "estDepartureAirport", "lastSeen", "estArrivalAirport", "callsign"}

// WriteCSV writes header and rows to dir/name and returns the path.
func WriteCSV(t testing.TB, dir, name string, header []string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	return path
}

// FlightRows builds FlightHeader rows with the given lastSeen values.
func FlightRows(lastSeen ...string) [][]string {
	rows := make([][]string, 0, len(lastSeen))
	for i, ts := range lastSeen {
		rows = append(rows, []string{
			"48ae0" + string(rune('0'+i%10)),
			"",
			"EPWA",
			ts,
			"EGLL",
			"LOT" + string(rune('1'+i%9)),
		})
	}
	return rows
}

// WriteTwoDayMonth writes arrivals for 2025-04-01 and departures for 2025-04-02,
// each with flights last seen at 08:00, 08:15 and 14:00. Returns the directory.
func WriteTwoDayMonth(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	WriteCSV(t, dir, "arrivals_EPWA_2025-04-01.csv", FlightHeader, FlightRows(
		"2025-04-01 08:00:00", "2025-04-01 08:15:00", "2025-04-01 14:00:00",
	))
	WriteCSV(t, dir, "departures_EPWA_2025-04-02.csv", FlightHeader, FlightRows(
		"2025-04-02 08:00:00", "2025-04-02 08:15:00", "2025-04-02 14:00:00",
	))
	return dir
}
