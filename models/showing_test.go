package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIsSentinelTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"Unknown Film", true},
		{"unknown title", true},
		{"N/A", true},
		{"タイトル不明", true},
		{"未定", true},
		{"羅生門", false},
		{"PERFECT DAYS", false},
	}
	for _, tt := range tests {
		if got := IsSentinelTitle(tt.title); got != tt.want {
			t.Errorf("IsSentinelTitle(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestSortShowings(t *testing.T) {
	records := []ShowingRecord{
		{Cinema: "B", Date: "2026-09-01", Showtime: "10:00", Title: "x"},
		{Cinema: "A", Date: "2026-09-02", Showtime: "09:00", Title: "x"},
		{Cinema: "A", Date: "2026-09-01", Showtime: "18:00", Title: "x"},
		{Cinema: "A", Date: "2026-09-01", Showtime: "10:00", Title: "b"},
		{Cinema: "A", Date: "2026-09-01", Showtime: "10:00", Title: "a"},
	}
	SortShowings(records)

	want := []struct {
		cinema, date, showtime, title string
	}{
		{"A", "2026-09-01", "10:00", "a"},
		{"A", "2026-09-01", "10:00", "b"},
		{"A", "2026-09-01", "18:00", "x"},
		{"A", "2026-09-02", "09:00", "x"},
		{"B", "2026-09-01", "10:00", "x"},
	}
	for i, w := range want {
		r := records[i]
		if r.Cinema != w.cinema || r.Date != w.date || r.Showtime != w.showtime || r.Title != w.title {
			t.Errorf("record %d = %+v, want %+v", i, r, w)
		}
	}
}

func TestShowingRecordJSONOmitsEmptyEnrichment(t *testing.T) {
	b, err := json.Marshal(ShowingRecord{
		Cinema:   "Chupki",
		Date:     "2026-09-01",
		Title:    "羅生門",
		Showtime: "10:30",
	})
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if strings.Contains(s, "letterboxd") || strings.Contains(s, "eiga") || strings.Contains(s, "gemini") {
		t.Fatalf("unenriched record leaks optional fields: %s", s)
	}
	// The base fields always serialize, even when empty.
	if !strings.Contains(s, `"screen":""`) {
		t.Fatalf("screen field missing: %s", s)
	}
}
