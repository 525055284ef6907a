package scraper

import (
	"testing"
	"time"
)

const chupkiPage = `<html><body>
<div class="timetable">
  <h3 class="timetable__ttl">9月1日(月)～7日(日)　＊3日(水)休映</h3>
  <table>
    <tr><th>10:30</th><td>ある日の午後</td></tr>
    <tr><th>14:00</th><td>羅生門　4Kデジタルリマスター版</td></tr>
  </table>
</div>
</body></html>`

func TestParseChupkiTimetable(t *testing.T) {
	today := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	rows, err := parseChupkiTimetable([]byte(chupkiPage), today, 10)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// Sep 1-7 minus the closed 3rd leaves six open days, two slots each.
	if len(rows) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Cinema != "Chupki" {
			t.Fatalf("cinema = %q", r.Cinema)
		}
		if r.Date == "2026-09-03" {
			t.Fatalf("closed day leaked into rows: %+v", r)
		}
	}
	first := rows[0]
	if first.Date != "2026-09-01" || first.Showtime != "10:30" || first.Title != "ある日の午後" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	// Rows come out slot-major: all dates for the first slot, then the next.
	if rows[5].Date != "2026-09-07" || rows[5].Showtime != "10:30" {
		t.Fatalf("unexpected row 5: %+v", rows[5])
	}
	// Full-width space in the cell collapses to a single ASCII space.
	if rows[6].Title != "羅生門 4Kデジタルリマスター版" || rows[6].Showtime != "14:00" {
		t.Fatalf("unexpected row 6: %+v", rows[6])
	}
}

func TestParseChupkiTimetableWindow(t *testing.T) {
	today := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	rows, err := parseChupkiTimetable([]byte(chupkiPage), today, 3)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// Only Sep 1 and 2 fall inside a 3-day window (the 3rd is closed).
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Date != "2026-09-01" && r.Date != "2026-09-02" {
			t.Fatalf("row outside window: %+v", r)
		}
	}
}

func TestParseChupkiTimetableRangeAlreadyOver(t *testing.T) {
	today := time.Date(2026, 9, 20, 8, 0, 0, 0, time.UTC)
	rows, err := parseChupkiTimetable([]byte(chupkiPage), today, 10)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows for a past programme, got %d", len(rows))
	}
}

func TestParseChupkiTimetableMissingBlock(t *testing.T) {
	today := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	if _, err := parseChupkiTimetable([]byte("<html><body></body></html>"), today, 10); err == nil {
		t.Fatal("expected error when the timetable div is missing")
	}
}
