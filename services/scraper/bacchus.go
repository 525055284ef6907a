package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"tokyokino/models"
)

// Bacchus scrapes Theater Bacchus in Koenji via its public Google Calendar ICS
// feed. Multi-day events are expanded into one record per day using DTEND
// (non-inclusive for all-day events, per the ICS convention Google follows).
type Bacchus struct {
	ICSURL  string
	HTTPC   *http.Client
	MaxDays int
	Now     func() time.Time
}

const bacchusName = "Theater Bacchus"

func NewBacchus(maxDays int) *Bacchus {
	return &Bacchus{
		ICSURL:  "https://calendar.google.com/calendar/ical/koenjibacchus%40gmail.com/public/basic.ics",
		HTTPC:   &http.Client{Timeout: 20 * time.Second},
		MaxDays: maxDays,
	}
}

func (b *Bacchus) Name() string { return bacchusName }

func (b *Bacchus) Fetch(ctx context.Context) ([]models.ShowingRecord, error) {
	body, err := fetchBody(ctx, b.HTTPC, b.ICSURL, "")
	if err != nil {
		return nil, err
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return parseBacchusCalendar(body, now(), b.MaxDays)
}

func parseBacchusCalendar(icsData []byte, today time.Time, maxDays int) ([]models.ShowingRecord, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(icsData))
	if err != nil {
		return nil, fmt.Errorf("bacchus: parse ics: %w", err)
	}

	day0 := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := day0.AddDate(0, 0, maxDays-1) // inclusive upper bound

	seen := make(map[string]bool)
	var rows []models.ShowingRecord
	for _, event := range cal.Events() {
		start, err := event.GetStartAt()
		if err != nil {
			continue
		}
		end, err := event.GetEndAt()
		if err != nil || end.Before(start) {
			end = start
		}

		// All-day events carry a date with no clock; treat midnight starts as
		// "no published showtime".
		showtime := ""
		if start.Hour() != 0 || start.Minute() != 0 {
			showtime = start.Format("15:04")
		}

		summary := event.GetProperty(ics.ComponentPropertySummary)
		if summary == nil {
			continue
		}
		title := strings.TrimSpace(summary.Value)
		if title == "" {
			continue
		}

		endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
		cur := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		if cur.Equal(endDay) {
			// Timed events have DTEND the same day; still emit one record.
			endDay = endDay.AddDate(0, 0, 1)
		}
		for ; cur.Before(endDay); cur = cur.AddDate(0, 0, 1) {
			if cur.Before(day0) || cur.After(cutoff) {
				continue
			}
			date := cur.Format("2006-01-02")
			key := date + "|" + title + "|" + showtime
			if seen[key] {
				continue
			}
			seen[key] = true
			rows = append(rows, models.ShowingRecord{
				Cinema:   bacchusName,
				Date:     date,
				Screen:   "",
				Title:    title,
				Showtime: showtime,
			})
		}
	}
	models.SortShowings(rows)
	return rows, nil
}
