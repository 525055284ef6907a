package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tokyokino/models"
)

// Chupki scrapes the single-screen Chupki Cinematheque in Tabata. The site
// publishes one timetable block for the current programme week: a header with
// the date range (and any closed days), then a plain table of time/title rows.
type Chupki struct {
	BaseURL string
	HTTPC   *http.Client
	MaxDays int
	Now     func() time.Time // nil = time.Now, injected in tests
}

const chupkiName = "Chupki"

func NewChupki(maxDays int) *Chupki {
	return &Chupki{
		BaseURL: "https://chupki.jpn.org/",
		HTTPC:   &http.Client{Timeout: 20 * time.Second},
		MaxDays: maxDays,
	}
}

func (c *Chupki) Name() string { return chupkiName }

func (c *Chupki) Fetch(ctx context.Context) ([]models.ShowingRecord, error) {
	body, err := fetchBody(ctx, c.HTTPC, c.BaseURL, "")
	if err != nil {
		return nil, err
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return parseChupkiTimetable(body, now(), c.MaxDays)
}

var (
	chupkiRange  = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日.*?[～〜](\d{1,2})日`)
	chupkiClosed = regexp.MustCompile(`(\d{1,2})日[^0-9]*?休映`)
)

// parseChupkiTimetable reads the timetable block: the h3 header carries a
// range like "5月24日(土)～30日(金) ＊28日(水)休映"; each table row is one
// screening slot that runs every open day of the range.
func parseChupkiTimetable(html []byte, today time.Time, maxDays int) ([]models.ShowingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("chupki: parse page: %w", err)
	}
	tt := doc.Find("div.timetable").First()
	if tt.Length() == 0 {
		return nil, fmt.Errorf("chupki: timetable div not found")
	}

	header := strings.TrimSpace(tt.Find("h3.timetable__ttl").First().Text())
	m := chupkiRange.FindStringSubmatch(header)
	if m == nil {
		return nil, fmt.Errorf("chupki: could not parse date range from %q", header)
	}
	month, _ := strconv.Atoi(m[1])
	startDay, _ := strconv.Atoi(m[2])
	endDay, _ := strconv.Atoi(m[3])

	closed := make(map[int]bool)
	for _, cm := range chupkiClosed.FindAllStringSubmatch(header, -1) {
		if d, err := strconv.Atoi(cm[1]); err == nil {
			closed[d] = true
		}
	}

	// The header has no year; assume the current one, nudged forward when the
	// programme month has already wrapped past December.
	year := today.Year()
	if month == 1 && today.Month() == time.December {
		year++
	}

	day0 := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := day0.AddDate(0, 0, maxDays)
	var dates []string
	for d := startDay; d <= endDay; d++ {
		if closed[d] {
			continue
		}
		date := time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
		if date.Before(day0) || !date.Before(cutoff) {
			continue
		}
		dates = append(dates, date.Format("2006-01-02"))
	}

	var rows []models.ShowingRecord
	tt.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		th := strings.TrimSpace(tr.Find("th").First().Text())
		td := strings.TrimSpace(tr.Find("td").First().Text())
		if th == "" || td == "" {
			return
		}
		for _, date := range dates {
			rows = append(rows, models.ShowingRecord{
				Cinema:   chupkiName,
				Date:     date,
				Screen:   "",
				Title:    collapseSpaces(td),
				Showtime: collapseSpaces(th),
			})
		}
	})
	return rows, nil
}
