package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/width"

	"tokyokino/models"
)

// HumanShibuya scrapes Human Trust Cinema Shibuya via the ttcg.jp schedule
// feed: a .js file holding one JSON document (sometimes wrapped in an
// assignment or a callback) with parallel dates/movies/screens maps.
type HumanShibuya struct {
	ScheduleURL string
	HTTPC       *http.Client
	MaxDays     int
}

const (
	humanShibuyaName = "ヒューマントラストシネマ渋谷"
	ttcgBaseURL      = "https://ttcg.jp"
)

func NewHumanShibuya(maxDays int) *HumanShibuya {
	return &HumanShibuya{
		ScheduleURL: ttcgBaseURL + "/data/human_shibuya.js",
		HTTPC:       &http.Client{Timeout: 15 * time.Second},
		MaxDays:     maxDays,
	}
}

func (h *HumanShibuya) Name() string { return humanShibuyaName }

func (h *HumanShibuya) Fetch(ctx context.Context) ([]models.ShowingRecord, error) {
	body, err := fetchBody(ctx, h.HTTPC, h.ScheduleURL, "")
	if err != nil {
		return nil, err
	}
	return parseTTCGSchedule(body, humanShibuyaName, h.MaxDays)
}

// ttcgSchedule is the shape of the ttcg.jp per-theatre feed. The maps are
// keyed by stringified movie ids; screens by "<movieID>-<Y>-<M>-<D>".
type ttcgSchedule struct {
	Dates []struct {
		Year  json.Number   `json:"date_year"`
		Month json.Number   `json:"date_month"`
		Day   json.Number   `json:"date_day"`
		Movie []json.Number `json:"movie"`
	} `json:"dates"`
	Movies  map[string]json.RawMessage `json:"movies"`
	Screens map[string][]ttcgScreen    `json:"screens"`
}

type ttcgMovie struct {
	Title      string `json:"title"`
	TitleShort string `json:"title_short"`
}

type ttcgScreen struct {
	Name            string `json:"name"`
	ScreenNameShort string `json:"screen_name_short"`
	Time            []struct {
		StartHour   json.Number `json:"start_time_hour"`
		StartMinute json.Number `json:"start_time_minute"`
	} `json:"time"`
}

// stripJSWrapper peels "var foo = {...};" or "callback({...})" down to the
// JSON payload.
func stripJSWrapper(body []byte) []byte {
	s := strings.TrimSpace(string(body))
	s = strings.TrimSuffix(s, ";")
	if i := strings.Index(s, "="); i >= 0 {
		candidate := strings.TrimSpace(s[i+1:])
		if strings.HasPrefix(candidate, "{") || strings.HasPrefix(candidate, "[") {
			s = candidate
		}
	}
	if strings.HasPrefix(s, "callback(") && strings.HasSuffix(s, ")") {
		s = s[len("callback(") : len(s)-1]
	}
	return []byte(s)
}

func parseTTCGSchedule(body []byte, cinema string, maxDays int) ([]models.ShowingRecord, error) {
	payload := stripJSWrapper(body)

	// The feed is sometimes a single-element array around the document.
	var sched ttcgSchedule
	if err := json.Unmarshal(payload, &sched); err != nil {
		var wrapped []ttcgSchedule
		if err2 := json.Unmarshal(payload, &wrapped); err2 != nil || len(wrapped) == 0 {
			return nil, fmt.Errorf("ttcg %s: decode schedule: %w", cinema, err)
		}
		sched = wrapped[0]
	}

	dates := sched.Dates
	if maxDays > 0 && len(dates) > maxDays {
		dates = dates[:maxDays]
	}

	var rows []models.ShowingRecord
	for _, d := range dates {
		date := fmt.Sprintf("%s-%s-%s", d.Year.String(), pad2(d.Month.String()), pad2(d.Day.String()))
		for _, movieID := range d.Movie {
			movie, ok := ttcgMovieByID(sched.Movies, movieID.String())
			if !ok {
				continue
			}
			title := movie.TitleShort
			if title == "" {
				title = movie.Title
			}
			if title == "" {
				title = "タイトル不明"
			}

			screenKey := fmt.Sprintf("%s-%s-%s-%s", movieID.String(), d.Year.String(), d.Month.String(), d.Day.String())
			screens, ok := sched.Screens[screenKey]
			if !ok {
				// Some feeds key screens with the zero-padded compact date.
				alt := fmt.Sprintf("%s-%s%s%s", movieID.String(), d.Year.String(), pad2(d.Month.String()), pad2(d.Day.String()))
				screens = sched.Screens[alt]
			}

			for _, screen := range screens {
				name := screen.ScreenNameShort
				if name == "" {
					name = screen.Name
				}
				// Feed screen names arrive as half-width katakana (ｼｱﾀｰ1);
				// Fold restores the kana while leaving ASCII half-width.
				name = width.Fold.String(name)
				name = strings.TrimSpace(strings.ReplaceAll(name, "(座席券)", ""))

				for _, t := range screen.Time {
					hh := t.StartHour.String()
					mm := t.StartMinute.String()
					if hh == "" || mm == "" {
						continue
					}
					rows = append(rows, models.ShowingRecord{
						Cinema:   cinema,
						Date:     date,
						Screen:   name,
						Title:    title,
						Showtime: pad2(hh) + ":" + pad2(mm),
					})
				}
			}
		}
	}
	return rows, nil
}

// ttcgMovieByID tolerates the movies map holding either an object or a
// single-element array per id.
func ttcgMovieByID(movies map[string]json.RawMessage, id string) (ttcgMovie, bool) {
	raw, ok := movies[id]
	if !ok {
		return ttcgMovie{}, false
	}
	var movie ttcgMovie
	if err := json.Unmarshal(raw, &movie); err == nil && (movie.Title != "" || movie.TitleShort != "") {
		return movie, true
	}
	var list []ttcgMovie
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], true
	}
	return ttcgMovie{}, false
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
