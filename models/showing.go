package models

import (
	"sort"
	"strings"
)

// ShowingRecord is one screening instance at one cinema. Scrapers produce the
// raw fields; the enrichment pipeline fills the optional metadata fields in
// place, exactly once, before the record is serialized to the feed.
type ShowingRecord struct {
	Cinema   string `json:"cinema"`
	Date     string `json:"date"` // YYYY-MM-DD
	Screen   string `json:"screen"`
	Title    string `json:"title"`
	Showtime string `json:"showtime"` // HH:MM, 24-hour; empty for all-day calendar events

	// Enrichment fields. Absent means "not resolvable"; the eiga/gemini pair is
	// only populated when no TMDB match was found.
	LetterboxdLink         string `json:"letterboxd_link,omitempty"`
	TMDBDisplayTitle       string `json:"tmdb_display_title,omitempty"`
	TMDBOriginalTitle      string `json:"tmdb_original_title,omitempty"`
	LetterboxdEnglishTitle string `json:"letterboxd_english_title,omitempty"`
	EigaSearchLink         string `json:"eiga_search_link,omitempty"`
	GeminiEnglishTitle     string `json:"gemini_english_title,omitempty"`
}

// sentinelTitles are placeholder strings some cinema sites emit when a slot has
// no announced film yet. Records carrying one are kept in the feed but never
// sent through enrichment.
var sentinelTitles = map[string]struct{}{
	"unknown title": {},
	"unknown film":  {},
	"n/a":           {},
	"タイトル不明":        {},
	"未定":            {},
}

// IsSentinelTitle reports whether the title is empty or a known placeholder.
func IsSentinelTitle(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return true
	}
	_, ok := sentinelTitles[t]
	return ok
}

// SortShowings orders records by (cinema, date, showtime, title) so feed output
// diffs cleanly between runs.
func SortShowings(records []ShowingRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Cinema != b.Cinema {
			return a.Cinema < b.Cinema
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Showtime != b.Showtime {
			return a.Showtime < b.Showtime
		}
		return a.Title < b.Title
	})
}
