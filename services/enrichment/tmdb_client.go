package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

// browserUserAgent is sent on every external call; a couple of the scraped
// sites (and TMDB's CDN on occasion) reject default Go client strings.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36"

// Post-call delays per endpoint. These are fixed courtesy pauses charged after
// each request, not adaptive backoff: TMDB's public limit is generous but this
// job runs unattended and has no reason to hurry.
const (
	tmdbSearchDelay    = 600 * time.Millisecond
	tmdbDetailsDelay   = 250 * time.Millisecond
	tmdbAltTitlesDelay = 250 * time.Millisecond
)

// Minimal TMDB v3 client (API-key auth; search, details and alternative-titles
// endpoints only).
type tmdbClient struct {
	apiKey string
	httpc  *http.Client

	// Overridable in tests; see the delay constants above.
	searchDelay    time.Duration
	detailsDelay   time.Duration
	altTitlesDelay time.Duration
}

func newTMDBClient(apiKey string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &tmdbClient{
		apiKey:         strings.TrimSpace(apiKey),
		httpc:          httpc,
		searchDelay:    tmdbSearchDelay,
		detailsDelay:   tmdbDetailsDelay,
		altTitlesDelay: tmdbAltTitlesDelay,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c.apiKey != ""
}

// pause charges the fixed post-call delay for the endpoint that just returned.
func (c *tmdbClient) pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// doGET performs one attempt against a TMDB endpoint. No retries: a failure is
// recorded on the cache entry and not reattempted until the cache is cleared.
func (c *tmdbClient) doGET(ctx context.Context, path string, q url.Values, v any) error {
	q.Set("api_key", c.apiKey)
	endpoint := tmdbBaseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("tmdb get %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

type tmdbSearchResult struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	ReleaseDate   string `json:"release_date"`
}

// searchMovie queries /search/movie in the source language and picks a match
// from the top three results: exact original-title, then exact display-title,
// then a substring-similarity fallback on the first result. Returns nil when
// nothing matches convincingly.
func (c *tmdbClient) searchMovie(ctx context.Context, cleanedTitle string, yearHint int) (*tmdbSearchResult, error) {
	q := url.Values{}
	q.Set("query", cleanedTitle)
	q.Set("language", "ja-JP")
	q.Set("include_adult", "false")
	if yearHint > 0 {
		q.Set("year", strconv.Itoa(yearHint))
	}

	var data struct {
		Results []tmdbSearchResult `json:"results"`
	}
	err := c.doGET(ctx, "/search/movie", q, &data)
	c.pause(c.searchDelay)
	if err != nil {
		return nil, err
	}
	if len(data.Results) == 0 {
		return nil, nil
	}

	top := data.Results
	if len(top) > 3 {
		top = top[:3]
	}
	want := strings.ToLower(strings.TrimSpace(cleanedTitle))

	for i := range top {
		if strings.ToLower(strings.TrimSpace(top[i].OriginalTitle)) == want {
			log.Printf("[tmdb] exact original_title match for %q", cleanedTitle)
			return &top[i], nil
		}
	}
	for i := range top {
		if strings.ToLower(strings.TrimSpace(top[i].Title)) == want {
			log.Printf("[tmdb] exact title match for %q", cleanedTitle)
			return &top[i], nil
		}
	}

	// Substring fallback on the top result only. The reverse containment needs
	// a few runes of query or every one-character title would match everything.
	first := strings.ToLower(data.Results[0].Title)
	if strings.Contains(first, want) || (len([]rune(want)) > 3 && strings.Contains(want, first)) {
		log.Printf("[tmdb] substring fallback match for %q -> %q", cleanedTitle, data.Results[0].Title)
		return &data.Results[0], nil
	}
	log.Printf("[tmdb] top result %q not a convincing match for %q", data.Results[0].Title, cleanedTitle)
	return nil, nil
}

type tmdbMovieDetails struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
}

// movieDetails fetches English-locale details for an id.
func (c *tmdbClient) movieDetails(ctx context.Context, id int) (*tmdbMovieDetails, error) {
	q := url.Values{}
	q.Set("language", "en-US")
	var data tmdbMovieDetails
	err := c.doGET(ctx, fmt.Sprintf("/movie/%d", id), q, &data)
	c.pause(c.detailsDelay)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

type tmdbAltTitle struct {
	ISO31661 string `json:"iso_3166_1"`
	Title    string `json:"title"`
}

// alternativeTitles fetches the full alternative-title list for an id.
func (c *tmdbClient) alternativeTitles(ctx context.Context, id int) ([]tmdbAltTitle, error) {
	var data struct {
		Titles []tmdbAltTitle `json:"titles"`
	}
	err := c.doGET(ctx, fmt.Sprintf("/movie/%d/alternative_titles", id), url.Values{}, &data)
	c.pause(c.altTitlesDelay)
	if err != nil {
		return nil, err
	}
	return data.Titles, nil
}

// pickLatinAlternative chooses a Latin-script alternative title: US/GB entries
// first, then any Latin-script entry that actually differs from the current
// candidate once transliterated (so "Rashômon" vs "Rashomon" doesn't count as
// a different title).
func pickLatinAlternative(titles []tmdbAltTitle, current string) string {
	for _, t := range titles {
		if (t.ISO31661 == "US" || t.ISO31661 == "GB") && isMostlyLatin(t.Title) {
			return t.Title
		}
	}
	curFold := strings.ToLower(unidecode.Unidecode(current))
	for _, t := range titles {
		if !isMostlyLatin(t.Title) {
			continue
		}
		if strings.ToLower(unidecode.Unidecode(t.Title)) != curFold {
			return t.Title
		}
	}
	return ""
}
