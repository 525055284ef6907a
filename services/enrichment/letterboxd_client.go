package enrichment

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const letterboxdTMDBBaseURL = "https://letterboxd.com/tmdb/"

const letterboxdDelay = 500 * time.Millisecond

// letterboxdClient scrapes the film page Letterboxd serves at a deterministic
// /tmdb/<id> URL and pulls the English title out of its og:title meta tag.
type letterboxdClient struct {
	httpc *http.Client
	delay time.Duration
}

func newLetterboxdClient(httpc *http.Client) *letterboxdClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &letterboxdClient{httpc: httpc, delay: letterboxdDelay}
}

// letterboxdLink returns the deterministic Letterboxd URL for a TMDB id.
func letterboxdLink(tmdbID int) string {
	return fmt.Sprintf("%s%d", letterboxdTMDBBaseURL, tmdbID)
}

// ogTitleYear matches the " (1950)" tail Letterboxd appends to page titles.
var ogTitleYear = regexp.MustCompile(`\s*\((19|20)\d{2}\)$`)

// englishTitle fetches the page for tmdbID and returns the og:title content
// with the year tail stripped. An empty result is not an error: some pages
// have no English title worth keeping.
func (c *letterboxdClient) englishTitle(ctx context.Context, tmdbID int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, letterboxdLink(tmdbID), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("letterboxd fetch tmdb/%d: %w", tmdbID, err)
	}
	defer resp.Body.Close()
	defer c.pause()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("letterboxd fetch tmdb/%d failed: %s", tmdbID, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("letterboxd parse tmdb/%d: %w", tmdbID, err)
	}
	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	title = strings.TrimSpace(ogTitleYear.ReplaceAllString(strings.TrimSpace(title), ""))
	return title, nil
}

func (c *letterboxdClient) pause() {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
}
