package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"tokyokino/models"
)

// Scraper is one cinema's listings source. Every site differs in markup, date
// format and rendering strategy, so each implementation is a bespoke parser;
// the orchestration treats them all as "a thing that yields showing records".
type Scraper interface {
	Name() string
	Fetch(ctx context.Context) ([]models.ShowingRecord, error)
}

// RunAll executes every scraper sequentially. A failure (error or panic) in
// one scraper is logged and contributes zero rows; the rest of the run
// continues. Returns the concatenated records.
func RunAll(ctx context.Context, scrapers []Scraper) []models.ShowingRecord {
	var all []models.ShowingRecord
	for _, s := range scrapers {
		if ctx.Err() != nil {
			log.Printf("[scrape] canceled: %v", ctx.Err())
			break
		}
		rows := runOne(ctx, s)
		if len(rows) > 0 {
			log.Printf("[scrape] %s: %d showings", s.Name(), len(rows))
		} else {
			log.Printf("[scrape] %s: no showings", s.Name())
		}
		all = append(all, rows...)
	}
	log.Printf("[scrape] collected %d showings from %d cinemas", len(all), len(scrapers))
	return all
}

// runOne is the per-cinema failure boundary.
func runOne(ctx context.Context, s Scraper) (rows []models.ShowingRecord) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[scrape] %s: panic: %v", s.Name(), r)
			rows = nil
		}
	}()
	rows, err := s.Fetch(ctx)
	if err != nil {
		log.Printf("[scrape] %s: %v", s.Name(), err)
		return nil
	}
	return rows
}

// browserUserAgent keeps the scraped sites from serving bot pages; several of
// them 403 the default Go client string.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36"

// fetchBody GETs a URL with the shared headers, retrying transient failures a
// couple of times before giving up. The caller's client supplies the timeout.
func fetchBody(ctx context.Context, httpc *http.Client, url, referer string) ([]byte, error) {
	return retry.DoWithData(
		func() ([]byte, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", browserUserAgent)
			if referer != "" {
				req.Header.Set("Referer", referer)
			}
			resp, err := httpc.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 500 {
				return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
			}
			if resp.StatusCode >= 300 {
				return nil, retry.Unrecoverable(fmt.Errorf("fetch %s: %s", url, resp.Status))
			}
			return io.ReadAll(resp.Body)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}
