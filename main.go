package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"

	"tokyokino/config"
	"tokyokino/models"
	"tokyokino/services/enrichment"
	"tokyokino/services/feed"
	"tokyokino/services/scraper"
)

func main() {
	cfg := config.FromEnv()

	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	}

	runID := uuid.NewString()[:8]
	log.Printf("[main] showtimes run %s starting", runID)

	httpc := &http.Client{Timeout: 30 * time.Second}
	ctx := context.Background()

	scrapers := []scraper.Scraper{
		scraper.NewChupki(cfg.MaxDays),
		scraper.NewEurospace(),
		scraper.NewHumanShibuya(cfg.MaxDays),
		scraper.NewBacchus(cfg.MaxDays),
	}
	records := scraper.RunAll(ctx, scrapers)
	log.Printf("[main] scraped %d showings from %d cinemas", len(records), len(scrapers))

	records = enrich(ctx, cfg, httpc, records)

	if err := feed.Write(cfg.OutputPath, records); err != nil {
		log.Printf("[main] write feed: %v", err)
		os.Exit(1)
	}
	log.Printf("[main] run %s finished", runID)
}

// enrich runs the metadata pipeline when a TMDB key is available. A missing
// key still produces a valid feed, just without external links.
func enrich(ctx context.Context, cfg config.Config, httpc *http.Client, records []models.ShowingRecord) []models.ShowingRecord {
	if cfg.TMDBAPIKey == "" {
		log.Printf("[main] WARNING: TMDB_API_KEY not set, skipping metadata enrichment")
		return records
	}
	svc := enrichment.NewService(cfg.TMDBAPIKey, cfg.GeminiAPIKey, cfg.CachePath, httpc)
	log.Printf("[main] metadata cache holds %d titles", svc.CacheSize())
	return svc.Enrich(ctx, records)
}
