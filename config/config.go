package config

import (
	"os"
	"strconv"
	"strings"
)

// Config carries everything a single batch run needs. All values come from the
// environment; missing API keys disable the corresponding enrichment stage
// rather than failing the run.
type Config struct {
	TMDBAPIKey   string // enables catalog lookup + letterboxd links
	GeminiAPIKey string // enables the LLM english-title fallback
	OutputPath   string // final JSON feed
	CachePath    string // persistent title→metadata cache
	LogFile      string // optional rotating log file; empty = stderr only
	MaxDays      int    // scraper lookahead window, today inclusive
}

const (
	defaultOutput  = "showtimes.json"
	defaultCache   = "tmdb_cache.json"
	defaultMaxDays = 10
)

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() Config {
	cfg := Config{
		TMDBAPIKey:   strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		OutputPath:   strings.TrimSpace(os.Getenv("KINO_OUTPUT")),
		CachePath:    strings.TrimSpace(os.Getenv("KINO_CACHE")),
		LogFile:      strings.TrimSpace(os.Getenv("KINO_LOG_FILE")),
		MaxDays:      defaultMaxDays,
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = defaultOutput
	}
	if cfg.CachePath == "" {
		cfg.CachePath = defaultCache
	}
	if v := strings.TrimSpace(os.Getenv("KINO_MAX_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxDays = n
		}
	}
	return cfg
}
