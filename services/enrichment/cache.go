package enrichment

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
)

// CacheEntry is one resolved (or failed) lookup, keyed in the cache by
// normalized title. Entries are never deleted and carry no TTL; deleting the
// cache file is the operator's way of forcing a full re-fetch.
type CacheEntry struct {
	ID                     int    `json:"id,omitempty"` // TMDB id; 0 = no catalog match
	TMDBTitle              string `json:"tmdb_title,omitempty"`
	TMDBOriginalTitle      string `json:"tmdb_original_title,omitempty"`
	LetterboxdEnglishTitle string `json:"letterboxd_english_title,omitempty"`
	LetterboxdAttempted    bool   `json:"letterboxd_attempted,omitempty"`
	EigaSearchLink         string `json:"eiga_search_link,omitempty"`
	GeminiEnglishTitle     string `json:"gemini_english_title,omitempty"`
	APIError               bool   `json:"api_error,omitempty"`
}

// EntryStatus classifies an entry so callers pattern-match instead of probing
// individual fields for presence.
type EntryStatus int

const (
	// StatusUnresolved means the entry needs (more) network work this run.
	StatusUnresolved EntryStatus = iota
	// StatusCatalogMatched means a TMDB id was found and the letterboxd scrape
	// has been attempted (successfully or not).
	StatusCatalogMatched
	// StatusNoMatch means TMDB confirmed no match and the fallback pair
	// (eiga link, optional gemini title) is in place.
	StatusNoMatch
	// StatusErrored means the catalog API failed for this title; not retried
	// until the cache is cleared.
	StatusErrored
)

// Status reports how complete this entry is.
func (e CacheEntry) Status() EntryStatus {
	switch {
	case e.APIError:
		return StatusErrored
	case e.ID > 0 && e.LetterboxdAttempted:
		return StatusCatalogMatched
	case e.ID > 0:
		return StatusUnresolved
	case e.EigaSearchLink != "":
		return StatusNoMatch
	default:
		return StatusUnresolved
	}
}

// Cache is the persistent normalized-title → CacheEntry store. It is a plain
// memoization map flushed to one JSON file; the run is single-threaded so there
// is no locking.
type Cache struct {
	path    string
	entries map[string]CacheEntry
}

// LoadCache reads the cache file at path. A missing file starts an empty
// cache; a corrupt file is demoted to a warning and an empty cache rather
// than failing the run.
func LoadCache(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string]CacheEntry)}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[cache] read %s: %v (starting empty)", path, err)
		}
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		log.Printf("[cache] warning: %s is corrupt (%v), starting empty", path, err)
		c.entries = make(map[string]CacheEntry)
	}
	return c
}

// Get returns the entry for key, if any.
func (c *Cache) Get(key string) (CacheEntry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Put overwrites the entry for key in memory. Call Flush to persist.
func (c *Cache) Put(key string, entry CacheEntry) {
	c.entries[key] = entry
}

// Len returns the number of cached titles.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Flush writes the full map to disk via tmp+rename so a crash mid-write never
// corrupts the existing file. Called after every new resolution, bounding
// crash loss to one title's worth of API calls.
func (c *Cache) Flush() error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := c.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c.entries); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, c.path)
}
