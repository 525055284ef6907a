package enrichment

import (
	"context"
	"log"
	"net/http"
	"sort"

	"tokyokino/models"
)

// Service resolves normalized titles to external metadata and back-fills the
// results onto every showing record sharing that title. One resolution is
// charged per unique title per run; everything else comes from the cache.
type Service struct {
	tmdb   *tmdbClient
	lbxd   *letterboxdClient
	gemini *geminiClient // optional; nil or unconfigured disables the LLM fallback
	cache  *Cache
}

// NewService wires the resolver. geminiAPIKey may be empty; the LLM fallback
// is then skipped and no-match titles carry only the eiga search link.
func NewService(tmdbAPIKey, geminiAPIKey, cachePath string, httpc *http.Client) *Service {
	return &Service{
		tmdb:   newTMDBClient(tmdbAPIKey, httpc),
		lbxd:   newLetterboxdClient(httpc),
		gemini: newGeminiClient(geminiAPIKey, httpc),
		cache:  LoadCache(cachePath),
	}
}

// CacheSize reports how many titles the persistent cache currently holds.
func (s *Service) CacheSize() int {
	return s.cache.Len()
}

// Enrich annotates records in place and returns them. Records with empty or
// placeholder titles pass through untouched. Source fields are never
// rewritten.
func (s *Service) Enrich(ctx context.Context, records []models.ShowingRecord) []models.ShowingRecord {
	if len(records) == 0 {
		return records
	}

	// Group record indices by normalized title so each distinct title is
	// resolved exactly once and every record in a group gets identical fields.
	groups := make(map[string][]int)
	rawByKey := make(map[string]string)
	for i := range records {
		title := records[i].Title
		if models.IsSentinelTitle(title) {
			continue
		}
		key := NormalizeTitle(title)
		if key == "" {
			log.Printf("[enrich] title %q normalized to empty, skipping", title)
			continue
		}
		groups[key] = append(groups[key], i)
		if _, ok := rawByKey[key]; !ok {
			rawByKey[key] = title
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	log.Printf("[enrich] %d records, %d distinct titles (%d already cached)",
		len(records), len(keys), s.cachedCount(keys))

	for _, key := range keys {
		if ctx.Err() != nil {
			log.Printf("[enrich] canceled: %v", ctx.Err())
			break
		}
		entry := s.resolve(ctx, key, rawByKey[key])
		for _, i := range groups[key] {
			applyEntry(&records[i], entry)
		}
	}
	return records
}

func (s *Service) cachedCount(keys []string) int {
	n := 0
	for _, k := range keys {
		if e, ok := s.cache.Get(k); ok && e.Status() != StatusUnresolved {
			n++
		}
	}
	return n
}

// resolve runs the fallback chain for one normalized title:
//
//	cache hit (complete)      -> return, zero network calls
//	TMDB search               -> match: details, alt titles, letterboxd scrape
//	                          -> no match / API error: eiga link + gemini title
//
// Every outcome is written back to the cache and flushed before returning, so
// a crash loses at most the title in flight.
func (s *Service) resolve(ctx context.Context, key, rawTitle string) CacheEntry {
	entry, cached := s.cache.Get(key)
	if cached && entry.Status() != StatusUnresolved {
		return entry
	}

	if entry.ID == 0 && !entry.APIError {
		s.searchCatalog(ctx, key, &entry)
	}

	if entry.ID > 0 && !entry.LetterboxdAttempted {
		title, err := s.lbxd.englishTitle(ctx, entry.ID)
		if err != nil {
			// A failed scrape is not an error state for the title; we just
			// don't get an English title from this source.
			log.Printf("[enrich] letterboxd scrape for %q (tmdb %d): %v", key, entry.ID, err)
		} else if title != "" {
			entry.LetterboxdEnglishTitle = title
		}
		entry.LetterboxdAttempted = true
	}

	if entry.ID == 0 {
		entry.EigaSearchLink = eigaSearchLink(rawTitle)
		if s.gemini.isConfigured() && entry.GeminiEnglishTitle == "" {
			title, err := s.gemini.englishTitle(ctx, rawTitle)
			if err != nil {
				log.Printf("[enrich] gemini fallback for %q: %v", key, err)
			} else if title != "" {
				entry.GeminiEnglishTitle = title
			}
		}
	}

	s.cache.Put(key, entry)
	if err := s.cache.Flush(); err != nil {
		log.Printf("[cache] flush: %v", err)
	}
	return entry
}

// searchCatalog performs the TMDB leg: search in the source language, then
// English-locale details, then alternative titles when the display title still
// looks non-Latin. Only the search itself marks the entry as errored; a failed
// details or alternative-titles call degrades to the search result's titles.
func (s *Service) searchCatalog(ctx context.Context, key string, entry *CacheEntry) {
	yearHint, _ := ExtractYearHint(key)
	match, err := s.tmdb.searchMovie(ctx, key, yearHint)
	if err != nil {
		log.Printf("[enrich] tmdb search for %q: %v", key, err)
		entry.APIError = true
		return
	}
	if match == nil {
		return
	}

	entry.ID = match.ID
	entry.TMDBTitle = match.Title
	entry.TMDBOriginalTitle = match.OriginalTitle

	details, err := s.tmdb.movieDetails(ctx, match.ID)
	if err != nil {
		log.Printf("[enrich] tmdb details for %q (id %d): %v", key, match.ID, err)
		return
	}
	if details.Title != "" {
		entry.TMDBTitle = details.Title
	}
	if details.OriginalTitle != "" {
		entry.TMDBOriginalTitle = details.OriginalTitle
	}

	if isMostlyLatin(entry.TMDBTitle) {
		return
	}
	alts, err := s.tmdb.alternativeTitles(ctx, match.ID)
	if err != nil {
		log.Printf("[enrich] tmdb alternative titles for %q (id %d): %v", key, match.ID, err)
		return
	}
	if alt := pickLatinAlternative(alts, entry.TMDBTitle); alt != "" {
		entry.TMDBTitle = alt
	}
}

// applyEntry copies the resolved fields onto one record. TMDB-matched titles
// get the letterboxd pair; everything else gets the fallback pair. The two are
// mutually exclusive by construction.
func applyEntry(rec *models.ShowingRecord, entry CacheEntry) {
	if entry.ID > 0 {
		rec.LetterboxdLink = letterboxdLink(entry.ID)
		rec.TMDBDisplayTitle = entry.TMDBTitle
		rec.TMDBOriginalTitle = entry.TMDBOriginalTitle
		rec.LetterboxdEnglishTitle = entry.LetterboxdEnglishTitle
		return
	}
	rec.EigaSearchLink = entry.EigaSearchLink
	rec.GeminiEnglishTitle = entry.GeminiEnglishTitle
}
