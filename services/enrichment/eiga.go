package enrichment

import (
	"net/url"

	"tokyokino/utils"
)

const eigaSearchBaseURL = "https://eiga.com/search/"

// eigaSearchLink builds the deterministic eiga.com search URL for a raw title.
// Pure URL construction, no network call; this is the floor of the fallback
// chain, so a no-match title always leaves the pipeline with at least a place
// for a human to keep looking.
func eigaSearchLink(originalTitle string) string {
	if originalTitle == "" {
		return ""
	}
	encoded, err := utils.EncodeURLWithSpaces(eigaSearchBaseURL + originalTitle)
	if err != nil {
		// Titles with characters url.Parse rejects fall back to path escaping.
		return eigaSearchBaseURL + url.PathEscape(originalTitle)
	}
	return encoded
}
