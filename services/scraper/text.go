package scraper

import (
	"regexp"
	"strings"
)

var spaceRun = regexp.MustCompile(`\s+`)

// collapseSpaces trims and squeezes whitespace runs (including full-width
// spaces) down to single ASCII spaces.
func collapseSpaces(s string) string {
	s = strings.ReplaceAll(s, "　", " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// timePattern matches an HH:MM showtime anywhere in a text blob.
var timePattern = regexp.MustCompile(`\d{1,2}:\d{2}`)

// quotedTitle extracts the film title from 『…』 quoting, common on Japanese
// cinema sites for the actual film inside a programme or retrospective label.
var quotedTitle = regexp.MustCompile(`『([^』]+)』`)

func extractQuotedTitle(s string) string {
	m := quotedTitle.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
