package enrichment

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Title normalization turns a decorated marquee title ("４Kレストア版 ある日の午後
// （字幕版）") into a search-friendly key. The result doubles as the cache and
// dedup key, so it must be deterministic and a stable fixed point:
// normalizing an already-normalized title changes nothing.

// leadingBracket / trailingBracket match one bracketed annotation hugging the
// title edge; both ASCII and full-width bracket pairs appear in the wild.
var (
	leadingBracket  = regexp.MustCompile(`^[\[({【（［][^\])}】）］]*[\])}】）］]`)
	trailingBracket = regexp.MustCompile(`[\[({【（［][^\])}】）］]*[\])}】）］]$`)
)

// suffixPatterns is the fixed list of promotional and technical phrases removed
// from titles before search. Patterns are matched case-insensitively against the
// width-folded title, so only the half-width form of each phrase is listed.
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)★トークショー付き`),
	regexp.MustCompile(`(?i)35mmフィルム上映`),
	regexp.MustCompile(`(?i)4Kレストア5\.1chヴァージョン`),
	regexp.MustCompile(`(?i)4Kデジタルリマスター版`),
	regexp.MustCompile(`(?i)4Kレストア版`),
	regexp.MustCompile(`(?i)4Kレーザー上映`),
	regexp.MustCompile(`(?i)4K版`),
	regexp.MustCompile(`(?i)4K`),
	regexp.MustCompile(`\(字幕版\)`),
	regexp.MustCompile(`\(字幕\)`),
	regexp.MustCompile(`\(吹替版\)`),
	regexp.MustCompile(`\(吹替\)`),
	regexp.MustCompile(`(?i)\s*THE MOVIE$`),
	regexp.MustCompile(`\[受賞感謝上映\]`),
	regexp.MustCompile(`★上映後トーク付`),
	regexp.MustCompile(`トークイベント付き`),
	regexp.MustCompile(`(?i)vol\.\s*\d+`),
	regexp.MustCompile(`\[[^\]]*イベント\]`),
	regexp.MustCompile(`ライブ音響上映`),
	regexp.MustCompile(`特別音響上映`),
	regexp.MustCompile(`字幕付き上映`),
	regexp.MustCompile(`デジタルリマスター版`),
	regexp.MustCompile(`完成披露試写会`),
	regexp.MustCompile(`(?i)Blu-ray発売記念上映`),
	regexp.MustCompile(`公開記念舞台挨拶`),
	regexp.MustCompile(`上映後舞台挨拶`),
	regexp.MustCompile(`初日舞台挨拶`),
	regexp.MustCompile(`2日目舞台挨拶`),
	regexp.MustCompile(`トークショー`),
	regexp.MustCompile(`一挙上映`),
}

// releaseTail catches "○○公開版" style tails (katakana/cyrillic/kanji run
// followed by 公開版) that some rep houses append for anniversary releases.
var releaseTail = regexp.MustCompile(`\s*[ァ-ヶーА-я一-龠々]+公開版$`)

// edgePunct trims leading/trailing runs of anything that is not a letter,
// digit, apostrophe or double quote.
var (
	leadingPunct  = regexp.MustCompile(`^[^\p{L}\p{N}'"]+`)
	trailingPunct = regexp.MustCompile(`[^\p{L}\p{N}'"]+$`)
	multiSpace    = regexp.MustCompile(`\s{2,}`)
)

// NormalizeTitle cleans a raw title for catalog search. An empty result means
// the title was decoration all the way down and the caller should skip
// enrichment for it.
func NormalizeTitle(raw string) string {
	// Fold full-width ASCII (４Ｋ → 4K, ＴＨＥ → THE) and half-width katakana to
	// their canonical forms so the suffix list only needs one spelling each.
	t := width.Fold.String(strings.TrimSpace(raw))

	// Peel bracketed annotations off both edges until none remain. The loop
	// (rather than a fixed number of passes) is what makes normalization a
	// stable fixed point when annotations stack: 【4K】（字幕版）タイトル.
	for {
		stripped := strings.TrimSpace(leadingBracket.ReplaceAllString(t, ""))
		stripped = strings.TrimSpace(trailingBracket.ReplaceAllString(stripped, ""))
		if stripped == t {
			break
		}
		t = stripped
	}

	for _, re := range suffixPatterns {
		t = strings.TrimSpace(re.ReplaceAllString(t, ""))
	}
	t = strings.TrimSpace(releaseTail.ReplaceAllString(t, ""))

	if t != "" {
		t = leadingPunct.ReplaceAllString(t, "")
		t = trailingPunct.ReplaceAllString(t, "")
		t = strings.ReplaceAll(t, "　", " ")
		t = multiSpace.ReplaceAllString(t, " ")
	}
	return strings.TrimSpace(t)
}

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// ExtractYearHint pulls a plausible release year out of a raw title
// ("アンダーグラウンド 1995年公開版" → 1995) for use as a search hint.
func ExtractYearHint(raw string) (int, bool) {
	m := yearPattern.FindString(raw)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil || year < 1900 || year > 2029 {
		return 0, false
	}
	return year, true
}

// isMostlyLatin reports whether more than half of a title's letter runes are
// Latin script. Digits and punctuation don't vote, so "Ran 乱" and "乱" land on
// opposite sides. The exact threshold is a heuristic, not a contract.
func isMostlyLatin(s string) bool {
	var letters, latin int
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Latin, r) {
			latin++
		}
	}
	if letters == 0 {
		return false
	}
	return latin*2 > letters
}
