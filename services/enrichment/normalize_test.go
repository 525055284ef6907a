package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain japanese", "ある日の午後", "ある日の午後"},
		{"plain latin", "PERFECT DAYS", "PERFECT DAYS"},
		{"leading fullwidth bracket", "（字幕版）ある日の午後", "ある日の午後"},
		{"trailing fullwidth bracket", "ある日の午後（字幕版）", "ある日の午後"},
		{"stacked brackets", "【4K】（字幕版）タイトル", "タイトル"},
		{"fullwidth 4k prefix", "４Kレストア版 ある日の午後", "ある日の午後"},
		{"digital remaster", "七人の侍 4Kデジタルリマスター版", "七人の侍"},
		{"talk event tail", "羅生門 ★上映後トーク付", "羅生門"},
		{"release tail", "アンダーグラウンド 劇場公開版", "アンダーグラウンド"},
		{"decoration only", "（字幕版）", ""},
		{"fullwidth space collapse", "男はつらいよ　寅次郎恋歌", "男はつらいよ 寅次郎恋歌"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.in))
		})
	}
}

// Normalization is used as a cache key, so it has to be a fixed point:
// running it twice must give the same answer as running it once.
func TestNormalizeTitleIdempotent(t *testing.T) {
	inputs := []string{
		"（字幕版）ある日の午後",
		"【4K】（字幕版）タイトル",
		"４Kレストア版 ある日の午後",
		"羅生門 ★上映後トーク付",
		"PERFECT DAYS",
		"男はつらいよ　寅次郎恋歌",
		"",
	}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		assert.Equal(t, once, NormalizeTitle(once), "input %q", in)
	}
}

func TestExtractYearHint(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"アンダーグラウンド 1995", 1995, true},
		{"2001年宇宙の旅", 2001, true},
		{"ある日の午後", 0, false},
		{"1899", 0, false},
		{"2077", 0, false},
	}
	for _, tt := range tests {
		got, ok := ExtractYearHint(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestIsMostlyLatin(t *testing.T) {
	assert.True(t, isMostlyLatin("Rashomon"))
	assert.True(t, isMostlyLatin("Perfect Days 2023"))
	assert.False(t, isMostlyLatin("羅生門"))
	assert.False(t, isMostlyLatin("Ran 乱とその時代"))
	assert.False(t, isMostlyLatin(""))
	assert.False(t, isMostlyLatin("1234"))
}
