// Package language decides which language a piece of text is written in.
//
// Script detection wins over statistical detection: a text that contains
// letters of a script tied to one language (Cyrillic, Hangul, Kana ...) is
// attributed to that language without consulting the n-gram model. Latin
// text goes through whatlanggo and falls back to Default when the guess is
// unreliable or not a supported language.
package language

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default is used whenever no language can be determined.
const Default = "en"

// minScriptLetters letters of a script needed before the script counts
const minScriptLetters = 2

type scriptLanguage struct {
	table *unicode.RangeTable
	code  string
}

// Order matters: Kana must be checked before Han so Japanese is not read as Chinese.
var scriptLanguages = []scriptLanguage{
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Hangul, "ko"},
	{unicode.Han, "zh"},
	{unicode.Cyrillic, "ru"},
	{unicode.Greek, "el"},
	{unicode.Arabic, "ar"},
	{unicode.Hebrew, "he"},
	{unicode.Devanagari, "hi"},
	{unicode.Thai, "th"},
	{unicode.Georgian, "ka"},
	{unicode.Armenian, "hy"},
}

// supported languages the statistical detector may return
var supported = map[string]bool{
	"en": true, "ru": true, "uk": true, "de": true, "fr": true, "es": true,
	"it": true, "pt": true, "nl": true, "pl": true, "tr": true,
}

// DetectScript returns the language implied by a non-Latin script in text.
func DetectScript(text string) (string, bool) {
	counts := make([]int, len(scriptLanguages))
	for _, r := range text {
		if !unicode.IsLetter(r) || r < 0x80 {
			continue
		}
		for i, sl := range scriptLanguages {
			if unicode.Is(sl.table, r) {
				counts[i]++
				break
			}
		}
	}

	// Kana anywhere marks Japanese even when Han dominates.
	if counts[0]+counts[1] >= minScriptLetters {
		return "ja", true
	}
	best, bestCount := -1, 0
	for i, c := range counts {
		if c > bestCount {
			best, bestCount = i, c
		}
	}
	if best < 0 || bestCount < minScriptLetters {
		return "", false
	}
	return scriptLanguages[best].code, true
}

// Detect returns a two-letter language code for text, Default when unsure.
func Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return Default
	}
	if code, ok := DetectScript(text); ok {
		return code
	}

	if strings.IndexFunc(text, unicode.IsLetter) < 0 {
		return Default
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return Default
	}
	if code := info.Lang.Iso6391(); supported[code] {
		return code
	}
	return Default
}

// Normalize validates a user-supplied language and reduces it to its base code.
func Normalize(code string) (string, bool) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	return base.String(), true
}

// Name returns the English name of a language code, or the code itself.
func Name(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
