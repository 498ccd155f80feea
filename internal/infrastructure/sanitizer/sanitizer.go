// Package sanitizer shrinks context text before it is sent to a model:
// whitespace is collapsed, punctuation and stop-words are dropped and the
// remaining tokens are counted against a budget. Text is never truncated.
package sanitizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/segment"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Result of one Clean call.
type Result struct {
	Text          string
	ExceedsBudget bool
	TokenCount    int
}

// Sanitizer cleans text and counts model tokens.
type Sanitizer struct {
	counter TokenCounter
}

// New returns a Sanitizer. A nil counter selects DefaultCounter.
func New(counter TokenCounter) *Sanitizer {
	if counter == nil {
		counter = DefaultCounter()
	}
	return &Sanitizer{counter: counter}
}

// Clean normalizes text for languageCode and reports its token count.
// A budget of zero or less disables the budget check.
func (s *Sanitizer) Clean(text, languageCode string, tokenBudget int) Result {
	normalized := NormalizeWhitespace(text)
	if normalized == "" {
		return Result{}
	}

	lang := strings.ToLower(strings.TrimSpace(languageCode))
	stop := stopWords[lang]
	lower := cases.Lower(language.Make(lang))

	tokens := Tokenize(normalized, lang)
	kept := tokens[:0]
	for _, tok := range tokens {
		if stop != nil && stop[lower.String(tok)] {
			continue
		}
		kept = append(kept, tok)
	}

	cleaned := strings.Join(kept, " ")
	count := s.counter.Count(cleaned)
	return Result{
		Text:          cleaned,
		ExceedsBudget: tokenBudget > 0 && count > tokenBudget,
		TokenCount:    count,
	}
}

// Count returns the token count of text as is.
func (s *Sanitizer) Count(text string) int {
	return s.counter.Count(text)
}

// NormalizeWhitespace collapses every whitespace run into one space.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Tokenize splits text into alphanumeric words. Languages with stop-word
// lists use Unicode word segmentation, everything else a plain
// letter/digit boundary split.
func Tokenize(text, lang string) []string {
	if _, ok := stopWords[lang]; !ok {
		return strings.FieldsFunc(text, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
	}

	var tokens []string
	seg := segment.NewWordSegmenter(strings.NewReader(text))
	for seg.Segment() {
		if seg.Type() == segment.None {
			continue
		}
		word := string(seg.Bytes())
		if elisionLanguages[lang] {
			word = stripElision(word)
		}
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	if seg.Err() != nil {
		// segmentation only fails on reader errors; keep the fallback split
		return Tokenize(text, "")
	}
	return tokens
}

var elisionLanguages = map[string]bool{"fr": true, "it": true}

// stripElision drops an elided article or pronoun: "l'homme" -> "homme".
func stripElision(word string) string {
	idx := strings.IndexAny(word, "'’")
	if idx <= 0 || idx > 3 {
		return word
	}
	_, size := utf8.DecodeRuneInString(word[idx:])
	return word[idx+size:]
}
