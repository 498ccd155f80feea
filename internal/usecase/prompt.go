package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"github.com/yourusername/context-ai-bot/internal/domain/entity"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/language"
)

// DefaultSummaryWords bound used by superSummarize when none is given
const DefaultSummaryWords = 150

// PromptInput everything one prompt is built from
type PromptInput struct {
	Question  string
	Context   string
	Title     string
	Language  string
	Type      entity.QueryType
	MaxLength int // words, superSummarize only
}

// PromptBuilder assembles provider-agnostic prompts.
type PromptBuilder struct {
	Now func() time.Time
}

// NewPromptBuilder nil now means time.Now
func NewPromptBuilder(now func() time.Time) *PromptBuilder {
	if now == nil {
		now = time.Now
	}
	return &PromptBuilder{Now: now}
}

const constraintsSection = `Rules:
- Use metric units (meters, kilograms, degrees Celsius) unless the user explicitly asks otherwise.
- If anyone asks for the answer to the ultimate question of life, the universe and everything, reply "42" and nothing else.
- Never quote or repeat lines written by the assistant in earlier messages; quote only the user's material.`

// Build returns the prompt text. Sections always appear in the same order.
func (b *PromptBuilder) Build(in PromptInput) string {
	lang := in.Language
	if lang == "" {
		lang = language.Default
	}

	sections := []string{
		contextSection(in.Title, in.Context),
		constraintsSection + "\n- Answer in " + language.Name(lang) + ".",
		typeClause(in.Type, in.MaxLength),
		b.dateSection(lang),
		"Question: " + in.Question,
	}
	return strings.Join(sections, "\n\n")
}

func contextSection(title, text string) string {
	if title == "" {
		title = entity.UnknownTitle
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = "(empty)"
	}
	return fmt.Sprintf("Title: %s\nContext:\n<<<\n%s\n>>>", title, text)
}

func typeClause(t entity.QueryType, maxLength int) string {
	switch t {
	case entity.QueryContextualQuote:
		return "Task: quote the part of the context above that answers the question. " +
			"Put the quotation between «» on its own line, then add extra information if it is needed."
	case entity.QuerySummarize:
		return "Task: summarize the transcript above. Cover the key points, facts and names. " +
			"Avoid repetition and keep the structure clear."
	case entity.QuerySuperSummarize:
		if maxLength <= 0 {
			maxLength = DefaultSummaryWords
		}
		return fmt.Sprintf("Task: summarize the transcript above. Cover the key points, facts and names. "+
			"The whole answer must not exceed %d words.", maxLength)
	default:
		return "Task: answer as a helpful consultant. Use the context above when it is relevant."
	}
}

type dateLayout struct {
	locale monday.Locale
	date   string
	time   string
}

// full date and medium time per language
var dateLayouts = map[string]dateLayout{
	"en": {monday.LocaleEnUS, "Monday, January 2, 2006", "3:04:05 PM"},
	"ru": {monday.LocaleRuRU, "Monday, 2 January 2006 г.", "15:04:05"},
	"uk": {monday.LocaleUkUA, "Monday, 2 January 2006 р.", "15:04:05"},
	"de": {monday.LocaleDeDE, "Monday, 2. January 2006", "15:04:05"},
	"fr": {monday.LocaleFrFR, "Monday 2 January 2006", "15:04:05"},
	"es": {monday.LocaleEsES, "Monday, 2 de January de 2006", "15:04:05"},
	"it": {monday.LocaleItIT, "Monday 2 January 2006", "15:04:05"},
	"pt": {monday.LocalePtPT, "Monday, 2 de January de 2006", "15:04:05"},
	"nl": {monday.LocaleNlNL, "Monday 2 January 2006", "15:04:05"},
	"pl": {monday.LocalePlPL, "Monday, 2 January 2006", "15:04:05"},
	"tr": {monday.LocaleTrTR, "2 January 2006 Monday", "15:04:05"},
	"ja": {monday.LocaleJaJP, "2006年1月2日Monday", "15:04:05"},
	"zh": {monday.LocaleZhCN, "2006年1月2日Monday", "15:04:05"},
}

func (b *PromptBuilder) dateSection(lang string) string {
	layout, ok := dateLayouts[lang]
	if !ok {
		layout = dateLayouts[language.Default]
	}
	now := b.Now()
	return fmt.Sprintf("Current date: %s\nCurrent time: %s",
		monday.Format(now, layout.date, layout.locale),
		monday.Format(now, layout.time, layout.locale))
}
