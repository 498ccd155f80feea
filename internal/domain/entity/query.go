package entity

import (
	"fmt"
	"strings"
)

// QueryType prompt instruction mode
type QueryType int

const (
	QueryGeneral QueryType = iota
	QueryContextualQuote
	QuerySummarize
	QuerySuperSummarize
)

func (q QueryType) String() string {
	switch q {
	case QueryGeneral:
		return "general"
	case QueryContextualQuote:
		return "contextual_quote"
	case QuerySummarize:
		return "summarize"
	case QuerySuperSummarize:
		return "super_summarize"
	default:
		return fmt.Sprintf("query(%d)", int(q))
	}
}

// RequiresContext reports whether answering needs a stored context.
func (q QueryType) RequiresContext() bool {
	return q != QueryGeneral
}

// ModelName identifies a response provider.
type ModelName string

const (
	ModelRemote ModelName = "remote"
	ModelLocal  ModelName = "local"
)

// ModelNames lists the recognized provider identifiers.
var ModelNames = []ModelName{ModelRemote, ModelLocal}

// ParseModelName validates a provider identifier.
func ParseModelName(s string) (ModelName, error) {
	name := ModelName(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ModelNames {
		if name == known {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidModelName, s)
}
