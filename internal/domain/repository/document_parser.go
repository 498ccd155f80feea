package repository

import "context"

// DocumentParser turns a local document into plain text
type DocumentParser interface {
	// Extensions lists the lower-case file extensions handled, dot included.
	Extensions() []string

	// ParseFile reads the document at path.
	ParseFile(ctx context.Context, path string) (string, error)
}
