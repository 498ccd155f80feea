package entity

import "time"

// UnknownTitle is used when a context has no stored title.
const UnknownTitle = "Unknown Title"

// UserContext the text a user's answers are grounded on
type UserContext struct {
	UserID          int64
	Transcript      string
	Title           string
	Language        string
	ContinueContext bool
	UpdatedAt       time.Time
}

// HasText reports whether any context text is stored.
func (c *UserContext) HasText() bool {
	return c != nil && c.Transcript != ""
}

// ContextUpdate partial update of a UserContext. Nil fields keep the stored value.
type ContextUpdate struct {
	Transcript      *string
	Title           *string
	Language        *string
	ContinueContext *bool
}

// Apply merges the update into c.
func (u ContextUpdate) Apply(c *UserContext) {
	if u.Transcript != nil {
		c.Transcript = *u.Transcript
	}
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.Language != nil {
		c.Language = *u.Language
	}
	if u.ContinueContext != nil {
		c.ContinueContext = *u.ContinueContext
	}
}

// String returns a pointer to s, for building a ContextUpdate.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building a ContextUpdate.
func Bool(b bool) *bool { return &b }
