package entity

import "time"

// Origin who authored a logged message
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// Valid reports whether o is a known origin.
func (o Origin) Valid() bool {
	return o == OriginUser || o == OriginAssistant
}

// MessageLogEntry domain entity, append-only per user
type MessageLogEntry struct {
	ID        string
	UserID    int64
	Text      string
	Origin    Origin
	Timestamp time.Time
}
