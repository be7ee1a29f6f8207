package core

import "time"

// Message is the domain model for a chat message. Immutable once appended
// to a room's history.
type Message struct {
	ID        string
	Room      string
	From      string // sender userId
	FromName  string // sender display name at send time
	Text      string
	CreatedAt time.Time
}
