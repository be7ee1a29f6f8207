package core

import (
	"sort"
	"time"
)

// Presence status values derived from a session's current room.
const (
	StatusInChat    = "in-chat"
	StatusAvailable = "available"
)

// PresenceEntry is one user's row in the global presence snapshot.
type PresenceEntry struct {
	UserID      string
	DisplayName string
	JoinedAt    time.Time
	Room        string
	Status      string
}

// Snapshot recomputes the full presence view from the live sessions,
// sorted by userId. Presence is always rebuilt from scratch rather than
// patched incrementally; the set is bounded by the connection count.
func (r *Registry) Snapshot() []PresenceEntry {
	out := make([]PresenceEntry, 0, len(r.sessions))
	for _, sess := range r.sessions {
		status := StatusAvailable
		if sess.CurrentRoom != "" {
			status = StatusInChat
		}
		out = append(out, PresenceEntry{
			UserID:      sess.UserID,
			DisplayName: sess.DisplayName,
			JoinedAt:    sess.JoinedAt,
			Room:        sess.CurrentRoom,
			Status:      status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
