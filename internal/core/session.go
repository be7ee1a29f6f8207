package core

import "time"

// Session represents one registered logical user on one connection.
type Session struct {
	ConnID      string
	UserID      string
	DisplayName string
	// CurrentRoom is the most recently joined room, "" when none.
	// A user can be a member of several rooms at once; presence status
	// reflects only this one.
	CurrentRoom string
	JoinedAt    time.Time
}
