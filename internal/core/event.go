package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRegistered confirms a successful registration to the caller.
	EventRegistered EventKind = iota
	// EventPresence carries the full presence snapshot.
	EventPresence
	// EventHistory delivers recent message history upon joining a room.
	EventHistory
	// EventJoinConfirmed confirms a join to the caller.
	EventJoinConfirmed
	// EventMemberJoined notifies room members about a user joining.
	EventMemberJoined
	// EventMemberLeft notifies room members about a user leaving.
	EventMemberLeft
	// EventRoomMessage notifies members about a chat message in a room.
	EventRoomMessage
	// EventTyping notifies room members that a user started typing.
	EventTyping
	// EventTypingStopped notifies room members that a user stopped typing.
	EventTypingStopped
	// EventError notifies the caller about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind EventKind
	Room string
	User string
	Name string
	At   time.Time

	Message      Message
	Messages     []Message       // for EventHistory
	Members      []string        // for EventJoinConfirmed
	MessageCount int             // for EventJoinConfirmed
	Users        []PresenceEntry // for EventPresence
	Error        *CoreError      // for EventError
}
