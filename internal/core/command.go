package core

import "time"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandRegister binds a userId to the connection.
	CommandRegister CommandKind = iota
	// CommandJoinRoom subscribes the client to a room.
	CommandJoinRoom
	// CommandSendRoomMessage delivers a chat message to room members.
	CommandSendRoomMessage
	// CommandLeaveRoom unsubscribes the client from a room.
	CommandLeaveRoom
	// CommandTypingStart notifies room members that the user is typing.
	CommandTypingStart
	// CommandTypingStop clears a typing notification.
	CommandTypingStop
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Room string
	// User and Name carry the caller-supplied identity for register;
	// User doubles as senderUserId on send.
	User string
	Name string
	// MessageID, Text and At are set for send commands. A zero At means
	// the server assigns the timestamp.
	MessageID string
	Text      string
	At        time.Time
}
