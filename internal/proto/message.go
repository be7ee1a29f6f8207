package proto

import "encoding/json"

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeRegister    = "register"
	InboundTypeJoin        = "join"
	InboundTypeSend        = "send"
	InboundTypeLeave       = "leave"
	InboundTypeTypingStart = "typing-start"
	InboundTypeTypingStop  = "typing-stop"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Outbound event names.
const (
	EventRegistrationConfirmed = "registration-confirmed"
	EventPresenceSnapshot      = "presence-snapshot"
	EventRoomHistory           = "room-history"
	EventJoinConfirmed         = "join-confirmed"
	EventMemberJoined          = "member-joined"
	EventMemberLeft            = "member-left"
	EventMessage               = "message"
	EventTyping                = "typing"
	EventTypingStopped         = "typing-stopped"
)

// RegisterData binds a caller-supplied identity to the connection.
type RegisterData struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
}

// JoinData requests to join a specific room. TargetUserID is informative
// only; callers use it client-side to derive canonical two-party room ids.
type JoinData struct {
	Room         string `json:"roomId"`
	UserID       string `json:"userId,omitempty"`
	TargetUserID string `json:"targetUserId,omitempty"`
}

// SendData is a chat message from the client. Timestamp is unix
// milliseconds; zero means the server assigns one.
type SendData struct {
	Room      string `json:"roomId"`
	MessageID string `json:"messageId,omitempty"`
	Text      string `json:"text"`
	Sender    string `json:"senderUserId"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// LeaveData requests to leave a room.
type LeaveData struct {
	Room   string `json:"roomId"`
	UserID string `json:"userId,omitempty"`
}

// TypingData scopes a typing notification to a room.
type TypingData struct {
	Room string `json:"roomId"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// RegistrationConfirmed acknowledges a register event.
type RegistrationConfirmed struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	ServerTime  int64  `json:"serverTime"`
}

// PresenceUser is one row of the presence snapshot.
type PresenceUser struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	JoinedAt    int64  `json:"joinedAt"`
	RoomID      string `json:"currentRoomId,omitempty"`
	Status      string `json:"status"`
}

// PresenceSnapshot is the full computed presence view plus its count.
type PresenceSnapshot struct {
	Users []PresenceUser `json:"users"`
	Count int            `json:"count"`
}

// EventMessageData is a chat message as delivered to clients.
type EventMessageData struct {
	MessageID  string `json:"messageId"`
	Text       string `json:"text"`
	Sender     string `json:"senderUserId"`
	SenderName string `json:"senderDisplayName"`
	Timestamp  int64  `json:"timestamp"`
	Room       string `json:"roomId"`
}

// RoomHistory replays recent messages to a joining client.
type RoomHistory struct {
	Room     string             `json:"roomId"`
	Messages []EventMessageData `json:"messages"`
}

// JoinConfirmed acknowledges a join to the caller.
type JoinConfirmed struct {
	Room         string   `json:"roomId"`
	Members      []string `json:"members"`
	MessageCount int      `json:"messageCount"`
}

// MemberChange notifies room members about a join or leave.
type MemberChange struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Room        string `json:"roomId"`
	Timestamp   int64  `json:"timestamp"`
}

// TypingNotice notifies room members about typing activity.
type TypingNotice struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Room        string `json:"roomId"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
