package core

import (
	"sort"
	"time"
)

// Room groups members of the same chat context and holds its bounded
// message history.
type Room struct {
	Name      string
	CreatedAt time.Time

	members  map[string]struct{}
	messages []Message
	limit    int
}

// NewRoom constructs an empty room with the given history cap.
func NewRoom(name string, limit int) *Room {
	return &Room{
		Name:      name,
		CreatedAt: time.Now(),
		members:   make(map[string]struct{}),
		messages:  make([]Message, 0, 64),
		limit:     limit,
	}
}

// AddMember inserts a userId into the room. Returns true if newly added.
func (r *Room) AddMember(userID string) bool {
	if _, exists := r.members[userID]; exists {
		return false
	}
	r.members[userID] = struct{}{}
	return true
}

// RemoveMember deletes a userId from the room. Returns true if removed.
func (r *Room) RemoveMember(userID string) bool {
	if _, exists := r.members[userID]; !exists {
		return false
	}
	delete(r.members, userID)
	return true
}

// HasMember reports whether the userId is a member of the room.
func (r *Room) HasMember(userID string) bool {
	_, ok := r.members[userID]
	return ok
}

// Members returns the member userIds, sorted.
func (r *Room) Members() []string {
	out := make([]string, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MemberCount returns the number of members.
func (r *Room) MemberCount() int {
	return len(r.members)
}

// Empty returns true if no members remain in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}

// Append stores a message, evicting from the front when the history cap
// is exceeded.
func (r *Room) Append(msg Message) {
	r.messages = append(r.messages, msg)
	if r.limit > 0 && len(r.messages) > r.limit {
		excess := len(r.messages) - r.limit
		r.messages = r.messages[excess:]
	}
}

// Recent returns a copy of the last n messages in arrival order.
func (r *Room) Recent(n int) []Message {
	if n <= 0 || len(r.messages) == 0 {
		return nil
	}
	if n > len(r.messages) {
		n = len(r.messages)
	}
	out := make([]Message, n)
	copy(out, r.messages[len(r.messages)-n:])
	return out
}

// MessageCount returns the number of stored messages.
func (r *Room) MessageCount() int {
	return len(r.messages)
}

// RoomStore lazily creates rooms by id. Like the registry it is owned by
// the hub goroutine.
type RoomStore struct {
	rooms map[string]*Room
	limit int
}

// NewRoomStore constructs an empty store with the given per-room history cap.
func NewRoomStore(historyLimit int) *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*Room),
		limit: historyLimit,
	}
}

// GetOrCreate returns the existing room or creates an empty one.
func (s *RoomStore) GetOrCreate(name string) *Room {
	if r, ok := s.rooms[name]; ok {
		return r
	}
	r := NewRoom(name, s.limit)
	s.rooms[name] = r
	return r
}

// Get returns a room or nil if it does not exist.
func (s *RoomStore) Get(name string) *Room {
	return s.rooms[name]
}

// DeleteIfEmpty removes the room only when it still exists and has no
// members. Returns true if the room was deleted.
func (s *RoomStore) DeleteIfEmpty(name string) bool {
	r, ok := s.rooms[name]
	if !ok || !r.Empty() {
		return false
	}
	delete(s.rooms, name)
	return true
}

// Len returns the number of rooms.
func (s *RoomStore) Len() int {
	return len(s.rooms)
}

// All returns every room, sorted by name.
func (s *RoomStore) All() []*Room {
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
