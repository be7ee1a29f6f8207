package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Options tunes hub behavior.
type Options struct {
	// HistoryLimit caps stored messages per room (FIFO eviction).
	HistoryLimit int
	// HistoryReplay is how many recent messages a joining client receives.
	HistoryReplay int
	// RoomGrace is how long an empty room survives before deletion.
	RoomGrace time.Duration
}

func (o *Options) defaults() {
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = 1000
	}
	if o.HistoryReplay <= 0 {
		o.HistoryReplay = 50
	}
	if o.RoomGrace <= 0 {
		o.RoomGrace = 30 * time.Second
	}
}

// RoomSummary is a point-in-time view of a room for the status surface.
type RoomSummary struct {
	Name      string
	Members   int
	Messages  int
	CreatedAt time.Time
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// Hub coordinates connections, registrations, rooms and presence. All
// shared state lives behind a single event loop: every command, attach,
// detach and cleanup expiry is serialized through Run, so mutations to
// the registry and any one room never interleave.
type Hub struct {
	opts     Options
	registry *Registry
	rooms    *RoomStore
	clients  map[string]*Client // connID -> client

	attach   chan *Client
	detach   chan *Client
	commands chan clientCommand
	sweeps   chan string
	queries  chan func()
	done     chan struct{}
}

// NewHub creates a hub with the given options.
func NewHub(opts Options) *Hub {
	opts.defaults()
	return &Hub{
		opts:     opts,
		registry: NewRegistry(),
		rooms:    NewRoomStore(opts.HistoryLimit),
		clients:  make(map[string]*Client),
		attach:   make(chan *Client),
		detach:   make(chan *Client),
		commands: make(chan clientCommand),
		sweeps:   make(chan string, 16),
		queries:  make(chan func()),
		done:     make(chan struct{}),
	}
}

// RegisterClient attaches a connection to the hub and starts consuming
// its commands. The client is not yet a registered user; that happens
// when it issues a register command.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.attach <- c:
	case <-h.done:
	}
}

// UnregisterClient detaches a connection, treated as an implicit
// disconnect. Safe to call for a client that was never attached or was
// already detached.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.detach <- c:
	case <-h.done:
	}
}

// Run processes hub events until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.attach:
			h.handleAttach(c)
		case c := <-h.detach:
			h.handleDetach(c)
		case cc := <-h.commands:
			h.dispatch(cc.client, cc.cmd)
		case room := <-h.sweeps:
			h.rooms.DeleteIfEmpty(room)
		case q := <-h.queries:
			q()
		}
	}
}

// PresenceSnapshot returns the current presence view, computed on the
// hub loop so it never observes a half-applied mutation.
func (h *Hub) PresenceSnapshot(ctx context.Context) ([]PresenceEntry, error) {
	var snap []PresenceEntry
	err := h.query(ctx, func() { snap = h.registry.Snapshot() })
	return snap, err
}

// RoomSummaries returns a summary of every live room.
func (h *Hub) RoomSummaries(ctx context.Context) ([]RoomSummary, error) {
	var out []RoomSummary
	err := h.query(ctx, func() {
		for _, r := range h.rooms.All() {
			out = append(out, RoomSummary{
				Name:      r.Name,
				Members:   r.MemberCount(),
				Messages:  r.MessageCount(),
				CreatedAt: r.CreatedAt,
			})
		}
	})
	return out, err
}

func (h *Hub) query(ctx context.Context, fn func()) error {
	ready := make(chan struct{})
	wrapped := func() {
		fn()
		close(ready)
	}
	select {
	case h.queries <- wrapped:
	case <-h.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) handleAttach(c *Client) {
	h.clients[c.ConnID] = c
	go h.pump(c)
}

func (h *Hub) pump(c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			if cmd == nil {
				return
			}
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-c.closed:
				return
			case <-h.done:
				return
			}
		case <-c.closed:
			return
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleDetach(c *Client) {
	if _, ok := h.clients[c.ConnID]; !ok {
		return
	}
	delete(h.clients, c.ConnID)
	close(c.closed)

	sess := h.registry.Remove(c.ConnID)
	if sess == nil {
		return
	}
	if sess.CurrentRoom != "" {
		if room := h.rooms.Get(sess.CurrentRoom); room != nil && room.RemoveMember(sess.UserID) {
			h.notifyMemberChange(room, sess, EventMemberLeft)
			if room.Empty() {
				h.scheduleSweep(room.Name)
			}
		}
	}
	h.broadcastPresence()
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	if cmd.Kind == CommandRegister {
		h.register(c, cmd)
		return
	}

	sess := h.registry.Lookup(c.ConnID)
	if sess == nil {
		h.sendError(c, ErrCodeNotRegistered, "register before sending events")
		return
	}

	switch cmd.Kind {
	case CommandJoinRoom:
		h.join(c, sess, cmd.Room)
	case CommandSendRoomMessage:
		h.send(c, sess, cmd)
	case CommandLeaveRoom:
		h.leave(c, sess, cmd.Room)
	case CommandTypingStart:
		h.typing(c, sess, cmd.Room, EventTyping)
	case CommandTypingStop:
		h.typing(c, sess, cmd.Room, EventTypingStopped)
	}
}

func (h *Hub) register(c *Client, cmd *Command) {
	if cmd.User == "" {
		h.sendError(c, ErrCodeMalformedEvent, "userId is required")
		return
	}
	sess := h.registry.Register(c.ConnID, cmd.User, cmd.Name)
	h.sendEvent(c, &Event{
		Kind: EventRegistered,
		User: sess.UserID,
		Name: sess.DisplayName,
		At:   sess.JoinedAt,
	})
	h.broadcastPresence()
}

func (h *Hub) join(c *Client, sess *Session, roomID string) {
	if roomID == "" {
		h.sendError(c, ErrCodeMalformedEvent, "roomId is required")
		return
	}
	room := h.rooms.GetOrCreate(roomID)
	// Re-joining is idempotent: membership is a set, and a member who
	// rejoins within the cleanup grace period must succeed.
	if room.AddMember(sess.UserID) {
		h.notifyMemberChange(room, sess, EventMemberJoined)
	}
	sess.CurrentRoom = roomID

	h.sendEvent(c, &Event{
		Kind:     EventHistory,
		Room:     roomID,
		Messages: room.Recent(h.opts.HistoryReplay),
	})
	h.sendEvent(c, &Event{
		Kind:         EventJoinConfirmed,
		Room:         roomID,
		Members:      room.Members(),
		MessageCount: room.MessageCount(),
	})
	h.broadcastPresence()
}

func (h *Hub) send(c *Client, sess *Session, cmd *Command) {
	room := h.rooms.Get(cmd.Room)
	if room == nil {
		h.sendError(c, ErrCodeRoomNotFound, "room "+cmd.Room+" not found")
		return
	}
	sender := cmd.User
	if sender == "" {
		sender = sess.UserID
	}
	if !room.HasMember(sender) {
		h.sendError(c, ErrCodeNotInRoom, "sender is not a member of room "+cmd.Room)
		return
	}

	senderName := sess.DisplayName
	if s := h.registry.LookupUser(sender); s != nil {
		senderName = s.DisplayName
	}
	at := cmd.At
	if at.IsZero() {
		at = time.Now()
	}
	id := cmd.MessageID
	if id == "" {
		id = uuid.NewString()
	}

	msg := Message{
		ID:        id,
		Room:      cmd.Room,
		From:      sender,
		FromName:  senderName,
		Text:      cmd.Text,
		CreatedAt: at,
	}
	room.Append(msg)

	ev := &Event{Kind: EventRoomMessage, Room: msg.Room, Message: msg}
	h.broadcastRoom(room, ev, "")
}

func (h *Hub) leave(c *Client, sess *Session, roomID string) {
	room := h.rooms.Get(roomID)
	if room == nil {
		h.sendError(c, ErrCodeRoomNotFound, "room "+roomID+" not found")
		return
	}
	if !room.RemoveMember(sess.UserID) {
		h.sendError(c, ErrCodeNotInRoom, "not a member of room "+roomID)
		return
	}
	sess.CurrentRoom = ""
	h.notifyMemberChange(room, sess, EventMemberLeft)
	h.broadcastPresence()
	if room.Empty() {
		h.scheduleSweep(room.Name)
	}
}

func (h *Hub) typing(c *Client, sess *Session, roomID string, kind EventKind) {
	if sess.CurrentRoom != roomID {
		h.sendError(c, ErrCodeNotInRoom, "typing outside the current room")
		return
	}
	room := h.rooms.Get(roomID)
	if room == nil {
		h.sendError(c, ErrCodeRoomNotFound, "room "+roomID+" not found")
		return
	}
	ev := &Event{
		Kind: kind,
		Room: roomID,
		User: sess.UserID,
		Name: sess.DisplayName,
	}
	h.broadcastRoom(room, ev, sess.UserID)
}

// notifyMemberChange tells every other room member about a join or leave.
func (h *Hub) notifyMemberChange(room *Room, sess *Session, kind EventKind) {
	ev := &Event{
		Kind: kind,
		Room: room.Name,
		User: sess.UserID,
		Name: sess.DisplayName,
		At:   time.Now(),
	}
	h.broadcastRoom(room, ev, sess.UserID)
}

// broadcastRoom fans an event out to each member's currently registered
// connection. Members without a live connection are silently skipped;
// exclude drops one userId (typically the acting user).
func (h *Hub) broadcastRoom(room *Room, ev *Event, exclude string) {
	for userID := range room.members {
		if userID == exclude {
			continue
		}
		sess := h.registry.LookupUser(userID)
		if sess == nil {
			continue
		}
		if c, ok := h.clients[sess.ConnID]; ok {
			h.sendEvent(c, ev)
		}
	}
}

// broadcastPresence pushes a fresh snapshot to every registered connection.
func (h *Hub) broadcastPresence() {
	snap := h.registry.Snapshot()
	ev := &Event{Kind: EventPresence, Users: snap}
	for _, entry := range snap {
		sess := h.registry.LookupUser(entry.UserID)
		if sess == nil {
			continue
		}
		if c, ok := h.clients[sess.ConnID]; ok {
			h.sendEvent(c, ev)
		}
	}
}

// scheduleSweep arms a one-shot deletion check for the room. The expiry
// re-enters the hub loop and re-validates emptiness there, so a quick
// rejoin keeps the room alive. Arming several timers for the same room
// is harmless.
func (h *Hub) scheduleSweep(roomID string) {
	time.AfterFunc(h.opts.RoomGrace, func() {
		select {
		case h.sweeps <- roomID:
		case <-h.done:
		}
	})
}

func (h *Hub) sendError(c *Client, code, msg string) {
	h.sendEvent(c, &Event{Kind: EventError, Error: coreError(code, msg)})
}

func (h *Hub) sendEvent(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
