package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/driftchat/relay-server/internal/config"
	"github.com/driftchat/relay-server/internal/core"
	"github.com/driftchat/relay-server/internal/log"
	"github.com/driftchat/relay-server/internal/proto"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.RoomGrace = 50 * time.Millisecond

	hub := core.NewHub(core.Options{
		HistoryLimit:  cfg.HistoryLimit,
		HistoryReplay: cfg.HistoryReplay,
		RoomGrace:     cfg.RoomGrace,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, cfg, log.New("error"))

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendInbound(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

type rawOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *proto.Error    `json:"error,omitempty"`
}

// mustWireEvent reads envelopes until one carries the wanted event name.
func mustWireEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	for {
		var out rawOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read while waiting for %q: %v", event, err)
		}
		if out.Type == proto.OutboundTypeEvent && out.Event == event {
			return out.Data
		}
	}
}

// mustWireError reads envelopes until an error envelope arrives.
func mustWireError(t *testing.T, ctx context.Context, conn *websocket.Conn) *proto.Error {
	t.Helper()

	for {
		var out rawOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read while waiting for error: %v", err)
		}
		if out.Type == proto.OutboundTypeError && out.Error != nil {
			return out.Error
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketRegisterJoinSend(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)

	sendInbound(t, ctx, connA, proto.InboundTypeRegister, proto.RegisterData{UserID: "u1", DisplayName: "Alice"})
	var reg proto.RegistrationConfirmed
	if err := json.Unmarshal(mustWireEvent(t, ctx, connA, proto.EventRegistrationConfirmed), &reg); err != nil {
		t.Fatalf("unmarshal registration: %v", err)
	}
	if reg.UserID != "u1" || reg.DisplayName != "Alice" || reg.ServerTime == 0 {
		t.Fatalf("unexpected registration confirmation: %+v", reg)
	}

	sendInbound(t, ctx, connB, proto.InboundTypeRegister, proto.RegisterData{UserID: "u2"})
	mustWireEvent(t, ctx, connB, proto.EventRegistrationConfirmed)

	sendInbound(t, ctx, connA, proto.InboundTypeJoin, proto.JoinData{Room: "general"})
	var conf proto.JoinConfirmed
	if err := json.Unmarshal(mustWireEvent(t, ctx, connA, proto.EventJoinConfirmed), &conf); err != nil {
		t.Fatalf("unmarshal join confirmation: %v", err)
	}
	if conf.Room != "general" || conf.MessageCount != 0 || len(conf.Members) != 1 {
		t.Fatalf("unexpected join confirmation: %+v", conf)
	}

	sendInbound(t, ctx, connB, proto.InboundTypeJoin, proto.JoinData{Room: "general"})
	mustWireEvent(t, ctx, connB, proto.EventJoinConfirmed)

	var joined proto.MemberChange
	if err := json.Unmarshal(mustWireEvent(t, ctx, connA, proto.EventMemberJoined), &joined); err != nil {
		t.Fatalf("unmarshal member-joined: %v", err)
	}
	if joined.UserID != "u2" || joined.Room != "general" {
		t.Fatalf("unexpected member-joined: %+v", joined)
	}

	sendInbound(t, ctx, connA, proto.InboundTypeSend, proto.SendData{
		Room:   "general",
		Text:   "hi there",
		Sender: "u1",
	})

	for _, conn := range []*websocket.Conn{connA, connB} {
		var msg proto.EventMessageData
		if err := json.Unmarshal(mustWireEvent(t, ctx, conn, proto.EventMessage), &msg); err != nil {
			t.Fatalf("unmarshal message: %v", err)
		}
		if msg.Text != "hi there" || msg.Sender != "u1" || msg.Room != "general" {
			t.Fatalf("unexpected message payload: %+v", msg)
		}
		if msg.MessageID == "" || msg.Timestamp == 0 {
			t.Fatalf("message id/timestamp missing: %+v", msg)
		}
	}
}

func TestWebSocketDisconnectNotifiesRoom(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)

	sendInbound(t, ctx, connA, proto.InboundTypeRegister, proto.RegisterData{UserID: "u1"})
	mustWireEvent(t, ctx, connA, proto.EventRegistrationConfirmed)
	sendInbound(t, ctx, connA, proto.InboundTypeJoin, proto.JoinData{Room: "r1"})
	mustWireEvent(t, ctx, connA, proto.EventJoinConfirmed)

	sendInbound(t, ctx, connB, proto.InboundTypeRegister, proto.RegisterData{UserID: "u2"})
	mustWireEvent(t, ctx, connB, proto.EventRegistrationConfirmed)
	sendInbound(t, ctx, connB, proto.InboundTypeJoin, proto.JoinData{Room: "r1"})
	mustWireEvent(t, ctx, connB, proto.EventJoinConfirmed)
	mustWireEvent(t, ctx, connA, proto.EventMemberJoined)

	connB.Close(websocket.StatusNormalClosure, "bye")

	var left proto.MemberChange
	if err := json.Unmarshal(mustWireEvent(t, ctx, connA, proto.EventMemberLeft), &left); err != nil {
		t.Fatalf("unmarshal member-left: %v", err)
	}
	if left.UserID != "u2" || left.Room != "r1" {
		t.Fatalf("unexpected member-left: %+v", left)
	}

	var snap proto.PresenceSnapshot
	if err := json.Unmarshal(mustWireEvent(t, ctx, connA, proto.EventPresenceSnapshot), &snap); err != nil {
		t.Fatalf("unmarshal presence: %v", err)
	}
	if snap.Count != 1 || snap.Users[0].UserID != "u1" {
		t.Fatalf("unexpected presence after disconnect: %+v", snap)
	}
}

func TestWebSocketMalformedEventKeepsConnection(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)

	sendInbound(t, ctx, conn, "bogus-type", map[string]string{"x": "y"})
	werr := mustWireError(t, ctx, conn)
	if werr.Code != core.ErrCodeMalformedEvent {
		t.Fatalf("expected malformed_event, got %+v", werr)
	}

	sendInbound(t, ctx, conn, proto.InboundTypeJoin, proto.JoinData{})
	werr = mustWireError(t, ctx, conn)
	if werr.Code != core.ErrCodeMalformedEvent {
		t.Fatalf("expected malformed_event for missing roomId, got %+v", werr)
	}

	// The connection survives and can still register.
	sendInbound(t, ctx, conn, proto.InboundTypeRegister, proto.RegisterData{UserID: "u1"})
	mustWireEvent(t, ctx, conn, proto.EventRegistrationConfirmed)
}

func TestStatusEndpoints(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	sendInbound(t, ctx, conn, proto.InboundTypeRegister, proto.RegisterData{UserID: "u1"})
	mustWireEvent(t, ctx, conn, proto.EventRegistrationConfirmed)
	sendInbound(t, ctx, conn, proto.InboundTypeJoin, proto.JoinData{Room: "lobby"})
	mustWireEvent(t, ctx, conn, proto.EventJoinConfirmed)

	resp, err := ts.Client().Get(ts.URL + "/api/presence")
	if err != nil {
		t.Fatalf("presence request: %v", err)
	}
	defer resp.Body.Close()
	var snap proto.PresenceSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode presence: %v", err)
	}
	if snap.Count != 1 || snap.Users[0].UserID != "u1" || snap.Users[0].Status != core.StatusInChat {
		t.Fatalf("unexpected presence response: %+v", snap)
	}

	roomsResp, err := ts.Client().Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("rooms request: %v", err)
	}
	defer roomsResp.Body.Close()
	var rooms struct {
		Rooms []RoomSummaryResponse `json:"rooms"`
		Count int                   `json:"count"`
	}
	if err := json.NewDecoder(roomsResp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode rooms: %v", err)
	}
	if rooms.Count != 1 || rooms.Rooms[0].RoomID != "lobby" || rooms.Rooms[0].Members != 1 {
		t.Fatalf("unexpected rooms response: %+v", rooms)
	}
}
