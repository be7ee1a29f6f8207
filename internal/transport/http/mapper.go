package http

import (
	"encoding/json"
	"time"

	"github.com/driftchat/relay-server/internal/core"
	"github.com/driftchat/relay-server/internal/proto"
)

func malformed(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeMalformedEvent, Msg: msg}
}

// inboundToCommand maps a wire envelope onto a core command. A non-nil
// proto.Error means the event was rejected without touching core state;
// the connection stays up.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeRegister:
		var reg proto.RegisterData
		if err := json.Unmarshal(inbound.Data, &reg); err != nil {
			return nil, malformed("invalid register payload")
		}
		if reg.UserID == "" {
			return nil, malformed("userId is required")
		}
		return &core.Command{
			Kind: core.CommandRegister,
			User: reg.UserID,
			Name: reg.DisplayName,
		}, nil
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, malformed("invalid join payload")
		}
		if join.Room == "" {
			return nil, malformed("roomId is required")
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: join.Room,
		}, nil
	case proto.InboundTypeSend:
		var msg proto.SendData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, malformed("invalid send payload")
		}
		if msg.Room == "" {
			return nil, malformed("roomId is required")
		}
		if msg.Text == "" {
			return nil, malformed("text is required")
		}
		var at time.Time
		if msg.Timestamp != 0 {
			at = time.UnixMilli(msg.Timestamp)
		}
		return &core.Command{
			Kind:      core.CommandSendRoomMessage,
			Room:      msg.Room,
			User:      msg.Sender,
			MessageID: msg.MessageID,
			Text:      msg.Text,
			At:        at,
		}, nil
	case proto.InboundTypeLeave:
		var leave proto.LeaveData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, malformed("invalid leave payload")
		}
		if leave.Room == "" {
			return nil, malformed("roomId is required")
		}
		return &core.Command{
			Kind: core.CommandLeaveRoom,
			Room: leave.Room,
		}, nil
	case proto.InboundTypeTypingStart, proto.InboundTypeTypingStop:
		var typing proto.TypingData
		if err := json.Unmarshal(inbound.Data, &typing); err != nil {
			return nil, malformed("invalid typing payload")
		}
		if typing.Room == "" {
			return nil, malformed("roomId is required")
		}
		kind := core.CommandTypingStart
		if inbound.Type == proto.InboundTypeTypingStop {
			kind = core.CommandTypingStop
		}
		return &core.Command{
			Kind: kind,
			Room: typing.Room,
		}, nil
	default:
		return nil, malformed("unknown event type")
	}
}

func wireMessage(msg core.Message) proto.EventMessageData {
	return proto.EventMessageData{
		MessageID:  msg.ID,
		Text:       msg.Text,
		Sender:     msg.From,
		SenderName: msg.FromName,
		Timestamp:  msg.CreatedAt.UnixMilli(),
		Room:       msg.Room,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRegistered:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRegistrationConfirmed,
			Data: proto.RegistrationConfirmed{
				UserID:      event.User,
				DisplayName: event.Name,
				ServerTime:  event.At.UnixMilli(),
			},
		}
	case core.EventPresence:
		users := make([]proto.PresenceUser, 0, len(event.Users))
		for _, u := range event.Users {
			users = append(users, proto.PresenceUser{
				UserID:      u.UserID,
				DisplayName: u.DisplayName,
				JoinedAt:    u.JoinedAt.UnixMilli(),
				RoomID:      u.Room,
				Status:      u.Status,
			})
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventPresenceSnapshot,
			Data:  proto.PresenceSnapshot{Users: users, Count: len(users)},
		}
	case core.EventHistory:
		messages := make([]proto.EventMessageData, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, wireMessage(msg))
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRoomHistory,
			Data:  proto.RoomHistory{Room: event.Room, Messages: messages},
		}
	case core.EventJoinConfirmed:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventJoinConfirmed,
			Data: proto.JoinConfirmed{
				Room:         event.Room,
				Members:      event.Members,
				MessageCount: event.MessageCount,
			},
		}
	case core.EventMemberJoined, core.EventMemberLeft:
		name := proto.EventMemberJoined
		if event.Kind == core.EventMemberLeft {
			name = proto.EventMemberLeft
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: name,
			Data: proto.MemberChange{
				UserID:      event.User,
				DisplayName: event.Name,
				Room:        event.Room,
				Timestamp:   event.At.UnixMilli(),
			},
		}
	case core.EventRoomMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessage,
			Data:  wireMessage(event.Message),
		}
	case core.EventTyping, core.EventTypingStopped:
		name := proto.EventTyping
		if event.Kind == core.EventTypingStopped {
			name = proto.EventTypingStopped
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: name,
			Data: proto.TypingNotice{
				UserID:      event.User,
				DisplayName: event.Name,
				Room:        event.Room,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
