package http

import (
	"encoding/json"

	"github.com/parleychat/parley-server/internal/auth"
	"github.com/parleychat/parley-server/internal/core"
	"github.com/parleychat/parley-server/internal/proto"
)

func inboundToCommand(authService *auth.Service, inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeHello:
		var hello proto.HelloData
		if err := json.Unmarshal(inbound.Data, &hello); err != nil {
			return nil, nil, err
		}
		claims, err := authService.ValidateToken(hello.Token)
		if err != nil {
			return nil, &proto.Error{Code: core.ErrCodeUnauthorized, Msg: "invalid token"}, nil
		}
		return &core.Command{
			Kind: core.CommandHello,
			User: claims.UserID,
			Name: claims.Username,
		}, nil, nil
	case proto.InboundTypeCreateRoom:
		return &core.Command{Kind: core.CommandCreateRoom}, nil, nil
	case proto.InboundTypeJoinRoom:
		var join proto.RoomRef
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandJoinRoom,
			RoomID: join.RoomID,
		}, nil, nil
	case proto.InboundTypeLeaveRoom:
		var leave proto.RoomRef
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, nil, err
		}
		if leave.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandLeaveRoom,
			RoomID: leave.RoomID,
		}, nil, nil
	case proto.InboundTypeMessage:
		var msg proto.ChatMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		// The sender's identity comes from the connection, not the payload.
		return &core.Command{
			Kind:   core.CommandSendMessage,
			RoomID: msg.RoomID,
			Body:   msg.Msg,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomInfo:
		chat := make([]proto.ChatMessageData, 0, len(event.Room.Chat))
		for _, m := range event.Room.Chat {
			chat = append(chat, proto.ChatMessageData{RoomID: m.RoomID, UserID: m.UserID, Msg: m.Body})
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRoomInfo,
			Data: proto.RoomSnapshot{
				RoomID:  event.Room.ID,
				Players: event.Room.Players,
				Chat:    chat,
			},
		}
	case core.EventPlayersUpdate:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventPlayersUpdate,
			Data: proto.PlayersUpdateData{
				RoomID:  event.RoomID,
				Players: event.Players,
			},
		}
	case core.EventRoomClosed:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRoomClosed,
			Data:  proto.RoomClosedData{RoomID: event.RoomID},
		}
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessage,
			Data: proto.ChatMessageData{
				RoomID: event.Message.RoomID,
				UserID: event.Message.UserID,
				Msg:    event.Message.Body,
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
