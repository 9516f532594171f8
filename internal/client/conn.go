package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/parleychat/parley-server/internal/proto"
	"github.com/parleychat/parley-server/internal/room"
)

// ErrNotInRoom is returned when sending a message without a current room.
var ErrNotInRoom = fmt.Errorf("not in a room")

// Conn is a websocket connection to a parley server, bound to one
// Session. Inbound events are dispatched to the session by Listen;
// outbound actions are the exported methods.
type Conn struct {
	ws      *websocket.Conn
	session *Session
	log     *zerolog.Logger

	// OnServerError, when set, receives protocol errors the server sends
	// back for failed actions (e.g. joining an expired room code).
	OnServerError func(proto.Error)
}

// Dial connects to the server, authenticates with the token, and returns
// the connection. Call Listen to start processing server events.
func Dial(ctx context.Context, url, token string, session *Session, logger *zerolog.Logger) (*Conn, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	c := &Conn{ws: ws, session: session, log: logger}
	if err := c.send(ctx, proto.InboundTypeHello, proto.HelloData{Token: token}); err != nil {
		ws.Close(websocket.StatusInternalError, "hello failed")
		return nil, err
	}
	return c, nil
}

// send marshals the payload and writes it to the server inside an
// Inbound envelope.
func (c *Conn) send(ctx context.Context, msgType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	if err := wsjson.Write(ctx, c.ws, proto.Inbound{Type: msgType, Data: payload}); err != nil {
		return fmt.Errorf("write %s: %w", msgType, err)
	}
	return nil
}

// Close closes the underlying websocket.
func (c *Conn) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "bye")
}

// CreateRoom asks the server to open a new room with us as sole player.
// The resulting snapshot arrives through Listen.
func (c *Conn) CreateRoom(ctx context.Context) error {
	return c.send(ctx, proto.InboundTypeCreateRoom, struct{}{})
}

// JoinRoom subscribes to an existing room by id.
func (c *Conn) JoinRoom(ctx context.Context, roomID string) error {
	return c.send(ctx, proto.InboundTypeJoinRoom, proto.RoomRef{RoomID: roomID})
}

// LeaveRoom unsubscribes from a room.
func (c *Conn) LeaveRoom(ctx context.Context, roomID string) error {
	return c.send(ctx, proto.InboundTypeLeaveRoom, proto.RoomRef{RoomID: roomID})
}

// SendMessage posts a chat message to the current room. The local chat
// log is appended optimistically once the transport write succeeds; the
// server only rebroadcasts to the other participants.
func (c *Conn) SendMessage(ctx context.Context, body string) error {
	roomID := c.session.RoomID()
	if roomID == "" {
		return ErrNotInRoom
	}
	msg := room.ChatMessage{RoomID: roomID, UserID: c.session.UserID(), Body: body}
	if err := c.send(ctx, proto.InboundTypeMessage, proto.ChatMessageData{RoomID: msg.RoomID, UserID: msg.UserID, Msg: msg.Body}); err != nil {
		return err
	}
	c.session.ApplyMessage(msg)
	return nil
}

// Listen reads server events until the context is cancelled or the
// connection drops, dispatching each to the session.
func (c *Conn) Listen(ctx context.Context) error {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, c.ws, &outbound); err != nil {
			return err
		}
		c.dispatch(outbound)
	}
}

func (c *Conn) dispatch(outbound proto.Outbound) {
	if outbound.Type == proto.OutboundTypeError {
		if outbound.Error != nil {
			c.log.Warn().Str("code", outbound.Error.Code).Str("msg", outbound.Error.Msg).Msg("server error")
			if c.OnServerError != nil {
				c.OnServerError(*outbound.Error)
			}
		}
		return
	}

	switch outbound.Event {
	case proto.EventRoomInfo:
		var snap proto.RoomSnapshot
		if !c.decode(outbound.Data, &snap) {
			return
		}
		chat := make([]room.ChatMessage, 0, len(snap.Chat))
		for _, m := range snap.Chat {
			chat = append(chat, room.ChatMessage{RoomID: m.RoomID, UserID: m.UserID, Body: m.Msg})
		}
		c.session.ApplySnapshot(&room.Room{ID: snap.RoomID, Players: snap.Players, Chat: chat})
	case proto.EventPlayersUpdate:
		var upd proto.PlayersUpdateData
		if !c.decode(outbound.Data, &upd) {
			return
		}
		c.session.ApplyPlayersUpdate(upd.RoomID, upd.Players)
	case proto.EventRoomClosed:
		var closed proto.RoomClosedData
		if !c.decode(outbound.Data, &closed) {
			return
		}
		c.session.ApplyRoomClosed(closed.RoomID)
	case proto.EventMessage:
		var msg proto.ChatMessageData
		if !c.decode(outbound.Data, &msg) {
			return
		}
		c.session.ApplyMessage(room.ChatMessage{RoomID: msg.RoomID, UserID: msg.UserID, Body: msg.Msg})
	default:
		c.log.Debug().Str("event", outbound.Event).Msg("ignoring unknown event")
	}
}

// decode re-marshals the envelope's loosely-typed data into the concrete
// payload struct.
func (c *Conn) decode(data any, dst any) bool {
	raw, err := json.Marshal(data)
	if err == nil {
		err = json.Unmarshal(raw, dst)
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("malformed event payload")
		return false
	}
	return true
}
