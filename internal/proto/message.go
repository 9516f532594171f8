// Package proto defines the JSON wire format spoken over the websocket.
package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeHello      = "hello"
	InboundTypeCreateRoom = "create_room"
	InboundTypeJoinRoom   = "join_room"
	InboundTypeLeaveRoom  = "leave_room"
	InboundTypeMessage    = "message"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventRoomInfo      = "room_info"
	EventPlayersUpdate = "players_update"
	EventRoomClosed    = "room_closed"
	EventMessage       = "message"
)

// HelloData is sent by the client to authenticate the connection.
type HelloData struct {
	Token string `json:"token"`
}

// RoomRef addresses an existing room for join/leave requests.
type RoomRef struct {
	RoomID string `json:"roomId"`
}

// ChatMessageData is a chat message on the wire, both directions.
type ChatMessageData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Msg    string `json:"msg"`
}

// RoomSnapshot is the full room state sent to one connection on
// create/join.
type RoomSnapshot struct {
	RoomID  string            `json:"roomId"`
	Players []string          `json:"players"`
	Chat    []ChatMessageData `json:"chat"`
}

// PlayersUpdateData notifies a room's group of a membership change.
type PlayersUpdateData struct {
	RoomID  string   `json:"roomId"`
	Players []string `json:"players"`
}

// RoomClosedData announces a room's destruction.
type RoomClosedData struct {
	RoomID string `json:"roomId"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
