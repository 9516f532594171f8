package core

import "github.com/parleychat/parley-server/internal/room"

// EventKind is a notification the hub emits to connections.
type EventKind int

const (
	// EventRoomInfo delivers a full room snapshot to one connection.
	EventRoomInfo EventKind = iota
	// EventPlayersUpdate notifies a room's group that the player list changed.
	EventPlayersUpdate
	// EventRoomClosed notifies everyone that a room was destroyed.
	EventRoomClosed
	// EventMessage delivers a chat message to a room's group.
	EventMessage
	// EventError reports a caller error back to the offending connection.
	EventError
)

// Event is sent to connections to describe what happened.
type Event struct {
	Kind    EventKind
	RoomID  string
	Players []string         // EventPlayersUpdate
	Room    *room.Room       // EventRoomInfo: detached snapshot
	Message room.ChatMessage // EventMessage
	Error   *CoreError       // EventError
}
