package core

// CommandKind describes what the connection wants to do.
type CommandKind int

const (
	// CommandHello binds an authenticated identity to the connection.
	CommandHello CommandKind = iota
	// CommandCreateRoom opens a new room with the caller as sole player.
	CommandCreateRoom
	// CommandJoinRoom subscribes the caller to an existing room.
	CommandJoinRoom
	// CommandLeaveRoom unsubscribes the caller from a room.
	CommandLeaveRoom
	// CommandSendMessage posts a chat message to a room.
	CommandSendMessage
)

// Command represents an action requested by a connection. The transport
// layer fills in only the fields its kind needs; the hub derives the
// sender's identity from the connection, never from the payload.
type Command struct {
	Kind   CommandKind
	RoomID string
	User   string // CommandHello: validated user id
	Name   string // CommandHello: display name
	Body   string // CommandSendMessage: message text
}
