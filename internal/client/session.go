// Package client is the client-side SDK: a websocket connection plus a
// Session that mirrors "the room I am currently in" and reconciles
// asynchronous, possibly stale server events against it.
package client

import (
	"github.com/rs/zerolog"

	"github.com/parleychat/parley-server/internal/room"
	"github.com/parleychat/parley-server/internal/updater"
)

type playersUpdate struct {
	roomID  string
	players []string
}

// Session holds the one authoritative local copy of the current room.
// A nil room means "not in a room". The session is exclusively owned by
// its connection's read loop; all mutation goes through the Apply
// methods below.
type Session struct {
	userID string
	log    *zerolog.Logger

	current *room.Room

	adoptSnapshot *updater.Updater[*room.Room, *room.Room]
	mergePlayers  *updater.Updater[*room.Room, playersUpdate]
	closeRoom     *updater.Updater[*room.Room, string]
	appendMessage *updater.Updater[*room.Room, room.ChatMessage]

	onRoomChange []func(roomID string)
	onMessage    []func(room.ChatMessage)
}

// NewSession constructs a session for the given authenticated user.
func NewSession(userID string, logger *zerolog.Logger) *Session {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Session{userID: userID, log: logger}

	s.adoptSnapshot = updater.New(func(cur *room.Room, snap *room.Room) (*room.Room, bool) {
		// Adopt when untracked or when it refreshes the room we already
		// follow; a different room's snapshot on the shared connection
		// belongs to another tab and is ignored.
		if cur != nil && cur.ID != snap.ID {
			return cur, false
		}
		return snap, true
	})
	s.mergePlayers = updater.New(func(cur *room.Room, upd playersUpdate) (*room.Room, bool) {
		if cur == nil || cur.ID != upd.roomID {
			return cur, false
		}
		next := *cur
		next.Players = upd.players
		return &next, true
	})
	s.closeRoom = updater.New(func(cur *room.Room, roomID string) (*room.Room, bool) {
		if cur == nil || cur.ID != roomID {
			return cur, false
		}
		return nil, true
	})
	s.appendMessage = updater.New(func(cur *room.Room, msg room.ChatMessage) (*room.Room, bool) {
		if cur == nil || cur.ID != msg.RoomID {
			return cur, false
		}
		next := *cur
		next.Chat = append(cur.Chat[:len(cur.Chat):len(cur.Chat)], msg)
		return &next, true
	})

	return s
}

// UserID returns the authenticated user this session belongs to.
func (s *Session) UserID() string {
	return s.userID
}

// Room returns the currently held room, or nil when not in a room.
func (s *Session) Room() *room.Room {
	return s.current
}

// RoomID returns the held room's id, or "" when not in a room.
func (s *Session) RoomID() string {
	if s.current == nil {
		return ""
	}
	return s.current.ID
}

// OnRoomChange registers a hook fired whenever the held room's id
// changes, including to "". Clients use it to keep the navigable
// location in sync so a refresh lands back in the same room.
func (s *Session) OnRoomChange(fn func(roomID string)) {
	s.onRoomChange = append(s.onRoomChange, fn)
}

// OnMessage registers a hook fired for every message appended to the
// held room, local or remote.
func (s *Session) OnMessage(fn func(room.ChatMessage)) {
	s.onMessage = append(s.onMessage, fn)
}

// ApplySnapshot reconciles a full room snapshot.
func (s *Session) ApplySnapshot(snap *room.Room) {
	if !s.commit(s.adoptSnapshot.Apply(s.current, snap)) {
		s.log.Debug().Str("room_id", snap.ID).Msg("ignoring snapshot for another room")
	}
}

// ApplyPlayersUpdate merges a membership change for the held room.
func (s *Session) ApplyPlayersUpdate(roomID string, players []string) {
	if !s.commit(s.mergePlayers.Apply(s.current, playersUpdate{roomID: roomID, players: players})) {
		s.log.Debug().Str("room_id", roomID).Msg("ignoring players update for another room")
	}
}

// ApplyRoomClosed clears local state when the held room closes.
func (s *Session) ApplyRoomClosed(roomID string) {
	s.commit(s.closeRoom.Apply(s.current, roomID))
}

// ApplyMessage appends a chat message targeting the held room. Messages
// for other rooms should not reach this connection; they are dropped
// with a diagnostic log.
func (s *Session) ApplyMessage(msg room.ChatMessage) {
	if !s.commit(s.appendMessage.Apply(s.current, msg)) {
		s.log.Warn().Str("room_id", msg.RoomID).Str("current", s.RoomID()).Msg("dropping message for a room we are not in")
		return
	}
	for _, fn := range s.onMessage {
		fn(msg)
	}
}

// commit installs an updater result and fires the navigation hook when
// the held room id moved. Reports whether the result carried a change.
func (s *Session) commit(res updater.Result[*room.Room]) bool {
	if !res.Changed {
		return false
	}
	prevID := s.RoomID()
	s.current = res.Value
	if id := s.RoomID(); id != prevID {
		for _, fn := range s.onRoomChange {
			fn(id)
		}
	}
	return true
}
